package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// argvScanner splits a command line into words. Single and double quotes group a word
// (an empty pair yields an empty argument) and a backslash takes the next rune literally.
type argvScanner struct {
	argv   []string
	word   strings.Builder
	inWord bool
	quote  rune
	escape bool
}

func (s *argvScanner) feed(r rune) {
	switch {
	case s.escape:
		s.word.WriteRune(r)
		s.escape = false
	case r == '\\':
		s.escape = true
		s.inWord = true
	case s.quote != 0:
		if r == s.quote {
			s.quote = 0
			return
		}
		s.word.WriteRune(r)
	case r == '\'' || r == '"':
		s.quote = r
		s.inWord = true
	case unicode.IsSpace(r):
		s.endWord()
	default:
		s.word.WriteRune(r)
		s.inWord = true
	}
}

func (s *argvScanner) endWord() {
	if !s.inWord {
		return
	}
	s.argv = append(s.argv, s.word.String())
	s.word.Reset()
	s.inWord = false
}

func parseArgv(input string) ([]string, error) {
	var s argvScanner
	for _, r := range strings.TrimSpace(input) {
		s.feed(r)
	}

	switch {
	case s.escape:
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	case s.quote != 0:
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}
	s.endWord()
	return s.argv, nil
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}

// resolveEntryScript makes the first positional helper argument (the entry script) absolute.
// Flags are passed through untouched.
func resolveEntryScript(argv []string) ([]string, error) {
	for i := 1; i < len(argv); i++ {
		arg := argv[i]
		if arg == "" || strings.HasPrefix(arg, "-") {
			continue
		}
		if filepath.IsAbs(arg) {
			return argv, nil
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve entry script %q: %w", arg, err)
		}
		resolved := append([]string(nil), argv...)
		resolved[i] = abs
		return resolved, nil
	}
	return argv, nil
}
