package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Helper   *jsoncHelper   `json:"helper"`
	Protocol *jsoncProtocol `json:"protocol"`
	Renderer *jsoncRenderer `json:"renderer"`
}

type jsoncHelper struct {
	Cmd          *string  `json:"cmd"`
	DataEnv      *string  `json:"data_env"`
	Transport    *string  `json:"transport"`
	Encoding     *string  `json:"encoding"`
	InheritEnv   *bool    `json:"inherit_env"`
	Env          []string `json:"env"`
	TimeoutMS    *int     `json:"timeout_ms"`
	DrainGraceMS *int     `json:"drain_grace_ms"`
}

type jsoncProtocol struct {
	FunctionField *string `json:"function_field"`
	SuccessField  *string `json:"success_field"`
}

type jsoncRenderer struct {
	Backend *string `json:"backend"`
	Cmd     *string `json:"cmd"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if h := payload.Helper; h != nil {
		if h.Cmd != nil {
			command, err := parseCommand("helper.cmd", *h.Cmd)
			if err != nil {
				return nil, err
			}
			if command.Argv, err = resolveEntryScript(command.Argv); err != nil {
				return nil, fmt.Errorf("invalid helper.cmd: %w", err)
			}
			cfg.Helper.Command = command
		}
		if h.DataEnv != nil {
			cfg.Helper.DataEnv = strings.TrimSpace(*h.DataEnv)
		}
		if h.Transport != nil {
			cfg.Helper.Transport = strings.ToLower(strings.TrimSpace(*h.Transport))
		}
		if h.Encoding != nil {
			cfg.Helper.Encoding = strings.TrimSpace(*h.Encoding)
		}
		if h.InheritEnv != nil {
			cfg.Helper.InheritEnv = *h.InheritEnv
		}
		if h.Env != nil {
			cfg.Helper.Env = append([]string(nil), h.Env...)
		}
		if h.TimeoutMS != nil {
			cfg.Helper.TimeoutMS = *h.TimeoutMS
		}
		if h.DrainGraceMS != nil {
			cfg.Helper.DrainGraceMS = *h.DrainGraceMS
		}
	}

	if p := payload.Protocol; p != nil {
		if p.FunctionField != nil {
			cfg.Protocol.FunctionField = strings.TrimSpace(*p.FunctionField)
		}
		if p.SuccessField != nil {
			cfg.Protocol.SuccessField = strings.TrimSpace(*p.SuccessField)
		}
	}

	if r := payload.Renderer; r != nil {
		if r.Backend != nil {
			cfg.Renderer.Backend = strings.ToLower(strings.TrimSpace(*r.Backend))
		}
		if r.Cmd != nil {
			command, err := parseCommand("renderer.cmd", *r.Cmd)
			if err != nil {
				return nil, err
			}
			cfg.Renderer.Command = command
		}
	}

	if cfg.Helper.Transport == TransportStdin && payload.Helper != nil && payload.Helper.DataEnv != nil {
		warnings = append(warnings, Warning{Message: "helper.data_env is ignored when helper.transport=stdin"})
	}

	return warnings, nil
}

func parseCommand(key string, raw string) (CommandConfig, error) {
	argv, err := parseArgv(raw)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
