package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandOpen    Command = "open"
	CommandSave    Command = "save"
	CommandMessage Command = "message"
	CommandError   Command = "error"
	CommandSmoke   Command = "smoke"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandOpen:    {},
	CommandSave:    {},
	CommandMessage: {},
	CommandError:   {},
	CommandSmoke:   {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// commandFlags lists the flags each command accepts after its name.
var commandFlags = map[Command]map[string]struct{}{
	CommandOpen:    {"--async": {}, "--options": {}, "--title": {}},
	CommandSave:    {"--async": {}, "--options": {}, "--title": {}},
	CommandMessage: {"--async": {}, "--options": {}, "--title": {}, "--message": {}},
	CommandError:   {"--title": {}, "--content": {}},
	CommandSmoke:   {"--async": {}},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool

	Async   bool
	Options string
	Title   string
	Message string
	Content string
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	seenCommand := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
			return parsed, nil
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			if seenCommand {
				return Parsed{}, fmt.Errorf("--config must precede the command")
			}
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--async":
			if err := allowFlag(parsed, seenCommand, arg); err != nil {
				return Parsed{}, err
			}
			parsed.Async = true
		case "--options", "--title", "--message", "--content":
			if err := allowFlag(parsed, seenCommand, arg); err != nil {
				return Parsed{}, err
			}
			i++
			if i >= len(args) {
				return Parsed{}, fmt.Errorf("%s requires a value", arg)
			}
			setValue(&parsed, arg, args[i])
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			if seenCommand {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			seenCommand = true
		}
	}

	return parsed, nil
}

func allowFlag(parsed Parsed, seenCommand bool, flag string) error {
	if !seenCommand {
		return fmt.Errorf("%s must follow a command", flag)
	}
	if _, ok := commandFlags[parsed.Command][flag]; !ok {
		return fmt.Errorf("%s is not supported by command %q", flag, parsed.Command)
	}
	return nil
}

func setValue(parsed *Parsed, flag string, value string) {
	switch flag {
	case "--options":
		parsed.Options = value
	case "--title":
		parsed.Title = value
	case "--message":
		parsed.Message = value
	case "--content":
		parsed.Content = value
	}
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [flags]

Commands:
  open      Show an open-file picker and print the chosen paths
  save      Show a save-file picker and print the chosen path
  message   Show a message box and print the clicked button
  error     Show an error box
  smoke     Run every dialog operation in sequence
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Command flags:
  --async           Use the non-blocking variant (open, save, message, smoke)
  --options JSON    Dialog options object (open, save, message)
  --title TEXT      Dialog title (open, save, message, error)
  --message TEXT    Message box text (message)
  --content TEXT    Error box text (error)

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/dialogbridge/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
