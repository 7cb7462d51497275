package helper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/rbright/dialogbridge/internal/dialog"
)

const zenityCanceledExit = 1

// ZenityRenderer renders dialogs by running the zenity command.
type ZenityRenderer struct {
	Argv []string
}

func (z ZenityRenderer) OpenFile(ctx context.Context, opts dialog.OpenDialogOptions) ([]string, bool, error) {
	args := []string{"--file-selection", "--title=" + orDefault(opts.Title, "Open")}
	if opts.DefaultPath != "" {
		args = append(args, "--filename="+opts.DefaultPath)
	}
	if slices.Contains(opts.Properties, "openDirectory") {
		args = append(args, "--directory")
	}
	if slices.Contains(opts.Properties, "multiSelections") {
		args = append(args, "--multiple", "--separator=\n")
	}
	args = append(args, fileFilterArgs(opts.Filters)...)

	out, code, err := z.run(ctx, args)
	if err != nil {
		return nil, false, err
	}
	if code == zenityCanceledExit {
		return nil, true, nil
	}
	return splitLines(out), false, nil
}

func (z ZenityRenderer) SaveFile(ctx context.Context, opts dialog.SaveDialogOptions) (string, bool, error) {
	args := []string{"--file-selection", "--save", "--title=" + orDefault(opts.Title, "Save")}
	if opts.DefaultPath != "" {
		args = append(args, "--filename="+opts.DefaultPath)
	}
	args = append(args, fileFilterArgs(opts.Filters)...)

	out, code, err := z.run(ctx, args)
	if err != nil {
		return "", false, err
	}
	if code == zenityCanceledExit {
		return "", true, nil
	}
	return strings.TrimRight(out, "\r\n"), false, nil
}

// MessageBox maps the box onto zenity's question dialog. Custom buttons use --switch so the
// clicked label is printed; zenity has no checkbox, so the initial checkbox state is returned.
func (z ZenityRenderer) MessageBox(ctx context.Context, opts dialog.MessageBoxOptions) (int, bool, error) {
	text := opts.Message
	if opts.Detail != "" {
		text += "\n\n" + opts.Detail
	}
	args := []string{"--title=" + opts.Title, "--text=" + text, "--no-markup"}

	if len(opts.Buttons) == 0 {
		args = append([]string{messageTypeFlag(opts.Type)}, args...)
		_, code, err := z.run(ctx, args)
		if err != nil {
			return 0, false, err
		}
		if code == zenityCanceledExit && opts.CancelID != nil {
			return *opts.CancelID, opts.CheckboxChecked, nil
		}
		return 0, opts.CheckboxChecked, nil
	}

	args = append([]string{"--question", "--switch"}, args...)
	for _, label := range opts.Buttons {
		args = append(args, "--extra-button="+label)
	}
	out, _, err := z.run(ctx, args)
	if err != nil {
		return 0, false, err
	}

	clicked := strings.TrimRight(out, "\r\n")
	if idx := slices.Index(opts.Buttons, clicked); clicked != "" && idx >= 0 {
		return idx, opts.CheckboxChecked, nil
	}
	return cancelIndex(opts), opts.CheckboxChecked, nil
}

func (z ZenityRenderer) ErrorBox(ctx context.Context, title string, content string) error {
	_, _, err := z.run(ctx, []string{"--error", "--title=" + title, "--text=" + content, "--no-markup"})
	return err
}

// run executes zenity and treats exit codes 0 and 1 as answered dialogs.
func (z ZenityRenderer) run(ctx context.Context, args []string) (string, int, error) {
	if len(z.Argv) == 0 {
		return "", 0, errors.New("renderer command argv cannot be empty")
	}

	argv := append(append([]string(nil), z.Argv[1:]...), args...)
	cmd := exec.CommandContext(ctx, z.Argv[0], argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == zenityCanceledExit {
		return stdout.String(), zenityCanceledExit, nil
	}

	trimmed := strings.TrimSpace(stderr.String())
	if trimmed == "" {
		return "", 0, fmt.Errorf("%s %s failed: %w", z.Argv[0], args[0], err)
	}
	return "", 0, fmt.Errorf("%s %s failed: %w (%s)", z.Argv[0], args[0], err, trimmed)
}

func fileFilterArgs(filters []dialog.FileFilter) []string {
	args := make([]string, 0, len(filters))
	for _, filter := range filters {
		patterns := make([]string, 0, len(filter.Extensions))
		for _, ext := range filter.Extensions {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			if ext == "" {
				continue
			}
			patterns = append(patterns, "*."+ext)
		}
		if len(patterns) == 0 {
			continue
		}
		name := orDefault(filter.Name, strings.Join(patterns, " "))
		args = append(args, "--file-filter="+name+" | "+strings.Join(patterns, " "))
	}
	return args
}

func messageTypeFlag(kind string) string {
	switch strings.ToLower(kind) {
	case "error":
		return "--error"
	case "warning":
		return "--warning"
	case "question":
		return "--question"
	default:
		return "--info"
	}
}

// cancelIndex picks the response reported for a dismissed box: cancelId, else the first
// button labeled cancel or no, else 0.
func cancelIndex(opts dialog.MessageBoxOptions) int {
	if opts.CancelID != nil {
		return *opts.CancelID
	}
	for i, label := range opts.Buttons {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "cancel", "no":
			return i
		}
	}
	return 0
}

func splitLines(out string) []string {
	lines := strings.Split(strings.TrimRight(out, "\r\n"), "\n")
	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

func orDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
