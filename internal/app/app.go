package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/dialogbridge/internal/cli"
	"github.com/rbright/dialogbridge/internal/config"
	"github.com/rbright/dialogbridge/internal/dialog"
	"github.com/rbright/dialogbridge/internal/doctor"
	"github.com/rbright/dialogbridge/internal/invoke"
	"github.com/rbright/dialogbridge/internal/logging"
	"github.com/rbright/dialogbridge/internal/protocol"
	"github.com/rbright/dialogbridge/internal/version"
)

const binaryName = "dialogbridge"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New("cli")
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	if parsed.Command == cli.CommandDoctor {
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	}

	invoker, err := invoke.NewFromConfig(cfgLoaded.Config, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	client := dialog.NewClient(invoker)

	switch parsed.Command {
	case cli.CommandOpen:
		return r.finish(logger, parsed.Command, r.commandOpen(ctx, client, parsed))
	case cli.CommandSave:
		return r.finish(logger, parsed.Command, r.commandSave(ctx, client, parsed))
	case cli.CommandMessage:
		return r.finish(logger, parsed.Command, r.commandMessage(ctx, client, parsed))
	case cli.CommandError:
		return r.finish(logger, parsed.Command, client.ShowErrorBox(ctx, parsed.Title, parsed.Content))
	case cli.CommandSmoke:
		return r.finish(logger, parsed.Command, r.commandSmoke(ctx, client, parsed.Async))
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) finish(logger *slog.Logger, command cli.Command, err error) int {
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("command failed", "command", command, "error", err.Error())
		return 1
	}
	logger.Info("command complete", "command", command)
	return 0
}

func (r Runner) commandOpen(ctx context.Context, client *dialog.Client, parsed cli.Parsed) error {
	var opts dialog.OpenDialogOptions
	if err := decodeOptions(parsed.Options, &opts); err != nil {
		return err
	}
	if parsed.Title != "" {
		opts.Title = parsed.Title
	}

	if parsed.Async {
		result, err := client.ShowOpenDialog(ctx, opts).Wait(ctx)
		if err != nil {
			return err
		}
		return r.printJSON(result)
	}
	paths, err := client.ShowOpenDialogSync(ctx, opts)
	if err != nil {
		return err
	}
	return r.printJSON(dialog.OpenDialogSyncResult{FilePaths: paths})
}

func (r Runner) commandSave(ctx context.Context, client *dialog.Client, parsed cli.Parsed) error {
	var opts dialog.SaveDialogOptions
	if err := decodeOptions(parsed.Options, &opts); err != nil {
		return err
	}
	if parsed.Title != "" {
		opts.Title = parsed.Title
	}

	if parsed.Async {
		result, err := client.ShowSaveDialog(ctx, opts).Wait(ctx)
		if err != nil {
			return err
		}
		return r.printJSON(result)
	}
	path, err := client.ShowSaveDialogSync(ctx, opts)
	if err != nil {
		return err
	}
	return r.printJSON(dialog.SaveDialogSyncResult{FilePath: path})
}

func (r Runner) commandMessage(ctx context.Context, client *dialog.Client, parsed cli.Parsed) error {
	var opts dialog.MessageBoxOptions
	if err := decodeOptions(parsed.Options, &opts); err != nil {
		return err
	}
	if parsed.Title != "" {
		opts.Title = parsed.Title
	}
	if parsed.Message != "" {
		opts.Message = parsed.Message
	}
	if strings.TrimSpace(opts.Message) == "" {
		return errors.New("message box requires --message or options.message")
	}

	if parsed.Async {
		result, err := client.ShowMessageBox(ctx, opts).Wait(ctx)
		if err != nil {
			return err
		}
		return r.printJSON(result)
	}
	index, err := client.ShowMessageBoxSync(ctx, opts)
	if err != nil {
		return err
	}
	return r.printJSON(dialog.MessageBoxSyncResult{ClickedButtonIndex: index})
}

// commandSmoke exercises every operation once. With async the three non-blocking dialogs
// are in flight together.
func (r Runner) commandSmoke(ctx context.Context, client *dialog.Client, async bool) error {
	openOpts := dialog.OpenDialogOptions{Title: "dialogbridge smoke: open", Properties: []string{"openFile"}}
	saveOpts := dialog.SaveDialogOptions{Title: "dialogbridge smoke: save"}
	messageOpts := dialog.MessageBoxOptions{
		Title:   "dialogbridge smoke",
		Message: "Did the dialogs render?",
		Buttons: []string{"Yes", "No"},
	}

	var (
		openResult    dialog.OpenDialogResult
		saveResult    dialog.SaveDialogResult
		messageResult dialog.MessageBoxResult
	)
	if async {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			openResult, err = client.ShowOpenDialog(gctx, openOpts).Wait(gctx)
			return err
		})
		g.Go(func() (err error) {
			saveResult, err = client.ShowSaveDialog(gctx, saveOpts).Wait(gctx)
			return err
		})
		g.Go(func() (err error) {
			messageResult, err = client.ShowMessageBox(gctx, messageOpts).Wait(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		var err error
		if openResult, err = client.ShowOpenDialog(ctx, openOpts).Wait(ctx); err != nil {
			return err
		}
		if saveResult, err = client.ShowSaveDialog(ctx, saveOpts).Wait(ctx); err != nil {
			return err
		}
		if messageResult, err = client.ShowMessageBox(ctx, messageOpts).Wait(ctx); err != nil {
			return err
		}
	}
	r.printStep(protocol.OpShowOpenDialog, openResult)
	r.printStep(protocol.OpShowSaveDialog, saveResult)
	r.printStep(protocol.OpShowMessageBox, messageResult)

	paths, err := client.ShowOpenDialogSync(ctx, openOpts)
	if err != nil {
		return err
	}
	r.printStep(protocol.OpShowOpenDialogSync, dialog.OpenDialogSyncResult{FilePaths: paths})

	path, err := client.ShowSaveDialogSync(ctx, saveOpts)
	if err != nil {
		return err
	}
	r.printStep(protocol.OpShowSaveDialogSync, dialog.SaveDialogSyncResult{FilePath: path})

	index, err := client.ShowMessageBoxSync(ctx, messageOpts)
	if err != nil {
		return err
	}
	r.printStep(protocol.OpShowMessageBoxSync, dialog.MessageBoxSyncResult{ClickedButtonIndex: index})

	if err := client.ShowErrorBox(ctx, "dialogbridge smoke", "This error box is expected."); err != nil {
		return err
	}
	r.printStep(protocol.OpShowErrorBox, dialog.ErrorBoxResult{})
	return nil
}

func (r Runner) printStep(op protocol.Operation, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(r.Stdout, "%s: <unprintable: %v>\n", op, err)
		return
	}
	fmt.Fprintf(r.Stdout, "%s: %s\n", op, data)
}

func (r Runner) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(r.Stdout, string(data))
	return nil
}

func decodeOptions(raw string, dst any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: --options: %w", protocol.ErrInvalidRequest, err)
	}
	return nil
}
