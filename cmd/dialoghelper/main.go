// Package main provides the dialoghelper process entrypoint: it serves one dialog request
// read from its environment (or stdin) and writes the response envelope to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rbright/dialogbridge/internal/config"
	"github.com/rbright/dialogbridge/internal/helper"
	"github.com/rbright/dialogbridge/internal/logging"
	"github.com/rbright/dialogbridge/internal/protocol"
	"github.com/rbright/dialogbridge/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	configPath, showVersion, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "dialoghelper: %v\n", err)
		return 1
	}
	if showVersion {
		fmt.Fprintln(stdout, version.Named("dialoghelper"))
		return 0
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "dialoghelper: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New("helper")
	if err != nil {
		logRuntime = logging.Discard()
	}
	defer func() { _ = logRuntime.Close() }()
	for _, w := range loaded.Warnings {
		logRuntime.Logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	renderer, err := helper.NewRenderer(loaded.Config.Renderer)
	if err != nil {
		fmt.Fprintf(stderr, "dialoghelper: %v\n", err)
		return 1
	}

	return helper.Run(ctx, helper.Env{
		Codec: protocol.Codec{
			FunctionField: loaded.Config.Protocol.FunctionField,
			SuccessField:  loaded.Config.Protocol.SuccessField,
		},
		DataEnv:   loaded.Config.Helper.DataEnv,
		LookupEnv: os.LookupEnv,
		Stdin:     stdin,
		Stdout:    stdout,
		Stderr:    stderr,
		Renderer:  renderer,
		Logger:    logRuntime.Logger,
	})
}

// parseArgs reads --config and --version; other arguments (such as an entry script path)
// are accepted and ignored.
func parseArgs(args []string) (string, bool, error) {
	var configPath string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--version":
			return configPath, true, nil
		case arg == "--config":
			if i+1 >= len(args) {
				return "", false, fmt.Errorf("--config requires a path")
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		}
	}
	return configPath, false, nil
}
