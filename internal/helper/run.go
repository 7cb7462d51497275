// Package helper implements the helper side of the dialog protocol.
package helper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rbright/dialogbridge/internal/protocol"
)

// Env is everything one helper run reads from and writes to.
type Env struct {
	Codec     protocol.Codec
	DataEnv   string
	LookupEnv func(string) (string, bool)
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Renderer  Renderer
	Logger    *slog.Logger
}

// Run serves exactly one request and returns the process exit code.
//
// Any error or panic is reported on stderr and yields exit code 1; stdout is written only on
// success.
func Run(ctx context.Context, env Env) (code int) {
	logger := env.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("helper panic", "panic", fmt.Sprint(recovered))
			fmt.Fprintf(env.Stderr, "dialoghelper: panic: %v\n", recovered)
			code = 1
		}
	}()

	response, err := serve(ctx, env, logger)
	if err != nil {
		logger.Error("helper request failed", "error", err.Error())
		fmt.Fprintf(env.Stderr, "dialoghelper: %v\n", err)
		return 1
	}

	if _, err := env.Stdout.Write(response); err != nil {
		logger.Error("write response", "error", err.Error())
		fmt.Fprintf(env.Stderr, "dialoghelper: write response: %v\n", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, env Env, logger *slog.Logger) ([]byte, error) {
	if env.Renderer == nil {
		return nil, errors.New("no renderer configured")
	}

	data, err := ReadRequest(env.LookupEnv, env.DataEnv, env.Stdin)
	if err != nil {
		return nil, err
	}
	req, err := env.Codec.DecodeRequest(data)
	if err != nil {
		return nil, err
	}
	logger.Info("helper request", "operation", req.Operation.String())

	result, err := Dispatch(ctx, env.Renderer, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Operation, err)
	}
	return env.Codec.EncodeResponse(result)
}

// ReadRequest returns the request from the named environment variable, falling back to stdin
// when the variable is unset or blank.
func ReadRequest(lookup func(string) (string, bool), name string, stdin io.Reader) ([]byte, error) {
	if lookup != nil && name != "" {
		if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
			return []byte(value), nil
		}
	}

	if stdin == nil {
		return nil, fmt.Errorf("no request: %s is unset and stdin is unavailable", name)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read request from stdin: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("no request: %s is unset and stdin is empty", name)
	}
	return data, nil
}
