package invoke

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rbright/dialogbridge/internal/config"
)

// Transport attaches an encoded request to a helper command before it starts.
type Transport interface {
	Name() string
	Attach(cmd *exec.Cmd, request []byte) error
}

// EnvTransport passes the request in a single environment variable.
type EnvTransport struct {
	Var string
}

func (EnvTransport) Name() string { return config.TransportEnv }

func (t EnvTransport) Attach(cmd *exec.Cmd, request []byte) error {
	name := strings.TrimSpace(t.Var)
	if name == "" {
		return errors.New("request environment variable name is empty")
	}
	if strings.ContainsAny(name, "=\x00") {
		return fmt.Errorf("invalid request environment variable name %q", name)
	}
	cmd.Env = append(cmd.Env, name+"="+string(request))
	return nil
}

// StdinTransport writes the request to the helper's standard input.
type StdinTransport struct{}

func (StdinTransport) Name() string { return config.TransportStdin }

func (StdinTransport) Attach(cmd *exec.Cmd, request []byte) error {
	cmd.Stdin = bytes.NewReader(request)
	return nil
}

// NewTransport resolves a transport by config name.
func NewTransport(name string, dataEnv string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", config.TransportEnv:
		return EnvTransport{Var: dataEnv}, nil
	case config.TransportStdin:
		return StdinTransport{}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want %s or %s)", name, config.TransportEnv, config.TransportStdin)
	}
}
