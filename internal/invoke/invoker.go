// Package invoke spawns one helper process per dialog request and collects its reply.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rbright/dialogbridge/internal/config"
	"github.com/rbright/dialogbridge/internal/fsm"
	"github.com/rbright/dialogbridge/internal/protocol"
	"github.com/rbright/dialogbridge/internal/stream"
)

const stderrExcerptLimit = 512

// Config controls how helpers are launched.
//
// Argv is the helper executable followed by its positional arguments. Env holds extra
// KEY=VALUE entries applied before the request.
type Config struct {
	Argv       []string
	Transport  Transport
	Encoding   string
	InheritEnv bool
	Env        []string
	Timeout    time.Duration
	DrainGrace time.Duration
}

// Invoker runs helper processes. It is safe for concurrent use; every call owns its process.
type Invoker struct {
	cfg        Config
	codec      protocol.Codec
	aggregator stream.Aggregator
	logger     *slog.Logger
}

// New validates cfg and returns an invoker.
func New(cfg Config, codec protocol.Codec, logger *slog.Logger) (*Invoker, error) {
	if len(cfg.Argv) == 0 || cfg.Argv[0] == "" {
		return nil, errors.New("helper command is empty")
	}
	if cfg.Transport == nil {
		cfg.Transport = EnvTransport{Var: protocol.DefaultDataEnv}
	}
	if codec.FunctionField == "" || codec.SuccessField == "" {
		codec = protocol.DefaultCodec()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	aggregator, err := stream.NewAggregator(cfg.Encoding, cfg.DrainGrace)
	if err != nil {
		return nil, err
	}

	cfg.Argv = append([]string(nil), cfg.Argv...)
	cfg.Env = append([]string(nil), cfg.Env...)
	return &Invoker{cfg: cfg, codec: codec, aggregator: aggregator, logger: logger}, nil
}

// NewFromConfig builds an invoker from the loaded runtime configuration.
func NewFromConfig(cfg config.Config, logger *slog.Logger) (*Invoker, error) {
	transport, err := NewTransport(cfg.Helper.Transport, cfg.Helper.DataEnv)
	if err != nil {
		return nil, err
	}
	codec := protocol.Codec{
		FunctionField: cfg.Protocol.FunctionField,
		SuccessField:  cfg.Protocol.SuccessField,
	}
	return New(Config{
		Argv:       cfg.Helper.Command.Argv,
		Transport:  transport,
		Encoding:   cfg.Helper.Encoding,
		InheritEnv: cfg.Helper.InheritEnv,
		Env:        cfg.Helper.Env,
		Timeout:    time.Duration(cfg.Helper.TimeoutMS) * time.Millisecond,
		DrainGrace: time.Duration(cfg.Helper.DrainGraceMS) * time.Millisecond,
	}, codec, logger)
}

// Run spawns the helper for op and blocks until it exits.
//
// A non-zero exit code is reported in the output, not as an error.
func (iv *Invoker) Run(ctx context.Context, op protocol.Operation, payload any) (stream.Output, error) {
	return iv.execute(ctx, newInvocation(op), payload)
}

// Call runs op and decodes the helper response envelope.
func (iv *Invoker) Call(ctx context.Context, op protocol.Operation, payload any) (protocol.Result, error) {
	out, err := iv.Run(ctx, op, payload)
	if err != nil {
		return nil, err
	}
	return iv.codec.DecodeResponse(out.StdoutText())
}

// Start spawns the helper for op on its own goroutine and returns immediately.
func (iv *Invoker) Start(ctx context.Context, op protocol.Operation, payload any) *Pending {
	p := &Pending{
		inv:   newInvocation(op),
		codec: iv.codec,
		done:  make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.output, p.err = iv.execute(ctx, p.inv, payload)
	}()
	return p
}

func (iv *Invoker) execute(ctx context.Context, inv *invocation, payload any) (stream.Output, error) {
	logger := iv.logger.With("invocation_id", inv.id, "operation", inv.op.String())

	request, err := iv.codec.EncodeRequest(inv.op, payload)
	if err != nil {
		inv.transition(fsm.EventFail)
		return stream.Output{}, err
	}
	if err := ctx.Err(); err != nil {
		inv.transition(fsm.EventFail)
		return stream.Output{}, fmt.Errorf("helper not started: %w", err)
	}

	if iv.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.Command(iv.cfg.Argv[0], iv.cfg.Argv[1:]...)
	cmd.Env = iv.environ()
	if err := iv.cfg.Transport.Attach(cmd, request); err != nil {
		inv.transition(fsm.EventFail)
		return stream.Output{}, fmt.Errorf("%w: attach request: %w", protocol.ErrInvalidRequest, err)
	}

	inv.transition(fsm.EventSpawn)
	started := time.Now()
	proc, err := startProcess(cmd)
	if err != nil {
		inv.transition(fsm.EventFail)
		logger.Error("helper spawn failed", "command", iv.cfg.Argv[0], "error", err.Error())
		return stream.Output{}, fmt.Errorf("%w %q: %w", protocol.ErrSpawn, iv.cfg.Argv[0], err)
	}
	inv.started(proc.PID())
	logger.Debug("helper spawned",
		"pid", proc.PID(),
		"transport", iv.cfg.Transport.Name(),
		"request_bytes", len(request),
	)

	out, err := iv.aggregator.Collect(ctx, proc)
	if err != nil {
		inv.transition(fsm.EventFail)
		logger.Error("helper failed",
			"pid", proc.PID(),
			"duration_ms", time.Since(started).Milliseconds(),
			"error", err.Error(),
		)
		return stream.Output{}, err
	}
	inv.transition(fsm.EventExit)

	logger.Info("helper exited",
		"pid", proc.PID(),
		"exit_code", out.Exit.Code,
		"exited", out.Exit.Exited,
		"stdout_bytes", len(out.Stdout),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	if len(out.Stderr) > 0 {
		logger.Warn("helper wrote to stderr", "pid", proc.PID(), "stderr", excerpt(out.StderrText()))
	}
	return out, nil
}

// environ returns a non-nil slice so a helper never silently inherits when InheritEnv is off.
func (iv *Invoker) environ() []string {
	env := []string{}
	if iv.cfg.InheritEnv {
		env = append(env, os.Environ()...)
	}
	return append(env, iv.cfg.Env...)
}

// excerpt caps text at stderrExcerptLimit bytes without splitting a rune.
func excerpt(text string) string {
	if len(text) <= stderrExcerptLimit {
		return text
	}
	cut := stderrExcerptLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// invocation tracks the identity and lifecycle of one helper run.
type invocation struct {
	id string
	op protocol.Operation

	mu    sync.Mutex
	state fsm.State
	pid   int
}

func newInvocation(op protocol.Operation) *invocation {
	return &invocation{id: uuid.NewString(), op: op, state: fsm.StateIdle}
}

// transition applies event; a resolved invocation keeps its final state.
func (inv *invocation) transition(event fsm.Event) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.state.Terminal() {
		return
	}
	if next, err := fsm.Transition(inv.state, event); err == nil {
		inv.state = next
	}
}

func (inv *invocation) started(pid int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.pid = pid
	if next, err := fsm.Transition(inv.state, fsm.EventStarted); err == nil {
		inv.state = next
	}
}

func (inv *invocation) snapshot() (fsm.State, int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.state, inv.pid
}
