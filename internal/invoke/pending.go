package invoke

import (
	"context"

	"github.com/rbright/dialogbridge/internal/fsm"
	"github.com/rbright/dialogbridge/internal/protocol"
	"github.com/rbright/dialogbridge/internal/stream"
)

// Pending is the handle of an invocation started with Invoker.Start.
type Pending struct {
	inv   *invocation
	codec protocol.Codec
	done  chan struct{}

	// written once before done is closed
	output stream.Output
	err    error
}

// ID returns the invocation id used in log records.
func (p *Pending) ID() string { return p.inv.id }

// Operation returns the requested operation.
func (p *Pending) Operation() protocol.Operation { return p.inv.op }

// PID returns the helper process id, or 0 before the helper has started.
func (p *Pending) PID() int {
	_, pid := p.inv.snapshot()
	return pid
}

// State returns the current lifecycle state.
func (p *Pending) State() fsm.State {
	state, _ := p.inv.snapshot()
	return state
}

// Done is closed once the invocation has resolved or failed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the helper exits or ctx ends.
//
// Ending ctx only stops waiting; the invocation keeps its own context.
func (p *Pending) Wait(ctx context.Context) (stream.Output, error) {
	select {
	case <-p.done:
		return p.output, p.err
	case <-ctx.Done():
		return stream.Output{}, ctx.Err()
	}
}

// Result waits and decodes the response envelope.
func (p *Pending) Result(ctx context.Context) (protocol.Result, error) {
	out, err := p.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return p.codec.DecodeResponse(out.StdoutText())
}
