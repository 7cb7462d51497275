package dialog

import (
	"context"

	"github.com/rbright/dialogbridge/internal/invoke"
	"github.com/rbright/dialogbridge/internal/protocol"
)

// Pending is an asynchronous dialog whose typed result is available once the helper exits.
type Pending[T any] struct {
	pending *invoke.Pending
}

// ID returns the invocation id.
func (p *Pending[T]) ID() string { return p.pending.ID() }

// Operation returns the requested operation.
func (p *Pending[T]) Operation() protocol.Operation { return p.pending.Operation() }

// Done is closed once the helper has exited or failed.
func (p *Pending[T]) Done() <-chan struct{} { return p.pending.Done() }

// Wait blocks until the dialog result is available or ctx ends.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	result, err := p.pending.Result(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResult[T](p.pending.Operation(), result)
}
