// Package stream drains a child process's output channels into complete buffers.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/rbright/dialogbridge/internal/protocol"
)

const (
	// DefaultDrainGrace bounds how long buffered output is awaited after the process exits.
	DefaultDrainGrace = 200 * time.Millisecond
	defaultChunkSize  = 4096
)

// ExitStatus is the termination outcome of one process.
type ExitStatus struct {
	Code   int
	Exited bool
}

// Process is the live child surface consumed by Collect.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait blocks until the process terminates.
	Wait() (ExitStatus, error)
	// Kill terminates the process.
	Kill() error
	// Release closes both output channels, unblocking pending reads.
	Release() error
}

// Output is the aggregated result of one finished process.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	Exit     ExitStatus
	Encoding string
}

// StdoutText returns stdout as a string.
func (o Output) StdoutText() string {
	return string(o.Stdout)
}

// StderrText returns stderr as a string.
func (o Output) StderrText() string {
	return string(o.Stderr)
}

// Aggregator collects process output, optionally transcoding it to UTF-8 text.
type Aggregator struct {
	encodingName string
	encoding     encoding.Encoding
	drainGrace   time.Duration
	chunkSize    int
}

// NewAggregator resolves encodingName (empty keeps raw bytes) and returns an aggregator.
func NewAggregator(encodingName string, drainGrace time.Duration) (Aggregator, error) {
	agg := Aggregator{drainGrace: drainGrace, chunkSize: defaultChunkSize}
	if agg.drainGrace <= 0 {
		agg.drainGrace = DefaultDrainGrace
	}

	name := strings.TrimSpace(encodingName)
	if name == "" {
		return agg, nil
	}
	enc, err := LookupEncoding(name)
	if err != nil {
		return Aggregator{}, err
	}
	agg.encodingName = name
	agg.encoding = enc
	return agg, nil
}

// LookupEncoding resolves a WHATWG encoding label such as "utf-8" or "latin1".
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("unsupported output encoding %q: %w", name, err)
	}
	return enc, nil
}

type chunkResult struct {
	name string
	data []byte
	err  error
}

type exitResult struct {
	status ExitStatus
	err    error
}

// Collect drains both channels of proc and resolves once the process has terminated.
//
// Output still buffered when the process exits is awaited for the drain grace period; after
// that the channels are released so descendants holding the pipes cannot stall the call.
func (a Aggregator) Collect(ctx context.Context, proc Process) (Output, error) {
	chunkSize := a.chunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	drainGrace := a.drainGrace
	if drainGrace <= 0 {
		drainGrace = DefaultDrainGrace
	}

	chunks := make(chan chunkResult, 2)
	go drain("stdout", proc.Stdout(), chunkSize, chunks)
	go drain("stderr", proc.Stderr(), chunkSize, chunks)

	exits := make(chan exitResult, 1)
	go func() {
		status, err := proc.Wait()
		exits <- exitResult{status: status, err: err}
	}()

	var (
		stdout, stderr []byte
		open           = 2
		exit           *exitResult
		exitCh         = exits
		grace          <-chan time.Time
		released       bool
	)

	for open > 0 || exit == nil {
		select {
		case res := <-chunks:
			open--
			if res.err != nil && !released {
				abandon(proc)
				return Output{}, fmt.Errorf("%w: read %s: %w", protocol.ErrStream, res.name, res.err)
			}
			if res.name == "stdout" {
				stdout = res.data
			} else {
				stderr = res.data
			}
		case res := <-exitCh:
			exitCh = nil
			if res.err != nil {
				abandon(proc)
				return Output{}, fmt.Errorf("%w: wait for helper: %w", protocol.ErrSpawn, res.err)
			}
			exit = &res
			if open > 0 {
				timer := time.NewTimer(drainGrace)
				defer timer.Stop()
				grace = timer.C
			}
		case <-grace:
			grace = nil
			released = true
			_ = proc.Release()
		case <-ctx.Done():
			abandon(proc)
			return Output{}, fmt.Errorf("helper interrupted: %w", ctx.Err())
		}
	}
	_ = proc.Release()

	out := Output{Stdout: stdout, Stderr: stderr, Exit: exit.status}
	if a.encoding != nil {
		var err error
		if out.Stdout, err = a.decode(out.Stdout); err != nil {
			return Output{}, fmt.Errorf("%w: decode stdout as %s: %w", protocol.ErrStream, a.encodingName, err)
		}
		if out.Stderr, err = a.decode(out.Stderr); err != nil {
			return Output{}, fmt.Errorf("%w: decode stderr as %s: %w", protocol.ErrStream, a.encodingName, err)
		}
		out.Encoding = a.encodingName
	}
	return out, nil
}

func (a Aggregator) decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	return a.encoding.NewDecoder().Bytes(data)
}

// drain reads r in chunks until EOF or failure and reports the concatenated bytes.
func drain(name string, r io.Reader, chunkSize int, out chan<- chunkResult) {
	if r == nil {
		out <- chunkResult{name: name}
		return
	}

	var buf []byte
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if errors.Is(err, io.EOF) {
			out <- chunkResult{name: name, data: buf}
			return
		}
		if err != nil {
			out <- chunkResult{name: name, data: buf, err: err}
			return
		}
	}
}

// abandon terminates the child; the drain and wait goroutines finish on their buffered channels.
func abandon(proc Process) {
	_ = proc.Kill()
	_ = proc.Release()
}
