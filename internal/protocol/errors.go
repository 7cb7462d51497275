package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrSpawn marks failures to start (or reap) the helper process.
	ErrSpawn = errors.New("spawn helper process")
	// ErrStream marks read failures on the helper's output channels.
	ErrStream = errors.New("helper output stream failed")
	// ErrProtocol marks helper output that is not a valid success envelope.
	ErrProtocol = errors.New("helper protocol violation")
	// ErrInvalidRequest marks payloads that cannot be encoded into a request.
	ErrInvalidRequest = errors.New("invalid helper request")
)

// ResponseError describes a rejected helper response and keeps the raw text for diagnosis.
type ResponseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("response from helper process %s, stdout: %s", e.Reason, e.Raw)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets callers match any ResponseError with errors.Is(err, ErrProtocol).
func (e *ResponseError) Is(target error) bool {
	return target == ErrProtocol
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}
