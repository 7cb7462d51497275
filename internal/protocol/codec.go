package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultDataEnv is the environment variable the helper reads its request from.
	DefaultDataEnv = "ELECTRON_DIALOG_EXTERNAL_DATA"
	// DefaultFunctionField carries the operation name inside a request.
	DefaultFunctionField = "_functionType"
	// DefaultSuccessField carries the success marker inside a response.
	DefaultSuccessField = "_success"
)

// Codec encodes requests and decodes responses using a pair of reserved field names.
type Codec struct {
	FunctionField string
	SuccessField  string
}

// DefaultCodec returns the codec compatible with the stock helper.
func DefaultCodec() Codec {
	return Codec{FunctionField: DefaultFunctionField, SuccessField: DefaultSuccessField}
}

// Request is one decoded helper request.
type Request struct {
	Operation Operation
	Payload   map[string]json.RawMessage
}

// Decode unmarshals the request payload into v.
func (r Request) Decode(v any) error {
	return remarshal(r.Payload, v)
}

// Result is the operation-specific remainder of a success envelope.
type Result map[string]json.RawMessage

// Decode unmarshals the whole result into v.
func (r Result) Decode(v any) error {
	return remarshal(r, v)
}

// Field unmarshals one result field into v and reports whether it was present.
func (r Result) Field(name string, v any) (bool, error) {
	raw, ok := r[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode result field %q: %w", name, err)
	}
	return true, nil
}

// EncodeRequest serializes payload merged with the operation name under the function field.
func (c Codec) EncodeRequest(op Operation, payload any) ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: unknown operation %s", ErrInvalidRequest, op)
	}

	fields, err := objectFields(payload)
	if err != nil {
		return nil, err
	}
	if _, exists := fields[c.FunctionField]; exists {
		return nil, fmt.Errorf("%w: payload uses reserved field %q", ErrInvalidRequest, c.FunctionField)
	}

	name, err := json.Marshal(op.String())
	if err != nil {
		return nil, fmt.Errorf("%w: encode operation: %w", ErrInvalidRequest, err)
	}
	fields[c.FunctionField] = name

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrInvalidRequest, err)
	}
	return data, nil
}

// DecodeRequest parses a request written by EncodeRequest and strips the function field.
func (c Codec) DecodeRequest(data []byte) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &fields); err != nil {
		return Request{}, fmt.Errorf("%w: decode request: %w", ErrInvalidRequest, err)
	}
	if fields == nil {
		return Request{}, fmt.Errorf("%w: request is not a JSON object", ErrInvalidRequest)
	}

	raw, ok := fields[c.FunctionField]
	if !ok {
		return Request{}, fmt.Errorf("%w: request is missing %q", ErrInvalidRequest, c.FunctionField)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return Request{}, fmt.Errorf("%w: decode %q: %w", ErrInvalidRequest, c.FunctionField, err)
	}
	op, err := ParseOperation(name)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	delete(fields, c.FunctionField)
	return Request{Operation: op, Payload: fields}, nil
}

// EncodeResponse serializes result fields into a success envelope.
func (c Codec) EncodeResponse(result any) ([]byte, error) {
	fields, err := objectFields(result)
	if err != nil {
		return nil, err
	}
	fields[c.SuccessField] = json.RawMessage("true")
	return json.Marshal(fields)
}

// DecodeResponse validates helper stdout and returns the envelope without its success marker.
func (c Codec) DecodeResponse(stdout string) (Result, error) {
	// A crashing helper pads its output with line breaks; trimming keeps diagnostics readable.
	trimmed := strings.TrimSpace(stdout)

	if !json.Valid([]byte(trimmed)) {
		return nil, &ResponseError{Reason: "is invalid JSON", Raw: trimmed}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil || fields == nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("is missing success marker %q", c.SuccessField), Raw: trimmed}
	}

	var success bool
	raw, ok := fields[c.SuccessField]
	if !ok || json.Unmarshal(raw, &success) != nil || !success {
		return nil, &ResponseError{Reason: fmt.Sprintf("is missing success marker %q", c.SuccessField), Raw: trimmed}
	}

	delete(fields, c.SuccessField)
	return Result(fields), nil
}

// objectFields marshals v and requires the result to be a JSON object.
func objectFields(v any) (map[string]json.RawMessage, error) {
	if v == nil {
		return map[string]json.RawMessage{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", ErrInvalidRequest, err)
	}
	if bytes.Equal(data, []byte("null")) {
		return map[string]json.RawMessage{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: payload must encode to a JSON object", ErrInvalidRequest)
	}
	return fields, nil
}

func remarshal(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
