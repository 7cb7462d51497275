package dialog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/rbright/dialogbridge/internal/protocol"
)

var resultSchemas = map[protocol.Operation]string{
	protocol.OpShowOpenDialogSync: `{
  "type": "object",
  "properties": {
    "filePaths": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`,
	protocol.OpShowOpenDialog: `{
  "type": "object",
  "required": ["canceled", "filePaths"],
  "properties": {
    "canceled": {"type": "boolean"},
    "filePaths": {"type": "array", "items": {"type": "string"}},
    "bookmarks": {"type": "array", "items": {"type": "string"}}
  }
}`,
	protocol.OpShowSaveDialogSync: `{
  "type": "object",
  "properties": {
    "filePath": {"type": ["string", "null"]}
  }
}`,
	protocol.OpShowSaveDialog: `{
  "type": "object",
  "required": ["canceled"],
  "properties": {
    "canceled": {"type": "boolean"},
    "filePath": {"type": "string"},
    "bookmark": {"type": "string"}
  }
}`,
	protocol.OpShowMessageBoxSync: `{
  "type": "object",
  "required": ["clickedButtonIndex"],
  "properties": {
    "clickedButtonIndex": {"type": "integer", "minimum": -1}
  }
}`,
	protocol.OpShowMessageBox: `{
  "type": "object",
  "required": ["response", "checkboxChecked"],
  "properties": {
    "response": {"type": "integer", "minimum": -1},
    "checkboxChecked": {"type": "boolean"}
  }
}`,
	protocol.OpShowErrorBox: `{"type": "object"}`,
}

var (
	compileOnce sync.Once
	compiled    map[protocol.Operation]*gojsonschema.Schema
	compileErr  error
)

func schemaFor(op protocol.Operation) (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[protocol.Operation]*gojsonschema.Schema, len(resultSchemas))
		for op, source := range resultSchemas {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
			if err != nil {
				compileErr = fmt.Errorf("compile %s result schema: %w", op, err)
				return
			}
			compiled[op] = schema
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiled[op]
	if !ok {
		return nil, fmt.Errorf("no result schema for %s", op)
	}
	return schema, nil
}

// ValidateResult checks a decoded helper result against the shape expected for op.
func ValidateResult(op protocol.Operation, result protocol.Result) error {
	schema, err := schemaFor(op)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s result: %w", op, err)
	}

	outcome, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &protocol.ResponseError{Reason: fmt.Sprintf("is not a valid %s result", op), Raw: string(raw), Err: err}
	}
	if outcome.Valid() {
		return nil
	}

	details := make([]string, 0, len(outcome.Errors()))
	for _, desc := range outcome.Errors() {
		details = append(details, desc.String())
	}
	return &protocol.ResponseError{
		Reason: fmt.Sprintf("does not match the %s result shape (%s)", op, strings.Join(details, "; ")),
		Raw:    string(raw),
	}
}

func decodeResult[T any](op protocol.Operation, result protocol.Result) (T, error) {
	var out T
	if err := ValidateResult(op, result); err != nil {
		return out, err
	}
	if err := result.Decode(&out); err != nil {
		return out, &protocol.ResponseError{Reason: fmt.Sprintf("cannot be decoded as a %s result", op), Err: err}
	}
	return out, nil
}
