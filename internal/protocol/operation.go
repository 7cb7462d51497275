// Package protocol defines the request/response contract shared with the dialog helper process.
package protocol

import "fmt"

// Operation is one entry of the closed set of helper functions.
type Operation int

const (
	OpShowOpenDialogSync Operation = iota + 1
	OpShowOpenDialog
	OpShowSaveDialogSync
	OpShowSaveDialog
	OpShowMessageBoxSync
	OpShowMessageBox
	OpShowErrorBox
)

var operationNames = map[Operation]string{
	OpShowOpenDialogSync: "FN_SHOW_OPEN_DIALOG_SYNC",
	OpShowOpenDialog:     "FN_SHOW_OPEN_DIALOG",
	OpShowSaveDialogSync: "FN_SHOW_SAVE_DIALOG_SYNC",
	OpShowSaveDialog:     "FN_SHOW_SAVE_DIALOG",
	OpShowMessageBoxSync: "FN_SHOW_MESSAGE_BOX_SYNC",
	OpShowMessageBox:     "FN_SHOW_MESSAGE_BOX",
	OpShowErrorBox:       "FN_SHOW_ERROR_BOX",
}

// Operations returns every known operation in declaration order.
func Operations() []Operation {
	return []Operation{
		OpShowOpenDialogSync,
		OpShowOpenDialog,
		OpShowSaveDialogSync,
		OpShowSaveDialog,
		OpShowMessageBoxSync,
		OpShowMessageBox,
		OpShowErrorBox,
	}
}

// String returns the wire name understood by the helper.
func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// Valid reports whether o belongs to the closed operation set.
func (o Operation) Valid() bool {
	_, ok := operationNames[o]
	return ok
}

// ParseOperation maps a wire name back to its operation.
func ParseOperation(name string) (Operation, error) {
	for op, wire := range operationNames {
		if wire == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("function type %q is invalid", name)
}
