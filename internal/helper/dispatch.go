package helper

import (
	"context"
	"fmt"

	"github.com/rbright/dialogbridge/internal/dialog"
	"github.com/rbright/dialogbridge/internal/protocol"
)

// Dispatch renders the dialog named by req and returns the operation's result shape.
func Dispatch(ctx context.Context, r Renderer, req protocol.Request) (any, error) {
	switch req.Operation {
	case protocol.OpShowOpenDialogSync:
		var payload dialog.OptionsRequest[dialog.OpenDialogOptions]
		if err := req.Decode(&payload); err != nil {
			return nil, decodeError(req.Operation, err)
		}
		paths, canceled, err := r.OpenFile(ctx, payload.Options)
		if err != nil {
			return nil, err
		}
		if canceled {
			return dialog.OpenDialogSyncResult{}, nil
		}
		return dialog.OpenDialogSyncResult{FilePaths: paths}, nil

	case protocol.OpShowOpenDialog:
		var payload dialog.OptionsRequest[dialog.OpenDialogOptions]
		if err := req.Decode(&payload); err != nil {
			return nil, decodeError(req.Operation, err)
		}
		paths, canceled, err := r.OpenFile(ctx, payload.Options)
		if err != nil {
			return nil, err
		}
		if paths == nil {
			paths = []string{}
		}
		return dialog.OpenDialogResult{Canceled: canceled, FilePaths: paths}, nil

	case protocol.OpShowSaveDialogSync:
		var payload dialog.OptionsRequest[dialog.SaveDialogOptions]
		if err := req.Decode(&payload); err != nil {
			return nil, decodeError(req.Operation, err)
		}
		path, _, err := r.SaveFile(ctx, payload.Options)
		if err != nil {
			return nil, err
		}
		return dialog.SaveDialogSyncResult{FilePath: path}, nil

	case protocol.OpShowSaveDialog:
		var payload dialog.OptionsRequest[dialog.SaveDialogOptions]
		if err := req.Decode(&payload); err != nil {
			return nil, decodeError(req.Operation, err)
		}
		path, canceled, err := r.SaveFile(ctx, payload.Options)
		if err != nil {
			return nil, err
		}
		return dialog.SaveDialogResult{Canceled: canceled, FilePath: path}, nil

	case protocol.OpShowMessageBoxSync:
		var payload dialog.OptionsRequest[dialog.MessageBoxOptions]
		if err := req.Decode(&payload); err != nil {
			return nil, decodeError(req.Operation, err)
		}
		response, _, err := r.MessageBox(ctx, payload.Options)
		if err != nil {
			return nil, err
		}
		return dialog.MessageBoxSyncResult{ClickedButtonIndex: response}, nil

	case protocol.OpShowMessageBox:
		var payload dialog.OptionsRequest[dialog.MessageBoxOptions]
		if err := req.Decode(&payload); err != nil {
			return nil, decodeError(req.Operation, err)
		}
		response, checked, err := r.MessageBox(ctx, payload.Options)
		if err != nil {
			return nil, err
		}
		return dialog.MessageBoxResult{Response: response, CheckboxChecked: checked}, nil

	case protocol.OpShowErrorBox:
		var payload dialog.ErrorBoxRequest
		if err := req.Decode(&payload); err != nil {
			return nil, decodeError(req.Operation, err)
		}
		if err := r.ErrorBox(ctx, payload.Title, payload.Content); err != nil {
			return nil, err
		}
		return dialog.ErrorBoxResult{}, nil

	default:
		return nil, fmt.Errorf("function type %q is invalid", req.Operation.String())
	}
}

func decodeError(op protocol.Operation, err error) error {
	return fmt.Errorf("decode %s payload: %w", op, err)
}
