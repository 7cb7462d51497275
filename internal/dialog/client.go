// Package dialog exposes native dialogs rendered by a helper process.
package dialog

import (
	"context"

	"github.com/rbright/dialogbridge/internal/invoke"
	"github.com/rbright/dialogbridge/internal/protocol"
)

// Client issues dialog requests. Each call spawns its own helper.
type Client struct {
	invoker *invoke.Invoker
}

// NewClient returns a client that launches helpers through invoker.
func NewClient(invoker *invoke.Invoker) *Client {
	return &Client{invoker: invoker}
}

// ShowOpenDialogSync blocks until the picker closes and returns the chosen paths.
// A canceled picker yields nil paths and no error.
func (c *Client) ShowOpenDialogSync(ctx context.Context, opts OpenDialogOptions) ([]string, error) {
	out, err := call[OpenDialogSyncResult](ctx, c.invoker, protocol.OpShowOpenDialogSync, OptionsRequest[OpenDialogOptions]{Options: opts})
	if err != nil {
		return nil, err
	}
	return out.FilePaths, nil
}

// ShowOpenDialog starts an open-file picker without blocking.
func (c *Client) ShowOpenDialog(ctx context.Context, opts OpenDialogOptions) *Pending[OpenDialogResult] {
	return start[OpenDialogResult](ctx, c.invoker, protocol.OpShowOpenDialog, OptionsRequest[OpenDialogOptions]{Options: opts})
}

// ShowSaveDialogSync blocks until the picker closes; an empty path means canceled.
func (c *Client) ShowSaveDialogSync(ctx context.Context, opts SaveDialogOptions) (string, error) {
	out, err := call[SaveDialogSyncResult](ctx, c.invoker, protocol.OpShowSaveDialogSync, OptionsRequest[SaveDialogOptions]{Options: opts})
	if err != nil {
		return "", err
	}
	return out.FilePath, nil
}

// ShowSaveDialog starts a save-file picker without blocking.
func (c *Client) ShowSaveDialog(ctx context.Context, opts SaveDialogOptions) *Pending[SaveDialogResult] {
	return start[SaveDialogResult](ctx, c.invoker, protocol.OpShowSaveDialog, OptionsRequest[SaveDialogOptions]{Options: opts})
}

// ShowMessageBoxSync blocks until the box closes and returns the clicked button index.
func (c *Client) ShowMessageBoxSync(ctx context.Context, opts MessageBoxOptions) (int, error) {
	out, err := call[MessageBoxSyncResult](ctx, c.invoker, protocol.OpShowMessageBoxSync, OptionsRequest[MessageBoxOptions]{Options: opts})
	if err != nil {
		return 0, err
	}
	return out.ClickedButtonIndex, nil
}

// ShowMessageBox starts a message box without blocking.
func (c *Client) ShowMessageBox(ctx context.Context, opts MessageBoxOptions) *Pending[MessageBoxResult] {
	return start[MessageBoxResult](ctx, c.invoker, protocol.OpShowMessageBox, OptionsRequest[MessageBoxOptions]{Options: opts})
}

// ShowErrorBox blocks until the error box is dismissed.
func (c *Client) ShowErrorBox(ctx context.Context, title string, content string) error {
	_, err := call[ErrorBoxResult](ctx, c.invoker, protocol.OpShowErrorBox, ErrorBoxRequest{Title: title, Content: content})
	return err
}

func call[T any](ctx context.Context, iv *invoke.Invoker, op protocol.Operation, payload any) (T, error) {
	result, err := iv.Call(ctx, op, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResult[T](op, result)
}

func start[T any](ctx context.Context, iv *invoke.Invoker, op protocol.Operation, payload any) *Pending[T] {
	return &Pending[T]{pending: iv.Start(ctx, op, payload)}
}
