package helper

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbright/dialogbridge/internal/config"
	"github.com/rbright/dialogbridge/internal/dialog"
)

// Renderer draws dialogs on behalf of the helper.
//
// Implementations report a dismissed dialog as canceled, not as an error.
type Renderer interface {
	OpenFile(ctx context.Context, opts dialog.OpenDialogOptions) (paths []string, canceled bool, err error)
	SaveFile(ctx context.Context, opts dialog.SaveDialogOptions) (path string, canceled bool, err error)
	MessageBox(ctx context.Context, opts dialog.MessageBoxOptions) (response int, checkboxChecked bool, err error)
	ErrorBox(ctx context.Context, title string, content string) error
}

// NewRenderer builds the renderer selected by cfg.
func NewRenderer(cfg config.RendererConfig) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.BackendZenity:
		if len(cfg.Command.Argv) == 0 {
			return nil, fmt.Errorf("renderer.cmd must not be empty")
		}
		return ZenityRenderer{Argv: append([]string(nil), cfg.Command.Argv...)}, nil
	default:
		return nil, fmt.Errorf("unsupported renderer backend %q", cfg.Backend)
	}
}
