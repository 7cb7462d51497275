package dialog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/dialogbridge/internal/invoke"
	"github.com/rbright/dialogbridge/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestShowOpenDialogSyncSendsOptionsAndReturnsPaths(t *testing.T) {
	client, requestFile := newStubClient(t, `{"_success":true,"filePaths":["/tmp/a.txt","/tmp/b.txt"]}`)

	paths, err := client.ShowOpenDialogSync(context.Background(), OpenDialogOptions{
		Title:      "Pick files",
		Properties: []string{"openFile", "multiSelections"},
		Filters:    []FileFilter{{Name: "Text", Extensions: []string{"txt"}}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"/tmp/a.txt", "/tmp/b.txt"}, paths)

	require.JSONEq(t, `{
  "_functionType": "FN_SHOW_OPEN_DIALOG_SYNC",
  "options": {
    "title": "Pick files",
    "properties": ["openFile", "multiSelections"],
    "filters": [{"name": "Text", "extensions": ["txt"]}]
  }
}`, readRequest(t, requestFile))
}

func TestShowOpenDialogSyncCanceledReturnsNil(t *testing.T) {
	client, _ := newStubClient(t, `{"_success":true}`)

	paths, err := client.ShowOpenDialogSync(context.Background(), OpenDialogOptions{})
	require.NoError(t, err)
	require.Nil(t, paths)
}

func TestShowOpenDialogResolvesAsync(t *testing.T) {
	client, requestFile := newStubClient(t, `{"_success":true,"canceled":false,"filePaths":["/tmp/a.txt"]}`)

	pending := client.ShowOpenDialog(context.Background(), OpenDialogOptions{DefaultPath: "/tmp"})
	require.Equal(t, protocol.OpShowOpenDialog, pending.Operation())
	require.NotEmpty(t, pending.ID())

	result, err := pending.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, OpenDialogResult{Canceled: false, FilePaths: []string{"/tmp/a.txt"}}, result)
	require.JSONEq(t, `{"_functionType":"FN_SHOW_OPEN_DIALOG","options":{"defaultPath":"/tmp"}}`, readRequest(t, requestFile))
}

func TestShowOpenDialogRejectsUnexpectedShape(t *testing.T) {
	client, _ := newStubClient(t, `{"_success":true,"canceled":"no","filePaths":[]}`)

	_, err := client.ShowOpenDialog(context.Background(), OpenDialogOptions{}).Wait(context.Background())
	require.ErrorIs(t, err, protocol.ErrProtocol)
	require.Contains(t, err.Error(), "result shape")
	require.Contains(t, err.Error(), `"canceled":"no"`)
}

func TestShowSaveDialogSync(t *testing.T) {
	client, requestFile := newStubClient(t, `{"_success":true,"filePath":"/tmp/out.txt"}`)

	path, err := client.ShowSaveDialogSync(context.Background(), SaveDialogOptions{NameFieldLabel: "Export as"})
	require.NoError(t, err)
	require.Equal(t, "/tmp/out.txt", path)
	require.JSONEq(t, `{"_functionType":"FN_SHOW_SAVE_DIALOG_SYNC","options":{"nameFieldLabel":"Export as"}}`, readRequest(t, requestFile))
}

func TestShowSaveDialogCanceled(t *testing.T) {
	client, _ := newStubClient(t, `{"_success":true,"canceled":true}`)

	result, err := client.ShowSaveDialog(context.Background(), SaveDialogOptions{}).Wait(context.Background())
	require.NoError(t, err)
	require.True(t, result.Canceled)
	require.Empty(t, result.FilePath)
}

func TestShowMessageBoxSyncPassesExplicitZeroDefault(t *testing.T) {
	client, requestFile := newStubClient(t, `{"_success":true,"clickedButtonIndex":1}`)
	defaultID := 0

	index, err := client.ShowMessageBoxSync(context.Background(), MessageBoxOptions{
		Message:   "Save changes?",
		Buttons:   []string{"Save", "Discard"},
		DefaultID: &defaultID,
	})
	require.NoError(t, err)
	require.Equal(t, 1, index)
	require.JSONEq(t, `{
  "_functionType": "FN_SHOW_MESSAGE_BOX_SYNC",
  "options": {"message": "Save changes?", "buttons": ["Save", "Discard"], "defaultId": 0}
}`, readRequest(t, requestFile))
}

func TestShowMessageBoxAsync(t *testing.T) {
	client, _ := newStubClient(t, `{"_success":true,"response":2,"checkboxChecked":true}`)

	pending := client.ShowMessageBox(context.Background(), MessageBoxOptions{Message: "hi", CheckboxLabel: "Remember"})
	<-pending.Done()
	result, err := pending.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, MessageBoxResult{Response: 2, CheckboxChecked: true}, result)
}

func TestShowMessageBoxSyncRequiresIndex(t *testing.T) {
	client, _ := newStubClient(t, `{"_success":true}`)

	_, err := client.ShowMessageBoxSync(context.Background(), MessageBoxOptions{Message: "hi"})
	require.ErrorIs(t, err, protocol.ErrProtocol)
}

func TestShowErrorBoxSendsTitleAndContent(t *testing.T) {
	client, requestFile := newStubClient(t, `{"_success":true}`)

	err := client.ShowErrorBox(context.Background(), "Oops", "Something broke")
	require.NoError(t, err)
	require.JSONEq(t, `{"_functionType":"FN_SHOW_ERROR_BOX","title":"Oops","content":"Something broke"}`, readRequest(t, requestFile))
}

func TestShowErrorBoxHelperCrashIsProtocolError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dialoghelper")
	script := "#!/usr/bin/env bash\necho 'TypeError: boom' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	iv, err := invoke.New(invoke.Config{Argv: []string{path}, InheritEnv: true}, protocol.DefaultCodec(), nil)
	require.NoError(t, err)

	err = NewClient(iv).ShowErrorBox(context.Background(), "t", "c")
	require.ErrorIs(t, err, protocol.ErrProtocol)
}

// newStubClient returns a client whose helper records its request and prints response.
func newStubClient(t *testing.T, response string) (*Client, string) {
	t.Helper()

	dir := t.TempDir()
	requestFile := filepath.Join(dir, "request.json")
	responseFile := filepath.Join(dir, "response.json")
	require.NoError(t, os.WriteFile(responseFile, []byte(response), 0o600))

	path := filepath.Join(dir, "dialoghelper")
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" +
		"printf '%s' \"$ELECTRON_DIALOG_EXTERNAL_DATA\" > \"$1\"\n" +
		"cat \"$2\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	iv, err := invoke.New(invoke.Config{
		Argv:       []string{path, requestFile, responseFile},
		InheritEnv: true,
	}, protocol.DefaultCodec(), nil)
	require.NoError(t, err)
	return NewClient(iv), requestFile
}

func readRequest(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
