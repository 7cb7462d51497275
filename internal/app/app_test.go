package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "dialogbridge")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestRunnerOpenSyncPrintsPaths(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{
		"--config", paths.configPath, "open", "--title", "Pick", "--options", `{"properties":["openFile"]}`,
	})
	require.Equal(t, 0, exitCode, stderr.String())
	require.JSONEq(t, `{"filePaths":["/tmp/a.txt"]}`, stdout.String())

	requests := readRequests(t, paths.requestLog)
	require.Len(t, requests, 1)
	require.JSONEq(t, `{
  "_functionType": "FN_SHOW_OPEN_DIALOG_SYNC",
  "options": {"title": "Pick", "properties": ["openFile"]}
}`, requests[0])
}

func TestRunnerOpenAsyncPrintsFullResult(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "open", "--async"})
	require.Equal(t, 0, exitCode, stderr.String())
	require.JSONEq(t, `{"canceled":false,"filePaths":["/tmp/a.txt"]}`, stdout.String())
}

func TestRunnerSaveSyncAndAsync(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "save"})
	require.Equal(t, 0, exitCode, stderr.String())
	require.JSONEq(t, `{"filePath":"/tmp/out.txt"}`, stdout.String())

	stdout.Reset()
	exitCode = runner.Execute(context.Background(), []string{"--config", paths.configPath, "save", "--async"})
	require.Equal(t, 0, exitCode, stderr.String())
	require.JSONEq(t, `{"canceled":false,"filePath":"/tmp/out.txt"}`, stdout.String())
}

func TestRunnerMessageRequiresText(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "message"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "message box requires")
	require.NoFileExists(t, paths.requestLog)
}

func TestRunnerMessageMergesFlagsIntoOptions(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{
		"--config", paths.configPath, "message", "--async",
		"--options", `{"buttons":["OK","Cancel"],"message":"from options"}`,
		"--message", "from flag",
	})
	require.Equal(t, 0, exitCode, stderr.String())
	require.JSONEq(t, `{"response":1,"checkboxChecked":false}`, stdout.String())

	requests := readRequests(t, paths.requestLog)
	require.Len(t, requests, 1)
	require.JSONEq(t, `{
  "_functionType": "FN_SHOW_MESSAGE_BOX",
  "options": {"message": "from flag", "buttons": ["OK", "Cancel"]}
}`, requests[0])
}

func TestRunnerRejectsMalformedOptions(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "open", "--options", "{"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "--options")
	require.NoFileExists(t, paths.requestLog)
}

func TestRunnerErrorBox(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{
		"--config", paths.configPath, "error", "--title", "Oops", "--content", "disk full",
	})
	require.Equal(t, 0, exitCode, stderr.String())
	require.Empty(t, stdout.String())

	requests := readRequests(t, paths.requestLog)
	require.Len(t, requests, 1)
	require.JSONEq(t, `{"_functionType":"FN_SHOW_ERROR_BOX","title":"Oops","content":"disk full"}`, requests[0])
}

func TestRunnerReportsHelperFailure(t *testing.T) {
	paths := setupRunnerEnvWithHelper(t, "#!/usr/bin/env bash\necho 'renderer crashed' >&2\nexit 3\n")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "save"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
	require.Empty(t, stdout.String())
}

func TestRunnerSmokeRunsEveryOperation(t *testing.T) {
	for _, async := range []bool{false, true} {
		paths := setupRunnerEnv(t)

		var stdout bytes.Buffer
		var stderr bytes.Buffer
		runner := Runner{Stdout: &stdout, Stderr: &stderr}

		args := []string{"--config", paths.configPath, "smoke"}
		if async {
			args = append(args, "--async")
		}
		exitCode := runner.Execute(context.Background(), args)
		require.Equal(t, 0, exitCode, stderr.String())

		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Equal(t, []string{
			`FN_SHOW_OPEN_DIALOG: {"canceled":false,"filePaths":["/tmp/a.txt"]}`,
			`FN_SHOW_SAVE_DIALOG: {"canceled":false,"filePath":"/tmp/out.txt"}`,
			`FN_SHOW_MESSAGE_BOX: {"response":1,"checkboxChecked":false}`,
			`FN_SHOW_OPEN_DIALOG_SYNC: {"filePaths":["/tmp/a.txt"]}`,
			`FN_SHOW_SAVE_DIALOG_SYNC: {"filePath":"/tmp/out.txt"}`,
			`FN_SHOW_MESSAGE_BOX_SYNC: {"clickedButtonIndex":1}`,
			`FN_SHOW_ERROR_BOX: {}`,
		}, lines)
		require.Len(t, readRequests(t, paths.requestLog), 7)
	}
}

func TestRunnerDoctorFailsWithoutDisplay(t *testing.T) {
	paths := setupRunnerEnv(t)
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "doctor"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "[OK] config")
	require.Contains(t, stdout.String(), "[FAIL] WAYLAND_DISPLAY|DISPLAY")
}

func TestRunnerInvalidConfigFails(t *testing.T) {
	setupRunnerEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"helper":{"transport":"carrier-pigeon"}}`), 0o600))

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", configPath, "open"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "transport")
}

type runnerPaths struct {
	configPath string
	requestLog string
}

const stubHelperTemplate = `#!/usr/bin/env bash
set -euo pipefail
req="${ELECTRON_DIALOG_EXTERNAL_DATA}"
printf '%s\n' "$req" >> '__LOG__'
case "$req" in
  *'"FN_SHOW_OPEN_DIALOG_SYNC"'*) printf '{"_success":true,"filePaths":["/tmp/a.txt"]}' ;;
  *'"FN_SHOW_OPEN_DIALOG"'*) printf '{"_success":true,"canceled":false,"filePaths":["/tmp/a.txt"]}' ;;
  *'"FN_SHOW_SAVE_DIALOG_SYNC"'*) printf '{"_success":true,"filePath":"/tmp/out.txt"}' ;;
  *'"FN_SHOW_SAVE_DIALOG"'*) printf '{"_success":true,"canceled":false,"filePath":"/tmp/out.txt"}' ;;
  *'"FN_SHOW_MESSAGE_BOX_SYNC"'*) printf '{"_success":true,"clickedButtonIndex":1}' ;;
  *'"FN_SHOW_MESSAGE_BOX"'*) printf '{"_success":true,"response":1,"checkboxChecked":false}' ;;
  *'"FN_SHOW_ERROR_BOX"'*) printf '{"_success":true}' ;;
  *) echo "unexpected request" >&2; exit 1 ;;
esac
`

func setupRunnerEnv(t *testing.T) runnerPaths {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "requests.log")
	return setupRunnerEnvWithHelper(t, strings.ReplaceAll(stubHelperTemplate, "__LOG__", logPath), logPath)
}

func setupRunnerEnvWithHelper(t *testing.T, script string, requestLog ...string) runnerPaths {
	t.Helper()

	t.Setenv("XDG_STATE_HOME", t.TempDir())

	dir := t.TempDir()
	helperPath := filepath.Join(dir, "fake-helper")
	require.NoError(t, os.WriteFile(helperPath, []byte(script), 0o755))

	cfg, err := json.Marshal(map[string]any{
		"helper": map[string]any{"cmd": helperPath, "drain_grace_ms": 50},
	})
	require.NoError(t, err)
	configPath := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(configPath, cfg, 0o600))

	paths := runnerPaths{configPath: configPath}
	if len(requestLog) > 0 {
		paths.requestLog = requestLog[0]
	}
	return paths
}

func readRequests(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
