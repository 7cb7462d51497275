// Package doctor runs readiness diagnostics for config, helper, display session, and renderer.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rbright/dialogbridge/internal/config"
	"github.com/rbright/dialogbridge/internal/stream"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	message := fmt.Sprintf("loaded %q", cfg.Path)
	switch {
	case cfg.Path == "":
		message = "no config location resolvable; using defaults"
	case !cfg.Exists:
		message = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: message})

	checks = append(checks, checkCommand(cfg.Config.Helper.Command.Argv, "helper.cmd"))
	for _, arg := range entryPaths(cfg.Config.Helper.Command.Argv) {
		checks = append(checks, checkPath(arg))
	}

	checks = append(checks, checkAnyEnv(
		[]string{"WAYLAND_DISPLAY", "DISPLAY"},
		"display session detected",
		"neither WAYLAND_DISPLAY nor DISPLAY is set; dialogs cannot be shown",
	))
	checks = append(checks, checkEncoding(cfg.Config.Helper.Encoding))
	checks = append(checks, checkCommand(cfg.Config.Renderer.Command.Argv, "renderer.cmd"))

	return Report{Checks: checks}
}

// checkAnyEnv passes when at least one of the named variables is non-empty.
func checkAnyEnv(names []string, okMsg, failMsg string) Check {
	name := strings.Join(names, "|")
	for _, n := range names {
		if value := strings.TrimSpace(os.Getenv(n)); value != "" {
			return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s (%s=%s)", okMsg, n, value)}
		}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// entryPaths returns helper arguments that name files, such as an entry script.
func entryPaths(argv []string) []string {
	if len(argv) < 2 {
		return nil
	}
	var paths []string
	for _, arg := range argv[1:] {
		if strings.HasPrefix(arg, "-") || !strings.ContainsRune(arg, filepath.Separator) {
			continue
		}
		paths = append(paths, arg)
	}
	return paths
}

func checkPath(path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: "helper.entry", Pass: false, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	if info.IsDir() {
		return Check{Name: "helper.entry", Pass: false, Message: fmt.Sprintf("%s is a directory", path)}
	}
	return Check{Name: "helper.entry", Pass: true, Message: fmt.Sprintf("%s exists", path)}
}

func checkEncoding(name string) Check {
	if strings.TrimSpace(name) == "" {
		return Check{Name: "helper.encoding", Pass: true, Message: "raw bytes (no transcoding)"}
	}
	if _, err := stream.LookupEncoding(name); err != nil {
		return Check{Name: "helper.encoding", Pass: false, Message: err.Error()}
	}
	return Check{Name: "helper.encoding", Pass: true, Message: fmt.Sprintf("decoding helper output as %s", name)}
}
