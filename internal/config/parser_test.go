package config

import (
	"strings"
	"testing"
)

func TestParseValidConfig(t *testing.T) {
	input := `
{
  // helper launched per call
  "helper": {
    "cmd": "electron '/opt/my app/electron.js'",
    "transport": "stdin",
    "encoding": "latin1",
    "inherit_env": false,
    "env": ["GDK_BACKEND=x11"],
    "timeout_ms": 30000,
    "drain_grace_ms": 50,
  },
  "protocol": {"success_field": "success"},
  "renderer": {"cmd": "/usr/bin/zenity --modal"},
}
`

	cfg, warnings, err := Parse(input, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if got := cfg.Helper.Command.Argv; len(got) != 2 || got[0] != "electron" || got[1] != "/opt/my app/electron.js" {
		t.Fatalf("unexpected helper argv: %#v", got)
	}
	if cfg.Helper.Transport != TransportStdin {
		t.Fatalf("unexpected transport: %s", cfg.Helper.Transport)
	}
	if cfg.Helper.Encoding != "latin1" {
		t.Fatalf("unexpected encoding: %s", cfg.Helper.Encoding)
	}
	if cfg.Helper.InheritEnv {
		t.Fatal("expected inherit_env=false")
	}
	if len(cfg.Helper.Env) != 1 || cfg.Helper.Env[0] != "GDK_BACKEND=x11" {
		t.Fatalf("unexpected env: %#v", cfg.Helper.Env)
	}
	if cfg.Helper.TimeoutMS != 30000 || cfg.Helper.DrainGraceMS != 50 {
		t.Fatalf("unexpected durations: %d %d", cfg.Helper.TimeoutMS, cfg.Helper.DrainGraceMS)
	}
	if cfg.Protocol.SuccessField != "success" || cfg.Protocol.FunctionField != "_functionType" {
		t.Fatalf("unexpected protocol fields: %+v", cfg.Protocol)
	}
	if got := cfg.Renderer.Command.Argv; len(got) != 2 || got[0] != "/usr/bin/zenity" {
		t.Fatalf("unexpected renderer argv: %#v", got)
	}
}

func TestParseEmptyContentReturnsBase(t *testing.T) {
	cfg, _, err := Parse("  \n", Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Helper.Command.Raw != "dialoghelper" {
		t.Fatalf("unexpected helper command: %q", cfg.Helper.Command.Raw)
	}
}

func TestParseUnknownKeyFails(t *testing.T) {
	_, _, err := Parse(`{"helper": {"socket": "/tmp/x"}}`, Default())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseNonJSONFails(t *testing.T) {
	_, _, err := Parse(`helper.cmd = dialoghelper`, Default())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseDataEnvIgnoredWithStdinWarns(t *testing.T) {
	_, warnings, err := Parse(`{"helper": {"transport": "stdin", "data_env": "X"}}`, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "ignored") {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
}
