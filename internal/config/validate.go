package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if len(cfg.Helper.Command.Argv) == 0 {
		return nil, fmt.Errorf("helper.cmd must not be empty")
	}

	switch cfg.Helper.Transport {
	case TransportEnv:
		if strings.TrimSpace(cfg.Helper.DataEnv) == "" {
			return nil, fmt.Errorf("helper.data_env must not be empty when helper.transport=env")
		}
		if strings.ContainsAny(cfg.Helper.DataEnv, "=\x00") {
			return nil, fmt.Errorf("helper.data_env %q is not a valid variable name", cfg.Helper.DataEnv)
		}
	case TransportStdin:
	default:
		return nil, fmt.Errorf("helper.transport must be one of: env, stdin")
	}

	if enc := strings.TrimSpace(cfg.Helper.Encoding); enc != "" {
		if _, err := htmlindex.Get(enc); err != nil {
			return nil, fmt.Errorf("helper.encoding %q is not a supported encoding", enc)
		}
	}

	for _, entry := range cfg.Helper.Env {
		key, _, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("helper.env entry %q must be KEY=VALUE", entry)
		}
		if cfg.Helper.Transport == TransportEnv && key == cfg.Helper.DataEnv {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("helper.env entry %q is overridden by the request variable", key)})
		}
	}

	if cfg.Helper.TimeoutMS < 0 {
		return nil, fmt.Errorf("helper.timeout_ms must be >= 0")
	}
	if cfg.Helper.DrainGraceMS < 0 {
		return nil, fmt.Errorf("helper.drain_grace_ms must be >= 0")
	}

	function := strings.TrimSpace(cfg.Protocol.FunctionField)
	success := strings.TrimSpace(cfg.Protocol.SuccessField)
	if function == "" {
		return nil, fmt.Errorf("protocol.function_field must not be empty")
	}
	if success == "" {
		return nil, fmt.Errorf("protocol.success_field must not be empty")
	}
	if function == success {
		return nil, fmt.Errorf("protocol.function_field and protocol.success_field must differ")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Renderer.Backend))
	if backend == "" {
		return nil, fmt.Errorf("renderer.backend must not be empty")
	}
	if backend != BackendZenity {
		return nil, fmt.Errorf("renderer.backend must be one of: zenity")
	}
	if len(cfg.Renderer.Command.Argv) == 0 {
		return nil, fmt.Errorf("renderer.cmd must not be empty")
	}

	return warnings, nil
}
