// Package config resolves, parses, validates, and defaults dialogbridge configuration.
package config

// Config is the fully materialized runtime configuration used by dialogbridge.
type Config struct {
	Helper   HelperConfig
	Protocol ProtocolConfig
	Renderer RendererConfig
}

// HelperConfig controls how the helper process is spawned and how its output is read.
type HelperConfig struct {
	Command      CommandConfig
	DataEnv      string
	Transport    string
	Encoding     string
	InheritEnv   bool
	Env          []string
	TimeoutMS    int
	DrainGraceMS int
}

// ProtocolConfig names the reserved request and response fields.
type ProtocolConfig struct {
	FunctionField string
	SuccessField  string
}

// RendererConfig selects the dialog renderer used by dialoghelper.
type RendererConfig struct {
	Backend string
	Command CommandConfig
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
