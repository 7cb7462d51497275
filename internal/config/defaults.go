package config

import "github.com/rbright/dialogbridge/internal/protocol"

const (
	TransportEnv   = "env"
	TransportStdin = "stdin"

	BackendZenity = "zenity"
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	helper := "dialoghelper"
	renderer := "zenity"

	return Config{
		Helper: HelperConfig{
			Command:      CommandConfig{Raw: helper, Argv: mustParseArgv(helper)},
			DataEnv:      protocol.DefaultDataEnv,
			Transport:    TransportEnv,
			Encoding:     "utf-8",
			InheritEnv:   true,
			Env:          nil,
			TimeoutMS:    0,
			DrainGraceMS: 200,
		},
		Protocol: ProtocolConfig{
			FunctionField: protocol.DefaultFunctionField,
			SuccessField:  protocol.DefaultSuccessField,
		},
		Renderer: RendererConfig{
			Backend: BackendZenity,
			Command: CommandConfig{Raw: renderer, Argv: mustParseArgv(renderer)},
		},
	}
}
