package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Loaded is the configuration in effect plus where it came from. Exists is false when
// defaults were used because no file was read.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load reads the configuration at explicitPath, or at the XDG location when it is empty.
//
// A missing file, or an implicit location that cannot be resolved because the environment
// lacks HOME and XDG_CONFIG_HOME, yields defaults with a warning. Helpers started with a
// scrubbed environment rely on that.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		if strings.TrimSpace(explicitPath) != "" {
			return Loaded{}, err
		}
		return defaultsWithWarning("", fmt.Sprintf("%v; using defaults", err)), nil
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return defaultsWithWarning(path, fmt.Sprintf("config file %q not found; using defaults", path)), nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, warnings, err := Parse(string(content), Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return Loaded{Path: path, Config: cfg, Warnings: warnings, Exists: true}, nil
}

func defaultsWithWarning(path string, message string) Loaded {
	return Loaded{
		Path:     path,
		Config:   Default(),
		Warnings: []Warning{{Message: message}},
	}
}
