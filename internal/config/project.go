package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectConfig is the optional llamac.yaml driver configuration: a handful
// of driver-level defaults, never source-language semantics (mirrors the
// teacher's funxy.yaml loader in internal/ext/config.go, trimmed to this
// driver's much smaller surface).
type ProjectConfig struct {
	// Optimise sets the default optimisation level, overridden by -O on
	// the command line.
	Optimise bool `yaml:"optimise,omitempty"`

	// TargetTriple overrides the host target triple detected at build
	// time. Empty means "use the host triple".
	TargetTriple string `yaml:"target_triple,omitempty"`

	// RuntimeLibPath is an extra directory searched for the runtime
	// library (libllamart.a / the GC) when assembling the linker
	// invocation.
	RuntimeLibPath string `yaml:"runtime_lib_path,omitempty"`
}

// DefaultProjectConfig is used when no llamac.yaml is present.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{}
}

// LoadProjectConfig reads and parses llamac.yaml from path. A missing file
// is not an error: it returns DefaultProjectConfig().
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProjectConfig(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// OptLevelOr resolves the effective optimisation level: -O on the command
// line always wins over llamac.yaml's optimise default.
func (c *ProjectConfig) OptLevelOr(cliOpt bool) OptLevel {
	if cliOpt || c.Optimise {
		return OptAggressive
	}
	return OptNone
}
