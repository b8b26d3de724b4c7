// Package config loads the engine's process configuration by layering
// defaults, an optional TOML file, and environment variables through
// koanf.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the engine's process configuration.
type Config struct {
	Server struct {
		Port       int    `koanf:"port"`
		Bind       string `koanf:"bind"`
		TokenFile  string `koanf:"token_file"`
	} `koanf:"server"`

	Storage struct {
		Root string `koanf:"root"` // central-root, overridden by $REVIEW_HOME
	} `koanf:"storage"`

	Classifier struct {
		BatchSize     int     `koanf:"batch_size"`
		MaxConcurrent int     `koanf:"max_concurrent"`
		Command       string  `koanf:"command"`
		Model         string  `koanf:"model"`
		RatePerSecond float64 `koanf:"rate_per_second"`
	} `koanf:"classifier"`

	Watcher struct {
		DebounceMillis int `koanf:"debounce_millis"`
	} `koanf:"watcher"`
}

// Load loads configuration from a file (if configPath is non-empty or one
// of the default locations exists) and overlays environment variables
// prefixed REVIEWSTATION_.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  17950,
		"server.bind":                  "0.0.0.0",
		"server.token_file":            "~/.reviewstation/token",
		"storage.root":                 "",
		"classifier.batch_size":        5,
		"classifier.max_concurrent":    2,
		"classifier.command":           "",
		"classifier.model":             "",
		"classifier.rate_per_second":   2.0,
		"watcher.debounce_millis":      200,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	} else {
		for _, p := range []string{"./reviewstation.toml", "$HOME/.reviewstation.toml"} {
			p = os.ExpandEnv(p)
			if _, err := os.Stat(p); err == nil {
				if err := k.Load(file.Provider(p), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	if err := k.Load(env.Provider("REVIEWSTATION_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "REVIEWSTATION_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading config env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Classifier.BatchSize = clamp(cfg.Classifier.BatchSize, 1, 20)
	cfg.Classifier.MaxConcurrent = clamp(cfg.Classifier.MaxConcurrent, 1, 10)

	if root := os.Getenv("REVIEW_HOME"); root != "" {
		cfg.Storage.Root = root
	}

	return &cfg, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// repoTaxonomyOverlay mirrors classifier.CustomCategory's koanf shape,
// kept here (rather than imported) to avoid a config->classifier edge.
type repoTaxonomyOverlay struct {
	Taxonomy struct {
		Labels []string `koanf:"labels"`
	} `koanf:"taxonomy"`
}

// LoadRepoTaxonomy reads a repo-local custom taxonomy overlay from
// "<repoRoot>/.reviewstation-taxonomy.toml", if present. A missing file is
// not an error; it yields a nil slice (spec.md §4.4 custom labels are
// optional).
func LoadRepoTaxonomy(repoRoot string) ([]string, error) {
	path := repoRoot + string(os.PathSeparator) + ".reviewstation-taxonomy.toml"
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat taxonomy overlay %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("loading taxonomy overlay %s: %w", path, err)
	}
	var overlay repoTaxonomyOverlay
	if err := k.Unmarshal("", &overlay); err != nil {
		return nil, fmt.Errorf("unmarshalling taxonomy overlay %s: %w", path, err)
	}
	return overlay.Taxonomy.Labels, nil
}

// Validate checks the minimal invariants the rest of the engine relies on.
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if cfg.Classifier.BatchSize < 1 || cfg.Classifier.BatchSize > 20 {
		return fmt.Errorf("classifier.batch_size must be clamped to [1, 20]")
	}
	if cfg.Classifier.MaxConcurrent < 1 || cfg.Classifier.MaxConcurrent > 10 {
		return fmt.Errorf("classifier.max_concurrent must be clamped to [1, 10]")
	}
	return nil
}
