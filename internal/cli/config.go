package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath is consulted when --config is not given. A missing
// file at the default path is not an error.
const DefaultConfigPath = "lineal.toml"

// Config holds file-based defaults for CLI commands. Flags always win
// over config values.
type Config struct {
	// Declarations is the default CUE declarations directory.
	Declarations string

	// Scenarios is the default scenario directory for the test command.
	Scenarios string

	// Database is the default audit store path.
	Database string

	// Format is the default output format.
	Format string
}

type fileConfig struct {
	Declarations string `toml:"declarations"`
	Scenarios    string `toml:"scenarios"`
	Database     string `toml:"database"`
	Format       string `toml:"format"`
}

// LoadConfig reads a TOML config file. With an empty path the default
// location is tried and absence yields an empty config.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return &Config{}, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg := &Config{}
	if meta.IsDefined("declarations") {
		cfg.Declarations = strings.TrimSpace(raw.Declarations)
	}
	if meta.IsDefined("scenarios") {
		cfg.Scenarios = strings.TrimSpace(raw.Scenarios)
	}
	if meta.IsDefined("database") {
		cfg.Database = strings.TrimSpace(raw.Database)
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	return cfg, nil
}
