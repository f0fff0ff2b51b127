package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the format from a file extension; anything that is not
// .yaml or .yml is TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/chain-pulse/config.{toml,yaml,yml}
//  2. ~/.config/chain-pulse/config.{toml,yaml,yml}
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := LoadFromReader(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes r over the defaults and applies env overrides.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		md, err := toml.NewDecoder(r).Decode(cfg)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg as TOML, creating the parent directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHAIN_PULSE_RPC_URL"); v != "" {
		cfg.Node.RPCURL = v
	}
	if v := os.Getenv("CHAIN_PULSE_WS_URL"); v != "" {
		cfg.Node.WSURL = v
	}
	if v := os.Getenv("CHAIN_PULSE_BAKER"); v != "" {
		cfg.Node.Baker = v
	}
	if v := os.Getenv("CHAIN_PULSE_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// DefaultPath is where Save puts a fresh config.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgConfigHome(home), "chain-pulse", "config.toml")
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	dirs := []string{filepath.Join(xdgConfigHome(home), "chain-pulse")}

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	if fallback := filepath.Join(home, ".config", "chain-pulse"); fallback != dirs[0] {
		dirs = append(dirs, fallback)
	}

	var paths []string
	for _, d := range dirs {
		for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
			paths = append(paths, filepath.Join(d, name))
		}
	}
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgStateHome returns XDG_STATE_HOME or ~/.local/state as fallback.
func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
