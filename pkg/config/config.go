// Package config provides TOML and YAML configuration for chain-pulse.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full configuration.
type Config struct {
	Node      NodeConfig      `toml:"node" yaml:"node"`
	Refresh   RefreshConfig   `toml:"refresh" yaml:"refresh"`
	Channels  ChannelsConfig  `toml:"channels" yaml:"channels"`
	Automaton AutomatonConfig `toml:"automaton" yaml:"automaton"`
	UI        UIConfig        `toml:"ui" yaml:"ui"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// NodeConfig locates the node being watched.
type NodeConfig struct {
	RPCURL string `toml:"rpc_url" yaml:"rpc_url"`
	WSURL  string `toml:"ws_url" yaml:"ws_url"`
	// Baker highlights this delegate and filters baking rights.
	Baker string `toml:"baker" yaml:"baker"`
	// DiskPath is the filesystem sampled for disk usage, normally the node's
	// data directory.
	DiskPath string `toml:"disk_path" yaml:"disk_path"`
}

// RefreshConfig holds polling periods and timeouts.
type RefreshConfig struct {
	Tick            Duration `toml:"tick" yaml:"tick"`
	Head            Duration `toml:"head" yaml:"head"`
	Operations      Duration `toml:"operations" yaml:"operations"`
	Endorsements    Duration `toml:"endorsements" yaml:"endorsements"`
	BestRemoteLevel Duration `toml:"best_remote_level" yaml:"best_remote_level"`
	Host            Duration `toml:"host" yaml:"host"`
	RetryBackoff    Duration `toml:"retry_backoff" yaml:"retry_backoff"`
	RPCTimeout      Duration `toml:"rpc_timeout" yaml:"rpc_timeout"`
	WSReconnect     Duration `toml:"ws_reconnect" yaml:"ws_reconnect"`
}

// ChannelsConfig sizes the worker channels.
type ChannelsConfig struct {
	RPC      int `toml:"rpc" yaml:"rpc"`
	Terminal int `toml:"terminal" yaml:"terminal"`
	WS       int `toml:"ws" yaml:"ws"`
	Host     int `toml:"host" yaml:"host"`
}

// AutomatonConfig tunes the Store.
type AutomatonConfig struct {
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
	// Record, when set, writes every external action to this JSONL file.
	Record string `toml:"record" yaml:"record"`
}

// UIConfig controls the terminal.
type UIConfig struct {
	AltScreen bool   `toml:"alt_screen" yaml:"alt_screen"`
	Mouse     bool   `toml:"mouse" yaml:"mouse"`
	Theme     string `toml:"theme" yaml:"theme"`
	ThemeFile string `toml:"theme_file" yaml:"theme_file"`
}

// LogConfig controls the log file. The terminal belongs to the TUI, so logs
// never go to stdout.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// DefaultConfig returns the defaults used for anything a file leaves unset.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Node: NodeConfig{
			RPCURL:   "http://127.0.0.1:18732",
			WSURL:    "ws://127.0.0.1:4927",
			DiskPath: "/",
		},
		Refresh: RefreshConfig{
			Tick:            Duration{250 * time.Millisecond},
			Head:            Duration{1 * time.Second},
			Operations:      Duration{1 * time.Second},
			Endorsements:    Duration{1 * time.Second},
			BestRemoteLevel: Duration{5 * time.Second},
			Host:            Duration{2 * time.Second},
			RetryBackoff:    Duration{5 * time.Second},
			RPCTimeout:      Duration{10 * time.Second},
			WSReconnect:     Duration{5 * time.Second},
		},
		Channels: ChannelsConfig{
			RPC:      4096,
			Terminal: 100,
			WS:       256,
			Host:     16,
		},
		Automaton: AutomatonConfig{
			MaxDepth: 8,
		},
		UI: UIConfig{
			AltScreen: true,
			Mouse:     true,
			Theme:     "default",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(xdgStateHome(home), "chain-pulse", "chain-pulse.log"),
		},
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if err := checkURL("node.rpc_url", c.Node.RPCURL, "http", "https"); err != nil {
		errs = append(errs, err)
	}
	if c.Node.WSURL != "" {
		if err := checkURL("node.ws_url", c.Node.WSURL, "ws", "wss"); err != nil {
			errs = append(errs, err)
		}
	}

	durations := []struct {
		name string
		d    Duration
	}{
		{"refresh.tick", c.Refresh.Tick},
		{"refresh.head", c.Refresh.Head},
		{"refresh.operations", c.Refresh.Operations},
		{"refresh.endorsements", c.Refresh.Endorsements},
		{"refresh.retry_backoff", c.Refresh.RetryBackoff},
		{"refresh.rpc_timeout", c.Refresh.RPCTimeout},
	}
	for _, f := range durations {
		if f.d.Duration <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", f.name))
		}
	}

	sizes := []struct {
		name string
		n    int
	}{
		{"channels.rpc", c.Channels.RPC},
		{"channels.terminal", c.Channels.Terminal},
		{"channels.ws", c.Channels.WS},
		{"channels.host", c.Channels.Host},
		{"automaton.max_depth", c.Automaton.MaxDepth},
	}
	for _, f := range sizes {
		if f.n < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", f.name, f.n))
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses Log.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func checkURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s: %q is not a %s URL", field, raw, strings.Join(schemes, " or "))
}
