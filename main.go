// chain-pulse is a terminal dashboard for a blockchain node. It polls the
// node's RPC interface, follows its monitoring WebSocket and samples the
// host, then shows synchronization, endorsement, baking and mempool
// statistics in an interactive TUI.
//
// Usage:
//
//	chain-pulse [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: $XDG_CONFIG_HOME/chain-pulse/config.toml)
//	-rpc string     Node RPC base URL, overrides node.rpc_url
//	-ws string      Node monitoring WebSocket URL, overrides node.ws_url
//	-baker string   Baker address to track, overrides node.baker
//	-record string  Write every external action to this JSONL file
//	-replay string  Replay an action log headlessly and print a summary
//	-verbose        Enable debug logging
//	-version        Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/actionlog"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/app"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/config"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/service"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/theme"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

var _ dashboard.Service = (*service.Service)(nil)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		rpcURL      = flag.String("rpc", "", "Node RPC base URL (overrides config)")
		wsURL       = flag.String("ws", "", "Node monitoring WebSocket URL (overrides config)")
		baker       = flag.String("baker", "", "Baker address to track (overrides config)")
		recordPath  = flag.String("record", "", "Record external actions to this JSONL file")
		replayPath  = flag.String("replay", "", "Replay an action log headlessly and print a summary")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("chain-pulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *rpcURL != "" {
		cfg.Node.RPCURL = *rpcURL
	}
	if *wsURL != "" {
		cfg.Node.WSURL = *wsURL
	}
	if *baker != "" {
		cfg.Node.Baker = *baker
	}
	if *recordPath != "" {
		cfg.Automaton.Record = *recordPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	if *replayPath != "" {
		if err := runReplay(*replayPath, cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, closeLog, err := openLog(cfg.Log, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := runTUI(cfg, logger); err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "chain-pulse: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

// openLog opens the log file. The terminal belongs to the TUI, so nothing is
// logged to stderr.
func openLog(lc config.LogConfig, verbose bool) (*slog.Logger, func(), error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	if err := os.MkdirAll(filepath.Dir(lc.File), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	var closed bool
	return logger, func() {
		if !closed {
			closed = true
			f.Close()
		}
	}, nil
}

func runTUI(cfg *config.Config, logger *slog.Logger) error {
	caps := terminal.Detect()
	if err := caps.RequireInteractive(); err != nil {
		return err
	}
	lipgloss.SetColorProfile(caps.Profile)
	logger.Info("starting",
		"version", version,
		"rpc_url", cfg.Node.RPCURL,
		"ws_url", cfg.Node.WSURL,
		"color", caps.ColorName(),
		"cols", caps.Size.Cols,
		"rows", caps.Size.Rows,
	)

	th, err := loadTheme(cfg.UI)
	if err != nil {
		return err
	}

	svc := service.New(capacities(cfg.Channels), logger)
	if err := registerWorkers(svc, cfg, logger); err != nil {
		return err
	}

	opts := []automaton.Option[dashboard.State, dashboard.Action]{
		automaton.WithMaxDepth[dashboard.State, dashboard.Action](cfg.Automaton.MaxDepth),
	}
	if cfg.Automaton.Record != "" {
		rec, err := actionlog.Create[dashboard.Action](cfg.Automaton.Record, dashboard.Codec{})
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Warn("closing action log", "error", err)
			}
			logger.Info("action log written", "path", cfg.Automaton.Record, "records", rec.Count())
		}()
		opts = append(opts, automaton.WithRecorder[dashboard.State, dashboard.Action](rec))
	}
	store := dashboard.NewStore(svc, logger, opts...)

	// SIGINT arrives as a ctrl+c key press while the terminal is in raw mode.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	workers := make(chan error, 1)
	go func() { workers <- svc.Run(ctx) }()

	zones := zone.New()
	defer zones.Close()

	model := app.New(store, app.FeedsOf(svc), app.Options{
		Settings: settingsFrom(cfg),
		Tick:     cfg.Refresh.Tick.Duration,
		Styles:   th.Styles(),
		Zones:    zones,
		Logger:   logger,
	})
	_, runErr := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		logger.Info("received shutdown signal")
		runErr = nil
	}

	cancel()
	svc.Close()
	if err := <-workers; err != nil {
		logger.Warn("workers stopped with error", "error", err)
	}

	st := store.Stats()
	logger.Info("stopped",
		"dispatched", st.Dispatched,
		"reduced", st.Reduced,
		"disabled", st.Disabled,
		"truncated", st.Truncated,
		"max_depth", st.MaxDepth,
	)
	return runErr
}

func registerWorkers(svc *service.Service, cfg *config.Config, logger *slog.Logger) error {
	fetcher, err := rpc.NewFetcher(cfg.Node.RPCURL,
		rpc.WithTimeout(cfg.Refresh.RPCTimeout.Duration),
		rpc.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("rpc: %w", err)
	}
	reader := wsfeed.NewReader(cfg.Node.WSURL,
		wsfeed.WithReconnectDelay(cfg.Refresh.WSReconnect.Duration),
		wsfeed.WithLogger(logger),
	)
	sampler := hoststats.New(cfg.Node.DiskPath, logger)

	workers := []service.Worker{
		service.NewWorker("rpc", func(ctx context.Context) error {
			return fetcher.Serve(ctx, svc.RPCResponder())
		}),
		service.NewWorker("ws", func(ctx context.Context) error {
			return reader.Run(ctx, svc.WS())
		}),
		service.NewWorker("host", func(ctx context.Context) error {
			return sampler.Serve(ctx, svc.HostResponder())
		}),
	}
	for _, w := range workers {
		if err := svc.Register(w); err != nil {
			return err
		}
	}
	return nil
}

func loadTheme(ui config.UIConfig) (theme.Theme, error) {
	if ui.ThemeFile != "" {
		t, err := theme.LoadFile(ui.ThemeFile)
		if err != nil {
			return theme.Theme{}, fmt.Errorf("theme: %w", err)
		}
		return t, nil
	}
	return theme.Get(ui.Theme), nil
}

func capacities(c config.ChannelsConfig) service.Capacities {
	return service.Capacities{RPC: c.RPC, Terminal: c.Terminal, WS: c.WS, Host: c.Host}
}

func settingsFrom(cfg *config.Config) dashboard.Settings {
	r := cfg.Refresh
	return dashboard.Settings{
		Baker:                cfg.Node.Baker,
		HeadInterval:         r.Head.Duration,
		OperationsInterval:   r.Operations.Duration,
		EndorsementsInterval: r.Endorsements.Duration,
		BestRemoteInterval:   r.BestRemoteLevel.Duration,
		HostInterval:         r.Host.Duration,
		RetryBackoff:         r.RetryBackoff.Duration,
		AltScreen:            cfg.UI.AltScreen,
		Mouse:                cfg.UI.Mouse,
	}
}
