package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/actionlog"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/config"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
)

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Node.Baker = "tz1baker"
	cfg.Refresh.Head.Duration = 3 * time.Second
	cfg.UI.Mouse = false

	got := settingsFrom(cfg)
	if got.Baker != "tz1baker" || got.HeadInterval != 3*time.Second || got.Mouse {
		t.Errorf("settingsFrom = %+v", got)
	}
	if got.RetryBackoff != cfg.Refresh.RetryBackoff.Duration {
		t.Errorf("RetryBackoff = %v, want %v", got.RetryBackoff, cfg.Refresh.RetryBackoff.Duration)
	}
}

func TestCapacitiesFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	c := capacities(cfg.Channels)
	if c.RPC != cfg.Channels.RPC || c.Terminal != cfg.Channels.Terminal || c.WS != cfg.Channels.WS || c.Host != cfg.Channels.Host {
		t.Errorf("capacities = %+v, want %+v", c, cfg.Channels)
	}
}

func TestReplaySummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	rec, err := actionlog.Create[dashboard.Action](path, dashboard.Codec{})
	if err != nil {
		t.Fatal(err)
	}
	store := dashboard.NewStore(replayService{}, nil,
		automaton.WithRecorder[dashboard.State, dashboard.Action](rec),
	)
	store.Dispatch(dashboard.Init{Settings: dashboard.DefaultSettings()})
	store.Dispatch(dashboard.Resize{Width: 100, Height: 30})
	store.Dispatch(dashboard.ChangeScreen{Screen: dashboard.ScreenMempool})
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runReplay(path, config.DefaultConfig(), &out); err != nil {
		t.Fatalf("runReplay: %v", err)
	}
	for _, want := range []string{"records:       3 (3 root actions reduced)", "head:          unknown", "screen:        Mempool"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestReplayMissingFile(t *testing.T) {
	err := runReplay(filepath.Join(t.TempDir(), "missing.jsonl"), config.DefaultConfig(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("runReplay succeeded on a missing file")
	}
}
