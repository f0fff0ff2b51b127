package hoststats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
)

var errProbe = errors.New("probe failed")

func fakeProbes() probes {
	return probes{
		cpuPercent: func(context.Context) (float64, int, error) { return 37.5, 8, nil },
		memory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 1000, Used: 250, UsedPercent: 25}, nil
		},
		loadAvg: func(context.Context) (*load.AvgStat, error) {
			return &load.AvgStat{Load1: 1, Load5: 2, Load15: 3}, nil
		},
		uptime: func(context.Context) (uint64, error) { return 90, nil },
		diskUsage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			return &disk.UsageStat{Path: path, Used: 40, Total: 100, UsedPercent: 40}, nil
		},
	}
}

func newFakeSampler(diskPath string) *Sampler {
	s := New(diskPath, nil)
	s.probes = fakeProbes()
	s.now = func() time.Time { return time.Unix(100, 0) }
	return s
}

func TestSampleCollectsEveryProbe(t *testing.T) {
	s := newFakeSampler("/var/lib/node")
	got, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got.CPUPercent != 37.5 || got.CPUCount != 8 {
		t.Errorf("cpu = %v/%d", got.CPUPercent, got.CPUCount)
	}
	if got.MemPercent != 25 || got.Load5 != 2 || got.Uptime != 90*time.Second {
		t.Errorf("sample = %+v", got)
	}
	if got.DiskPath != "/var/lib/node" || got.DiskPercent != 40 {
		t.Errorf("disk = %q %v", got.DiskPath, got.DiskPercent)
	}
	if len(got.PartialErrors) != 0 {
		t.Errorf("PartialErrors = %v", got.PartialErrors)
	}
}

func TestSamplePartialFailure(t *testing.T) {
	s := newFakeSampler("")
	s.probes.loadAvg = func(context.Context) (*load.AvgStat, error) { return nil, errProbe }

	got, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(got.PartialErrors) != 1 {
		t.Errorf("PartialErrors = %v, want one entry", got.PartialErrors)
	}
	if got.DiskPath != "" {
		t.Errorf("disk probe ran without a path: %q", got.DiskPath)
	}
}

func TestSampleAllFailed(t *testing.T) {
	s := newFakeSampler("")
	s.probes = probes{
		cpuPercent: func(context.Context) (float64, int, error) { return 0, 0, errProbe },
		memory:     func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errProbe },
		loadAvg:    func(context.Context) (*load.AvgStat, error) { return nil, errProbe },
		uptime:     func(context.Context) (uint64, error) { return 0, errProbe },
	}
	if _, err := s.Sample(context.Background()); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestSampleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newFakeSampler("").Sample(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestServeEchoesRequestTime(t *testing.T) {
	s := newFakeSampler("")
	requester, responder := worker.NewChannel[Request, Response](2, 2)
	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background(), responder) }()

	at := time.Unix(42, 0)
	if err := requester.TrySend(Request{RequestedAt: at}); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	select {
	case resp := <-requester.Responses():
		if !resp.RequestedAt.Equal(at) || resp.Err != nil || resp.Sample.CPUCount != 8 {
			t.Errorf("response = %+v", resp)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no response")
	}

	requester.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
