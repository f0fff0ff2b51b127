// Package hoststats samples CPU, memory, load and data-directory usage of the
// machine the dashboard runs on. The node is usually co-located, so these
// numbers explain slow block application more often than the network does.
package hoststats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
)

// Sample is one snapshot of the host.
type Sample struct {
	At            time.Time
	CPUPercent    float64
	CPUCount      int
	MemTotal      uint64
	MemUsed       uint64
	MemPercent    float64
	Load1         float64
	Load5         float64
	Load15        float64
	Uptime        time.Duration
	DiskPath      string
	DiskUsed      uint64
	DiskTotal     uint64
	DiskPercent   float64
	PartialErrors []string
}

// Request asks for a sample. RequestedAt is echoed so the reducer can tell
// samples apart.
type Request struct {
	RequestedAt time.Time
}

// Response carries a sample or the error that prevented every probe.
type Response struct {
	RequestedAt time.Time
	Sample      Sample
	Err         error
}

// probes are the gopsutil calls, swappable in tests.
type probes struct {
	cpuPercent func(ctx context.Context) (float64, int, error)
	memory     func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	loadAvg    func(ctx context.Context) (*load.AvgStat, error)
	uptime     func(ctx context.Context) (uint64, error)
	diskUsage  func(ctx context.Context, path string) (*disk.UsageStat, error)
}

func gopsutilProbes() probes {
	return probes{
		cpuPercent: func(ctx context.Context) (float64, int, error) {
			total, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, 0, err
			}
			n, err := cpu.CountsWithContext(ctx, true)
			if err != nil {
				return 0, 0, err
			}
			if len(total) == 0 {
				return 0, n, nil
			}
			return total[0], n, nil
		},
		memory:    mem.VirtualMemoryWithContext,
		loadAvg:   load.AvgWithContext,
		uptime:    host.UptimeWithContext,
		diskUsage: disk.UsageWithContext,
	}
}

// Sampler takes host samples.
type Sampler struct {
	diskPath string
	probes   probes
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a Sampler. diskPath is the node data directory; empty skips
// the disk probe.
func New(diskPath string, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sampler{
		diskPath: diskPath,
		probes:   gopsutilProbes(),
		logger:   logger,
		now:      time.Now,
	}
}

// ErrNoData is returned when every probe failed.
var ErrNoData = errors.New("hoststats: all probes failed")

// Sample runs every probe. Partial failures are recorded in the sample; the
// error is non-nil only when nothing could be read.
func (s *Sampler) Sample(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	out := Sample{At: s.now()}
	var errs []string
	probesRun := 0

	probesRun++
	if pct, n, err := s.probes.cpuPercent(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("cpu: %v", err))
	} else {
		out.CPUPercent, out.CPUCount = pct, n
	}

	probesRun++
	if vm, err := s.probes.memory(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("memory: %v", err))
	} else {
		out.MemTotal, out.MemUsed, out.MemPercent = vm.Total, vm.Used, vm.UsedPercent
	}

	probesRun++
	if avg, err := s.probes.loadAvg(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("load: %v", err))
	} else {
		out.Load1, out.Load5, out.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	probesRun++
	if secs, err := s.probes.uptime(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("uptime: %v", err))
	} else {
		out.Uptime = time.Duration(secs) * time.Second
	}

	if s.diskPath != "" {
		probesRun++
		if u, err := s.probes.diskUsage(ctx, s.diskPath); err != nil {
			errs = append(errs, fmt.Sprintf("disk: %v", err))
		} else {
			out.DiskPath, out.DiskUsed, out.DiskTotal, out.DiskPercent = u.Path, u.Used, u.Total, u.UsedPercent
		}
	}

	if len(errs) == probesRun {
		return Sample{}, fmt.Errorf("%w: %s", ErrNoData, strings.Join(errs, "; "))
	}
	out.PartialErrors = errs
	return out, nil
}

// Serve answers sample requests until ctx is done or the requester closes.
func (s *Sampler) Serve(ctx context.Context, r *worker.Responder[Request, Response]) error {
	defer r.Close()
	for {
		req, err := r.Recv(ctx)
		if err != nil {
			if errors.Is(err, worker.ErrDisconnected) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		sample, err := s.Sample(ctx)
		if err != nil {
			s.logger.Warn("host sample failed", "error", err)
		} else if len(sample.PartialErrors) > 0 {
			s.logger.Debug("host sample partial", "errors", strings.Join(sample.PartialErrors, "; "))
		}
		resp := Response{RequestedAt: req.RequestedAt, Sample: sample, Err: err}
		if err := r.Send(ctx, resp); err != nil {
			if errors.Is(err, worker.ErrDisconnected) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
