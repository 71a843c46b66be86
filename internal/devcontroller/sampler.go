package devcontroller

import (
	"context"
	"math"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// Sampler produces one stats snapshot.
type Sampler interface {
	Sample(ctx context.Context) (resource.SystemStats, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context) (resource.SystemStats, error)

// Sample calls f.
func (f SamplerFunc) Sample(ctx context.Context) (resource.SystemStats, error) {
	return f(ctx)
}

// HostSampler reads the local machine with gopsutil. Individual readings that
// fail leave their fields zero.
type HostSampler struct {
	// DiskPath is the filesystem reported as "disk". Defaults to "/".
	DiskPath string
}

// Sample implements Sampler.
func (h HostSampler) Sample(ctx context.Context) (resource.SystemStats, error) {
	if err := ctx.Err(); err != nil {
		return resource.SystemStats{}, err
	}

	stats := resource.SystemStats{
		System: resource.SystemInfo{LoadAverage: []float64{0, 0, 0}},
	}

	// Interval 0 compares against the previous call, so the first sample
	// after start reads 0.
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		stats.CPU.UsagePercent = clampPercent(pct[0])
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		stats.Memory = resource.MemoryStats{
			Total:        vm.Total,
			Used:         vm.Used,
			Free:         vm.Available,
			UsagePercent: clampPercent(vm.UsedPercent),
		}
	}

	path := h.DiskPath
	if path == "" {
		path = "/"
	}
	if du, err := disk.UsageWithContext(ctx, path); err == nil && du != nil {
		stats.Disk = resource.DiskStats{
			Total:        du.Total,
			Used:         du.Used,
			Free:         du.Free,
			UsagePercent: clampPercent(du.UsedPercent),
		}
	}

	if counters, err := net.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		stats.Network = resource.NetworkStats{
			BytesSent:     counters[0].BytesSent,
			BytesReceived: counters[0].BytesRecv,
		}
	}

	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		stats.System.LoadAverage = []float64{
			nonNegative(avg.Load1),
			nonNegative(avg.Load5),
			nonNegative(avg.Load15),
		}
	}

	if info, err := host.InfoWithContext(ctx); err == nil && info != nil {
		stats.System.Hostname = info.Hostname
		stats.System.Uptime = info.Uptime
	} else if name, err := os.Hostname(); err == nil {
		stats.System.Hostname = name
	}

	return stats, nil
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
