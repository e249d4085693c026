package tools

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostSnapshot holds the utilisation figures reported by SystemInfo.
type HostSnapshot struct {
	Platform    string
	Release     string
	MemUsed     uint64
	MemTotal    uint64
	MemPercent  float64
	DiskUsed    uint64
	DiskTotal   uint64
	DiskPercent float64
	CPUCount    int
	CPUPercent  float64
}

// HostMetrics samples the machine. Tests substitute a fake.
type HostMetrics interface {
	Snapshot(ctx context.Context, path string) (HostSnapshot, error)
}

type gopsutilMetrics struct {
	cpuInterval time.Duration
}

// NewHostMetrics returns a HostMetrics backed by gopsutil.
func NewHostMetrics() HostMetrics {
	return gopsutilMetrics{cpuInterval: time.Second}
}

func (g gopsutilMetrics) Snapshot(ctx context.Context, path string) (HostSnapshot, error) {
	var s HostSnapshot

	if info, err := host.InfoWithContext(ctx); err == nil {
		s.Platform = info.Platform
		s.Release = info.KernelVersion
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s, fmt.Errorf("memory: %w", err)
	}
	s.MemUsed, s.MemTotal, s.MemPercent = vm.Used, vm.Total, vm.UsedPercent

	du, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return s, fmt.Errorf("disk: %w", err)
	}
	s.DiskUsed, s.DiskTotal, s.DiskPercent = du.Used, du.Total, du.UsedPercent

	s.CPUCount, err = cpu.CountsWithContext(ctx, true)
	if err != nil {
		return s, fmt.Errorf("cpu: %w", err)
	}
	pct, err := cpu.PercentWithContext(ctx, g.cpuInterval, false)
	if err != nil {
		return s, fmt.Errorf("cpu: %w", err)
	}
	if len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	return s, nil
}

// SystemInfo reports the runtime environment and host utilisation. When the
// host cannot be sampled the basic lines are still returned together with a
// KindMetricsUnavailable error.
func (e *Executor) SystemInfo(ctx context.Context) Result {
	e.record("get_system_info", map[string]any{})

	var lines []string
	lines = append(lines,
		fmt.Sprintf("💻 System: %s", runtime.GOOS),
		fmt.Sprintf("🏗️  Arch: %s", runtime.GOARCH),
		fmt.Sprintf("🐹 Go: %s", runtime.Version()),
		fmt.Sprintf("👤 User: %s", e.user),
		fmt.Sprintf("📁 Working directory: %s", e.workDir),
	)

	snap, err := e.metrics.Snapshot(ctx, e.workDir)
	if err != nil {
		return Result{
			Output: strings.Join(lines, "\n"),
			Error:  fmt.Sprintf("host metrics unavailable: %v", err),
			Kind:   KindMetricsUnavailable,
		}
	}
	if snap.Platform != "" {
		lines[0] = fmt.Sprintf("💻 System: %s %s (%s)", runtime.GOOS, snap.Release, snap.Platform)
	}
	lines = append(lines,
		fmt.Sprintf("🧠 Memory: %s/%s (%.1f%%)", formatSize(int64(snap.MemUsed)), formatSize(int64(snap.MemTotal)), snap.MemPercent),
		fmt.Sprintf("💾 Disk: %s/%s (%.1f%%)", formatSize(int64(snap.DiskUsed)), formatSize(int64(snap.DiskTotal)), snap.DiskPercent),
		fmt.Sprintf("⚡ CPU: %d cores, %.1f%% in use", snap.CPUCount, snap.CPUPercent),
	)
	return Result{Output: strings.Join(lines, "\n")}
}
