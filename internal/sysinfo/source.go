package sysinfo

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Source reads host metrics. Host returns the gopsutil-backed source;
// tests substitute fixed data.
type Source interface {
	HostInfo(ctx context.Context) (*host.InfoStat, error)
	Users(ctx context.Context) ([]host.UserStat, error)
	Temperatures(ctx context.Context) ([]host.TemperatureStat, error)

	CPUInfo(ctx context.Context) ([]cpu.InfoStat, error)
	CPUCounts(ctx context.Context, logical bool) (int, error)
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)

	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error)

	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)

	Interfaces(ctx context.Context) ([]net.InterfaceStat, error)
	IOCounters(ctx context.Context) ([]net.IOCountersStat, error)
	Connections(ctx context.Context, kind string) ([]net.ConnectionStat, error)

	Processes(ctx context.Context) ([]ProcessInfo, error)
}

// ProcessInfo is a snapshot of one running process.
type ProcessInfo struct {
	PID           int32
	Name          string
	Exe           string
	Username      string
	CPUPercent    float64
	MemoryPercent float32
}

// Host returns the Source backed by the running machine.
func Host() Source {
	return hostSource{}
}

type hostSource struct{}

func (hostSource) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (hostSource) Users(ctx context.Context) ([]host.UserStat, error) {
	return host.UsersWithContext(ctx)
}

func (hostSource) Temperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	return host.SensorsTemperaturesWithContext(ctx)
}

func (hostSource) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

func (hostSource) CPUCounts(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

func (hostSource) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, err
	}
	if len(pct) == 0 {
		return 0, nil
	}
	return pct[0], nil
}

func (hostSource) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (hostSource) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	return mem.SwapMemoryWithContext(ctx)
}

func (hostSource) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (hostSource) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (hostSource) Interfaces(ctx context.Context) ([]net.InterfaceStat, error) {
	return net.InterfacesWithContext(ctx)
}

func (hostSource) IOCounters(ctx context.Context) ([]net.IOCountersStat, error) {
	return net.IOCountersWithContext(ctx, true)
}

func (hostSource) Connections(ctx context.Context, kind string) ([]net.ConnectionStat, error) {
	return net.ConnectionsWithContext(ctx, kind)
}

// Processes lists running processes. Processes that exit or deny access
// while being inspected keep whatever fields could be read.
func (hostSource) Processes(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		info := ProcessInfo{PID: p.Pid}
		info.Name, _ = p.NameWithContext(ctx)
		info.Exe, _ = p.ExeWithContext(ctx)
		info.Username, _ = p.UsernameWithContext(ctx)
		info.CPUPercent, _ = p.CPUPercentWithContext(ctx)
		info.MemoryPercent, _ = p.MemoryPercentWithContext(ctx)
		out = append(out, info)
	}
	return out, nil
}
