// Package sysinfotest provides a fixed-data sysinfo.Source for tests.
package sysinfotest

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// Fake returns the configured values. Err, when set, is returned by every
// method; the per-area error fields fail just that area.
type Fake struct {
	Host      *host.InfoStat
	UserList  []host.UserStat
	Temps     []host.TemperatureStat
	CPUs      []cpu.InfoStat
	Physical  int
	Logical   int
	Load      float64
	Memory    *mem.VirtualMemoryStat
	Swap      *mem.SwapMemoryStat
	Parts     []disk.PartitionStat
	Usage     map[string]*disk.UsageStat
	Ifaces    []net.InterfaceStat
	Counters  []net.IOCountersStat
	Conns     []net.ConnectionStat
	Procs     []sysinfo.ProcessInfo
	Err       error
	TempErr   error
	UsageErr  error
	ConnsErr  error
	ProcsErr  error
	UsersErr  error
	LoadCalls int
}

var _ sysinfo.Source = (*Fake)(nil)

func (f *Fake) HostInfo(context.Context) (*host.InfoStat, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Host == nil {
		return &host.InfoStat{}, nil
	}
	return f.Host, nil
}

func (f *Fake) Users(context.Context) ([]host.UserStat, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.UserList, f.UsersErr
}

func (f *Fake) Temperatures(context.Context) ([]host.TemperatureStat, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Temps, f.TempErr
}

func (f *Fake) CPUInfo(context.Context) ([]cpu.InfoStat, error) {
	return f.CPUs, f.Err
}

func (f *Fake) CPUCounts(_ context.Context, logical bool) (int, error) {
	if logical {
		return f.Logical, f.Err
	}
	return f.Physical, f.Err
}

func (f *Fake) CPUPercent(context.Context, time.Duration) (float64, error) {
	f.LoadCalls++
	return f.Load, f.Err
}

func (f *Fake) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Memory == nil {
		return &mem.VirtualMemoryStat{}, nil
	}
	return f.Memory, nil
}

func (f *Fake) SwapMemory(context.Context) (*mem.SwapMemoryStat, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Swap == nil {
		return &mem.SwapMemoryStat{}, nil
	}
	return f.Swap, nil
}

func (f *Fake) Partitions(context.Context) ([]disk.PartitionStat, error) {
	return f.Parts, f.Err
}

func (f *Fake) DiskUsage(_ context.Context, path string) (*disk.UsageStat, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.UsageErr != nil {
		return nil, f.UsageErr
	}
	if u, ok := f.Usage[path]; ok {
		return u, nil
	}
	return &disk.UsageStat{Path: path}, nil
}

func (f *Fake) Interfaces(context.Context) ([]net.InterfaceStat, error) {
	return f.Ifaces, f.Err
}

func (f *Fake) IOCounters(context.Context) ([]net.IOCountersStat, error) {
	return f.Counters, f.Err
}

func (f *Fake) Connections(context.Context, string) ([]net.ConnectionStat, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Conns, f.ConnsErr
}

func (f *Fake) Processes(context.Context) ([]sysinfo.ProcessInfo, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Procs, f.ProcsErr
}
