// Package sysinfo collects host facts with gopsutil, both for report
// headers and as the data source behind the host probes.
package sysinfo

import (
	"context"
	"runtime"
	"time"
)

// Info summarizes the scanned machine.
type Info struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Arch            string
	Uptime          time.Duration
	PhysicalCores   int
	LogicalCores    int
	CPUModel        string
	MemoryTotal     uint64
	GoVersion       string
}

// Collect gathers Info from src. Individual lookups that fail leave their
// fields empty; Collect itself never fails.
func Collect(ctx context.Context, src Source) Info {
	info := Info{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}

	if h, err := src.HostInfo(ctx); err == nil && h != nil {
		info.Hostname = h.Hostname
		if h.OS != "" {
			info.OS = h.OS
		}
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.KernelVersion = h.KernelVersion
		if h.KernelArch != "" {
			info.Arch = h.KernelArch
		}
		info.Uptime = time.Duration(h.Uptime) * time.Second
	}

	if n, err := src.CPUCounts(ctx, false); err == nil {
		info.PhysicalCores = n
	}
	if n, err := src.CPUCounts(ctx, true); err == nil {
		info.LogicalCores = n
	}
	if cpus, err := src.CPUInfo(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if vm, err := src.VirtualMemory(ctx); err == nil && vm != nil {
		info.MemoryTotal = vm.Total
	}

	return info
}

// Map renders Info for Report.SystemInfo.
func (i Info) Map() map[string]any {
	return map[string]any{
		"hostname":         i.Hostname,
		"os":               i.OS,
		"platform":         i.Platform,
		"platform_version": i.PlatformVersion,
		"kernel_version":   i.KernelVersion,
		"arch":             i.Arch,
		"uptime_seconds":   int64(i.Uptime / time.Second),
		"cpu_model":        i.CPUModel,
		"physical_cores":   i.PhysicalCores,
		"logical_cores":    i.LogicalCores,
		"memory_total":     i.MemoryTotal,
		"go_version":       i.GoVersion,
	}
}
