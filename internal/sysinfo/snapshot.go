package sysinfo

import (
	"context"
	"strings"
	"time"
)

// cpuSensorHints select temperature sensors that belong to the package or
// cores rather than to disks or batteries.
var cpuSensorHints = []string{"cpu", "core", "package", "coretemp", "k10temp", "tdie", "tctl"}

// CPUTemperature returns the hottest CPU sensor reading in Celsius. ok is
// false when no CPU sensor reports a temperature.
func CPUTemperature(ctx context.Context, src Source) (celsius float64, ok bool) {
	temps, err := src.Temperatures(ctx)
	if err != nil && len(temps) == 0 {
		return 0, false
	}

	hottest, found := 0.0, false
	for _, t := range temps {
		key := strings.ToLower(t.SensorKey)
		for _, hint := range cpuSensorHints {
			if strings.Contains(key, hint) {
				if t.Temperature > hottest {
					hottest = t.Temperature
				}
				found = true
				break
			}
		}
	}
	return hottest, found && hottest > 0
}

// Volume is the fill level of one mounted file system.
type Volume struct {
	Mountpoint  string
	Device      string
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// Snapshot is one reading of the live load figures.
type Snapshot struct {
	Taken time.Time

	CPUPercent     float64
	CPUTemperature float64 // zero when unknown

	MemoryPercent   float64
	MemoryUsed      uint64
	MemoryTotal     uint64
	MemoryAvailable uint64

	Volumes []Volume
}

// Sample reads a Snapshot from src. CPU load is measured since the previous
// call. Lookups that fail leave their fields zero.
func Sample(ctx context.Context, src Source) Snapshot {
	s := Snapshot{Taken: time.Now()}

	if pct, err := src.CPUPercent(ctx, 0); err == nil {
		s.CPUPercent = pct
	}
	if temp, ok := CPUTemperature(ctx, src); ok {
		s.CPUTemperature = temp
	}
	if vm, err := src.VirtualMemory(ctx); err == nil && vm != nil {
		s.MemoryPercent = vm.UsedPercent
		s.MemoryUsed = vm.Used
		s.MemoryTotal = vm.Total
		s.MemoryAvailable = vm.Available
	}

	parts, err := src.Partitions(ctx)
	if err != nil {
		return s
	}
	for _, p := range parts {
		if p.Fstype == "" || strings.Contains(strings.ToLower(strings.Join(p.Opts, ",")), "cdrom") {
			continue
		}
		usage, err := src.DiskUsage(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		s.Volumes = append(s.Volumes, Volume{
			Mountpoint:  p.Mountpoint,
			Device:      p.Device,
			Total:       usage.Total,
			Used:        usage.Used,
			UsedPercent: usage.UsedPercent,
		})
	}
	return s
}
