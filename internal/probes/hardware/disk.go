package hardware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// DiskUsage grades the fill level of every mounted volume.
type DiskUsage struct {
	scan.Base
	src   sysinfo.Source
	limit config.Limit
}

// NewDiskUsage creates the Disk Usage probe.
func NewDiskUsage(src sysinfo.Source, th config.Thresholds) *DiskUsage {
	return &DiskUsage{
		Base:  scan.NewBase("Disk Usage", scan.CategoryHardware).WithDescription("Free space on mounted volumes"),
		src:   src,
		limit: th.Disk,
	}
}

// Execute implements scan.Probe.
func (d *DiskUsage) Execute(ctx context.Context) (*scan.Result, error) {
	parts, err := d.src.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	res := d.NewResult()
	volumes := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		usage, err := d.src.DiskUsage(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		volumes = append(volumes, map[string]any{
			"mountpoint":   p.Mountpoint,
			"device":       p.Device,
			"total_bytes":  usage.Total,
			"free_bytes":   usage.Free,
			"percent_used": usage.UsedPercent,
		})

		sev := d.limit.Grade(usage.UsedPercent)
		f := d.Finding(
			fmt.Sprintf("%s: %.0f%% used", p.Mountpoint, usage.UsedPercent),
			fmt.Sprintf("%s free of %s", sysinfo.FormatBytes(usage.Free), sysinfo.FormatBytes(usage.Total)),
			sev,
		).WithComponent(p.Mountpoint).WithDetail("percent_used", usage.UsedPercent)
		switch sev {
		case scan.SeverityCritical:
			f = f.WithRecommendation("Free up disk space now; the volume is nearly full")
		case scan.SeverityWarning:
			f = f.WithRecommendation("Clean up unused files or extend the volume")
		}
		res.Add(f)
	}
	res.WithRaw("volumes", volumes)

	if len(volumes) == 0 {
		res.Add(d.Finding("No volumes found", "No mounted volume reported a size", scan.SeverityUnknown))
	}
	return res, nil
}

// Storage inventories mounted volumes and their file systems.
type Storage struct {
	scan.Base
	src sysinfo.Source
}

// NewStorage creates the Storage probe.
func NewStorage(src sysinfo.Source) *Storage {
	return &Storage{
		Base: scan.NewBase("Storage", scan.CategoryHardware).WithDescription("Storage volume inventory"),
		src:  src,
	}
}

// Execute implements scan.Probe.
func (s *Storage) Execute(ctx context.Context) (*scan.Result, error) {
	parts, err := s.src.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	res := s.NewResult()
	var total uint64
	devices := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		var size uint64
		if usage, err := s.src.DiskUsage(ctx, p.Mountpoint); err == nil {
			size = usage.Total
		}
		total += size
		devices = append(devices, map[string]any{
			"device":      p.Device,
			"mountpoint":  p.Mountpoint,
			"fstype":      p.Fstype,
			"total_bytes": size,
		})
		res.Add(s.Finding(
			fmt.Sprintf("%s (%s)", p.Device, p.Fstype),
			fmt.Sprintf("Mounted at %s, %s", p.Mountpoint, sysinfo.FormatBytes(size)),
			scan.SeverityInfo,
		).WithComponent(p.Device))
	}
	res.WithRaw("devices", devices).WithRaw("total_bytes", total)

	summary := s.Finding(
		fmt.Sprintf("%d volumes", len(parts)),
		fmt.Sprintf("%s total capacity", sysinfo.FormatBytes(total)),
		scan.SeverityPass,
	)
	res.Findings = append([]scan.Finding{summary}, res.Findings...)
	return res, nil
}
