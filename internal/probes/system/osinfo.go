// Package system contains operating system probes.
package system

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// OSInfo reports the operating system, host name and uptime. Long uptimes
// usually mean pending updates were never applied.
type OSInfo struct {
	scan.Base
	src    sysinfo.Source
	uptime config.Limit
}

// NewOSInfo creates the OS Info probe. uptime is graded in days.
func NewOSInfo(src sysinfo.Source, uptime config.Limit) *OSInfo {
	return &OSInfo{
		Base:   scan.NewBase("OS Info", scan.CategorySystem).WithDescription("Operating system and uptime"),
		src:    src,
		uptime: uptime,
	}
}

// Execute implements scan.Probe.
func (o *OSInfo) Execute(ctx context.Context) (*scan.Result, error) {
	h, err := o.src.HostInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading host info: %w", err)
	}

	arch := h.KernelArch
	if arch == "" {
		arch = runtime.GOARCH
	}
	name := h.Platform
	if name == "" {
		name = h.OS
	}
	if h.PlatformVersion != "" {
		name += " " + h.PlatformVersion
	}

	uptime := time.Duration(h.Uptime) * time.Second
	days := uptime.Hours() / 24
	res := o.NewResult().
		WithRaw("hostname", h.Hostname).
		WithRaw("os", h.OS).
		WithRaw("platform", h.Platform).
		WithRaw("platform_family", h.PlatformFamily).
		WithRaw("platform_version", h.PlatformVersion).
		WithRaw("kernel_version", h.KernelVersion).
		WithRaw("arch", arch).
		WithRaw("uptime_seconds", h.Uptime).
		WithRaw("virtualization", h.VirtualizationSystem)

	res.Add(o.Finding(name, fmt.Sprintf("Kernel %s (%s)", h.KernelVersion, arch), scan.SeverityPass).
		WithComponent(h.OS))
	res.Add(o.Finding("Computer: "+h.Hostname, "Host name", scan.SeverityInfo))

	if h.BootTime > 0 {
		boot := time.Unix(int64(h.BootTime), 0).UTC()
		res.Add(o.Finding("Last boot: "+boot.Format(time.RFC3339), "System uptime since last restart", scan.SeverityInfo).
			WithDetail("boot_time", boot))
	}

	sev := o.uptime.Grade(days)
	f := o.Finding(fmt.Sprintf("Uptime: %s", sysinfo.FormatUptime(uptime)),
		fmt.Sprintf("%.1f days since last restart", days), sev).
		WithDetail("uptime_days", days)
	if sev != scan.SeverityPass {
		f = f.WithRecommendation("Restart to apply pending updates")
	}
	res.Add(f)

	if h.VirtualizationRole == "guest" && h.VirtualizationSystem != "" {
		res.Add(o.Finding("Virtual machine: "+h.VirtualizationSystem, "Running as a guest", scan.SeverityInfo))
	}
	return res, nil
}
