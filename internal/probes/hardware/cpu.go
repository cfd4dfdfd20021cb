// Package hardware contains probes for processor, memory, storage and
// network adapter health.
package hardware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// CPU reports processor model, load and temperature.
type CPU struct {
	scan.Base
	src      sysinfo.Source
	load     config.Limit
	temp     config.Limit
	interval time.Duration
}

// NewCPU creates the CPU probe.
func NewCPU(src sysinfo.Source, th config.Thresholds) *CPU {
	return &CPU{
		Base:     scan.NewBase("CPU", scan.CategoryHardware).WithDescription("CPU information, load and temperature"),
		src:      src,
		load:     th.CPULoad,
		temp:     th.CPUTemperature,
		interval: 500 * time.Millisecond,
	}
}

// WithSampleInterval sets how long CPU load is sampled.
func (c *CPU) WithSampleInterval(d time.Duration) *CPU {
	c.interval = d
	return c
}

// Execute implements scan.Probe.
func (c *CPU) Execute(ctx context.Context) (*scan.Result, error) {
	res := c.NewResult()

	model := "Unknown CPU"
	if infos, err := c.src.CPUInfo(ctx); err == nil && len(infos) > 0 {
		model = strings.TrimSpace(infos[0].ModelName)
		res.WithRaw("vendor", infos[0].VendorID).
			WithRaw("mhz", infos[0].Mhz)
	}
	physical, _ := c.src.CPUCounts(ctx, false)
	logical, _ := c.src.CPUCounts(ctx, true)

	load, err := c.src.CPUPercent(ctx, c.interval)
	if err != nil {
		return nil, fmt.Errorf("sampling cpu load: %w", err)
	}

	res.WithRaw("name", model).
		WithRaw("cores", physical).
		WithRaw("threads", logical).
		WithRaw("utilization_percent", load)

	temp, hasTemp := sysinfo.CPUTemperature(ctx, c.src)
	summary := fmt.Sprintf("%d cores, %d threads, %.0f%% load", physical, logical, load)
	if hasTemp {
		res.WithRaw("temperature_celsius", temp)
		summary += fmt.Sprintf(" - %.0f°C", temp)
	}
	res.Add(c.Finding(model, summary, scan.SeverityPass))

	switch c.load.Grade(load) {
	case scan.SeverityCritical:
		res.Add(c.Finding("CPU saturated", fmt.Sprintf("CPU is at %.0f%% utilization", load), scan.SeverityCritical).
			WithDetail("utilization_percent", load).
			WithRecommendation("Check running processes for resource hogs"))
	case scan.SeverityWarning:
		res.Add(c.Finding("High CPU utilization", fmt.Sprintf("CPU is at %.0f%% utilization", load), scan.SeverityWarning).
			WithDetail("utilization_percent", load).
			WithRecommendation("Check running processes for resource hogs"))
	}

	if hasTemp {
		switch c.temp.Grade(temp) {
		case scan.SeverityCritical:
			res.Add(c.Finding("Critical CPU temperature", fmt.Sprintf("CPU temperature is %.0f°C", temp), scan.SeverityCritical).
				WithRecommendation("Check cooling system immediately"))
		case scan.SeverityWarning:
			res.Add(c.Finding("High CPU temperature", fmt.Sprintf("CPU temperature is %.0f°C", temp), scan.SeverityWarning).
				WithRecommendation("Monitor cooling and airflow"))
		}
	}

	return res, nil
}
