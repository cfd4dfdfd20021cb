package hardware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// Memory reports RAM and swap usage.
type Memory struct {
	scan.Base
	src  sysinfo.Source
	ram  config.Limit
	swap config.Limit
}

// NewMemory creates the Memory probe.
func NewMemory(src sysinfo.Source, th config.Thresholds) *Memory {
	return &Memory{
		Base: scan.NewBase("Memory", scan.CategoryHardware).WithDescription("RAM and swap usage"),
		src:  src,
		ram:  th.Memory,
		swap: th.Swap,
	}
}

// Execute implements scan.Probe.
func (m *Memory) Execute(ctx context.Context) (*scan.Result, error) {
	vm, err := m.src.VirtualMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading memory stats: %w", err)
	}

	res := m.NewResult().
		WithRaw("total_bytes", vm.Total).
		WithRaw("available_bytes", vm.Available).
		WithRaw("used_bytes", vm.Used).
		WithRaw("percent_used", vm.UsedPercent)

	res.Add(m.Finding(
		fmt.Sprintf("%s RAM", sysinfo.FormatBytes(vm.Total)),
		fmt.Sprintf("%.0f%% in use, %s available", vm.UsedPercent, sysinfo.FormatBytes(vm.Available)),
		scan.SeverityPass,
	))

	switch m.ram.Grade(vm.UsedPercent) {
	case scan.SeverityCritical:
		res.Add(m.Finding("Critical memory usage", fmt.Sprintf("RAM is at %.0f%% utilization", vm.UsedPercent), scan.SeverityCritical).
			WithRecommendation("Close unused applications or add more RAM"))
	case scan.SeverityWarning:
		res.Add(m.Finding("High memory usage", fmt.Sprintf("RAM is at %.0f%% utilization", vm.UsedPercent), scan.SeverityWarning).
			WithRecommendation("Monitor memory usage"))
	}

	swap, err := m.src.SwapMemory(ctx)
	if err != nil || swap.Total == 0 {
		res.Add(m.Finding("No swap configured", "The system has no swap space", scan.SeverityInfo))
		return res, nil
	}

	res.WithRaw("swap_total_bytes", swap.Total).WithRaw("swap_percent_used", swap.UsedPercent)
	if sev := m.swap.Grade(swap.UsedPercent); sev != scan.SeverityPass {
		res.Add(m.Finding("Heavy swap usage",
			fmt.Sprintf("%.0f%% of %s swap in use", swap.UsedPercent, sysinfo.FormatBytes(swap.Total)), sev).
			WithRecommendation("The system is paging; reduce memory pressure"))
	} else {
		res.Add(m.Finding("Swap",
			fmt.Sprintf("%.0f%% of %s in use", swap.UsedPercent, sysinfo.FormatBytes(swap.Total)), scan.SeverityInfo))
	}
	return res, nil
}
