package security

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// suspiciousDirs are locations executables rarely run from legitimately.
var suspiciousDirs = []string{
	"/tmp/",
	"/var/tmp/",
	"/dev/shm/",
	`\appdata\local\temp\`,
	`\windows\temp\`,
	`\users\public\`,
}

// Processes flags resource-heavy processes and executables running from
// temporary locations.
type Processes struct {
	scan.Base
	src     sysinfo.Source
	cpuWarn float64
	memWarn float64
}

// NewProcesses creates the Processes probe.
func NewProcesses(src sysinfo.Source, cpuWarn, memWarn float64) *Processes {
	return &Processes{
		Base:    scan.NewBase("Processes", scan.CategorySecurity).WithDescription("Running process audit"),
		src:     src,
		cpuWarn: cpuWarn,
		memWarn: memWarn,
	}
}

// Execute implements scan.Probe.
func (p *Processes) Execute(ctx context.Context) (*scan.Result, error) {
	procs, err := p.src.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	res := p.NewResult().WithRaw("process_count", len(procs))

	heavy := make([]sysinfo.ProcessInfo, 0)
	for _, proc := range procs {
		if proc.CPUPercent > p.cpuWarn || float64(proc.MemoryPercent) > p.memWarn {
			heavy = append(heavy, proc)
		}
	}
	sort.Slice(heavy, func(i, j int) bool { return heavy[i].CPUPercent > heavy[j].CPUPercent })

	for _, proc := range heavy {
		res.Add(p.Finding(fmt.Sprintf("High resource usage: %s", proc.Name),
			fmt.Sprintf("PID %d uses %.1f%% CPU and %.1f%% memory", proc.PID, proc.CPUPercent, proc.MemoryPercent),
			scan.SeverityWarning).
			WithComponent(proc.Name).
			WithDetail("pid", proc.PID).
			WithRecommendation("Check whether this process is expected to be this busy"))
	}

	suspicious := 0
	for _, proc := range procs {
		if !suspiciousPath(proc.Exe) {
			continue
		}
		suspicious++
		res.Add(p.Finding(fmt.Sprintf("Process running from temporary location: %s", proc.Name),
			fmt.Sprintf("PID %d runs %s", proc.PID, proc.Exe), scan.SeverityWarning).
			WithComponent(proc.Name).
			WithDetail("pid", proc.PID).
			WithDetail("exe", proc.Exe).
			WithRecommendation("Verify the executable; malware often runs from temporary directories"))
	}

	if len(heavy) == 0 && suspicious == 0 {
		res.Add(p.Finding("No suspicious processes",
			fmt.Sprintf("%d processes checked", len(procs)), scan.SeverityPass))
	}
	return res, nil
}

func suspiciousPath(exe string) bool {
	if exe == "" {
		return false
	}
	lower := strings.ToLower(exe)
	for _, dir := range suspiciousDirs {
		if strings.HasPrefix(dir, "/") {
			if strings.HasPrefix(lower, dir) {
				return true
			}
			continue
		}
		if strings.Contains(lower, dir) {
			return true
		}
	}
	return false
}
