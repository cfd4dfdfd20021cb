package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo/sysinfotest"
)

func updateMonitor(t *testing.T, m Monitor, msg tea.Msg) (Monitor, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Monitor)
	if !ok {
		t.Fatalf("Expected Monitor, got %T", next)
	}
	return model, cmd
}

func TestMonitorInitSamplesSource(t *testing.T) {
	src := &sysinfotest.Fake{
		Load:   37,
		Memory: &mem.VirtualMemoryStat{Total: 8 << 30, Used: 2 << 30, UsedPercent: 25},
	}
	m := NewMonitor(src, config.Default().Thresholds, time.Second, 0)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Expected Init to take a reading")
	}
	msg, ok := cmd().(SnapshotMsg)
	if !ok {
		t.Fatalf("Expected SnapshotMsg, got %T", msg)
	}
	if msg.Snapshot.CPUPercent != 37 || msg.Snapshot.MemoryPercent != 25 {
		t.Errorf("Unexpected snapshot: %+v", msg.Snapshot)
	}
	if src.LoadCalls != 1 {
		t.Errorf("Expected one CPU reading, got %d", src.LoadCalls)
	}
}

func TestMonitorView(t *testing.T) {
	m := NewMonitor(&sysinfotest.Fake{}, config.Default().Thresholds, time.Second, 0)
	if !strings.Contains(m.View(), "Sampling") {
		t.Error("View should wait for the first reading")
	}

	m, cmd := updateMonitor(t, m, SnapshotMsg{Snapshot: sysinfo.Snapshot{
		Taken:          time.Now(),
		CPUPercent:     12.5,
		CPUTemperature: 61,
		MemoryPercent:  50,
		MemoryUsed:     8 << 30,
		MemoryTotal:    16 << 30,
		Volumes: []sysinfo.Volume{
			{Mountpoint: "/data", Total: 100 << 30, Used: 95 << 30, UsedPercent: 95},
		},
	}})
	if cmd == nil {
		t.Fatal("Expected the next reading to be scheduled")
	}
	if m.Samples() != 1 {
		t.Errorf("Expected 1 sample, got %d", m.Samples())
	}

	view := m.View()
	for _, want := range []string{" 12.5%", "61.0C", "8.0 GiB / 16 GiB", "/data", " 95.0%", "95 GiB of 100 GiB used"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
}

func TestMonitorStopsAfterDuration(t *testing.T) {
	m := NewMonitor(&sysinfotest.Fake{}, config.Default().Thresholds, time.Second, 5*time.Second)

	m, cmd := updateMonitor(t, m, SnapshotMsg{Snapshot: sysinfo.Snapshot{Taken: m.started.Add(2 * time.Second)}})
	if m.quitting {
		t.Fatal("Monitor stopped before the duration elapsed")
	}
	if cmd == nil {
		t.Fatal("Expected a tick")
	}

	m, cmd = updateMonitor(t, m, SnapshotMsg{Snapshot: sysinfo.Snapshot{Taken: m.started.Add(5 * time.Second)}})
	if !m.quitting || cmd == nil {
		t.Fatal("Expected the monitor to quit once the duration elapsed")
	}
	if !strings.Contains(m.View(), "Monitor stopped.") {
		t.Error("View should report the stop")
	}
}

func TestMonitorQuitKey(t *testing.T) {
	m := NewMonitor(&sysinfotest.Fake{}, config.Default().Thresholds, 0, 0)
	if m.interval != time.Second {
		t.Errorf("Expected default interval 1s, got %s", m.interval)
	}

	m, cmd := updateMonitor(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || !m.quitting {
		t.Error("Expected q to quit")
	}
}
