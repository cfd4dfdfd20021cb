package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diagerr "github.com/felixgeelhaar/sysprobe/internal/errors"
)

func probeNames(probes []Probe) []string {
	names := make([]string, 0, len(probes))
	for _, p := range probes {
		names = append(names, p.Name())
	}
	return names
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CPU", "cpu"},
		{"Disk Usage", "disk_usage"},
		{"Network Adapters ", "network_adapters_"},
		{" CPU", "_cpu"},
		{"speed_test", "speed_test"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newStub("Disk Usage", CategoryHardware)))

	p, ok := r.Get("disk usage")
	require.True(t, ok)
	assert.Equal(t, "Disk Usage", p.Name())
	assert.Equal(t, []string{"disk_usage"}, r.Names())
	assert.Equal(t, 1, r.Count())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	first := newStub("CPU", CategoryHardware)
	require.NoError(t, r.Register(first))

	err := r.Register(newStub("cpu", CategoryHardware))
	require.Error(t, err)
	assert.Equal(t, diagerr.ErrCodeRegistryDuplicate, diagerr.CodeOf(err))

	p, _ := r.Get("cpu")
	assert.Same(t, first, p, "failed registration must not replace the original")
	assert.Equal(t, 1, r.Count())
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	r := NewRegistry()
	err := r.Register(newStub("   ", CategorySystem))
	require.Error(t, err)
	assert.Equal(t, diagerr.ErrCodeRegistryInvalid, diagerr.CodeOf(err))
}

func TestRegistryRegisterAllStopsAtFirstError(t *testing.T) {
	r := NewRegistry()
	err := r.RegisterAll(
		newStub("CPU", CategoryHardware),
		newStub("CPU", CategoryHardware),
		newStub("Memory", CategoryHardware),
	)
	require.Error(t, err)
	assert.Equal(t, []string{"cpu"}, r.Names())
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(
		newStub("CPU", CategoryHardware),
		newStub("Memory", CategoryHardware),
		newStub("DNS", CategoryNetwork),
	))

	replacement := newStub("memory", CategoryHardware)
	r.Replace(replacement)
	r.Replace(newStub("Ports", CategorySecurity))

	assert.Equal(t, []string{"cpu", "memory", "dns", "ports"}, r.Names())
	p, _ := r.Get("Memory")
	assert.Same(t, replacement, p)
}

func TestSelectForMode(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(
		newStub("CPU", CategoryHardware),
		newStub("Firewall", CategorySecurity),
		newStub("Memory", CategoryHardware),
		newStub("DNS", CategoryNetwork),
		newStub("Disk Usage", CategoryHardware),
		newStub("OS Info", CategorySystem),
	))

	tests := []struct {
		mode string
		want []string
	}{
		{ModeQuick, []string{"CPU", "Firewall", "Memory", "Disk Usage"}},
		{ModeFull, []string{"CPU", "Firewall", "Memory", "DNS", "Disk Usage", "OS Info"}},
		{ModeHardware, []string{"CPU", "Memory", "Disk Usage"}},
		{ModeSecurity, []string{"Firewall"}},
		{ModeNetwork, []string{"DNS"}},
		{"nonexistent", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.want, probeNames(r.SelectForMode(tt.mode)))
		})
	}
}

func TestSelectForModeMatchesCategory(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(
		newStub("CPU", CategoryHardware),
		newStub("Ports", CategorySecurity),
		newStub("OS Info", CategorySystem),
	))
	require.NoError(t, r.DefineMode("audit", []string{"security", "OS Info"}))

	assert.Equal(t, []string{"Ports", "OS Info"}, probeNames(r.SelectForMode("audit")))
}

func TestDefineMode(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(
		newStub("CPU", CategoryHardware),
		newStub("DNS", CategoryNetwork),
	))

	require.NoError(t, r.DefineMode("everything", nil))
	assert.True(t, r.HasMode("everything"))
	assert.Equal(t, []string{"CPU", "DNS"}, probeNames(r.SelectForMode("everything")))

	allow, all, ok := r.ModeAllowList("everything")
	assert.True(t, ok)
	assert.True(t, all)
	assert.Empty(t, allow)

	_, _, ok = r.ModeAllowList("missing")
	assert.False(t, ok)

	err := r.DefineMode(" ", []string{"cpu"})
	require.Error(t, err)
	assert.Equal(t, diagerr.ErrCodeModeInvalid, diagerr.CodeOf(err))
}

func TestModesOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.DefineMode("zeta", []string{"cpu"}))
	require.NoError(t, r.DefineMode("alpha", []string{"cpu"}))

	assert.Equal(t, []string{
		ModeQuick, ModeFull, ModeHardware, ModeSecurity, ModeNetwork,
		"alpha", "zeta",
	}, r.Modes())
}

func TestDefaultModesIsACopy(t *testing.T) {
	modes := DefaultModes()
	modes[ModeQuick] = []string{"gpu"}

	assert.Contains(t, DefaultModes()[ModeQuick], "cpu")
}
