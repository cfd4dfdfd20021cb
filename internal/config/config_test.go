package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/log"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty mode", func(c *Config) { c.Scan.Mode = " " }},
		{"negative timeout", func(c *Config) { c.Scan.ProbeTimeout = -time.Second }},
		{"bad fail-on", func(c *Config) { c.Scan.FailOn = "info" }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"inverted limit", func(c *Config) { c.Thresholds.Disk = Limit{Warning: 95, Critical: 85} }},
		{"negative limit", func(c *Config) { c.Thresholds.Memory = Limit{Warning: -1, Critical: 90} }},
		{"zero network timeout", func(c *Config) { c.Network.Timeout = 0 }},
		{"invalid port", func(c *Config) { c.Security.RiskyPorts = []int{22, 70000} }},
		{"empty mode name", func(c *Config) { c.Modes = map[string][]string{"": {"cpu"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
		})
	}
}

func TestLimitGrade(t *testing.T) {
	l := Limit{Warning: 80, Critical: 90}

	assert.Equal(t, scan.SeverityPass, l.Grade(50))
	assert.Equal(t, scan.SeverityPass, l.Grade(80))
	assert.Equal(t, scan.SeverityWarning, l.Grade(85))
	assert.Equal(t, scan.SeverityCritical, l.Grade(90.5))
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	lc := cfg.LoggerConfig()
	assert.Equal(t, log.LevelDebug, lc.Level)
	assert.True(t, lc.AddSource)
	assert.Equal(t, log.FormatJSON, lc.Format)
	assert.False(t, lc.File.Enabled())

	cfg.Log.File = "/var/log/sysprobe.log"
	lc = cfg.LoggerConfig()
	assert.True(t, lc.File.Enabled())
	assert.Equal(t, 10, lc.File.MaxSizeMB)

	cfg.Log.Level = "warn"
	assert.False(t, cfg.LoggerConfig().AddSource)
}

func TestApplyModes(t *testing.T) {
	cfg := Default()
	cfg.Modes = map[string][]string{"audit": {"security", "os_info"}}

	r := scan.NewRegistry()
	require.NoError(t, cfg.ApplyModes(r))
	assert.True(t, r.HasMode("audit"))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	l := NewLoader("").WithHome(t.TempDir())
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Empty(t, l.ConfigFileUsed())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysprobe.yaml")
	content := `
scan:
  mode: security
  probe_timeout: 15s
  fail_on: warning
thresholds:
  disk:
    warning: 70
    critical: 80
network:
  dns_servers: [9.9.9.9]
modes:
  audit: [security, os_info]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	l := NewLoader(path)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, path, l.ConfigFileUsed())
	assert.Equal(t, scan.ModeSecurity, cfg.Scan.Mode)
	assert.Equal(t, 15*time.Second, cfg.Scan.ProbeTimeout)
	assert.Equal(t, "warning", cfg.Scan.FailOn)
	assert.Equal(t, Limit{Warning: 70, Critical: 80}, cfg.Thresholds.Disk)
	assert.Equal(t, Default().Thresholds.Memory, cfg.Thresholds.Memory, "untouched sections keep defaults")
	assert.Equal(t, []string{"9.9.9.9"}, cfg.Network.DNSServers)
	assert.Equal(t, []string{"security", "os_info"}, cfg.Modes["audit"])
}

func TestLoadFindsHomeConfig(t *testing.T) {
	chdir(t, t.TempDir())
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".sysprobe"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".sysprobe", "config.yaml"), []byte("scan:\n  mode: network\n"), 0o600))

	cfg, err := NewLoader("").WithHome(home).Load()
	require.NoError(t, err)
	assert.Equal(t, scan.ModeNetwork, cfg.Scan.Mode)
}

func TestLoadPrefersWorkingDirectoryConfig(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("sysprobe.yaml", []byte("scan:\n  mode: security\n"), 0o600))
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".sysprobe"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".sysprobe", "config.yaml"), []byte("scan:\n  mode: network\n"), 0o600))

	l := NewLoader("").WithHome(home)
	assert.Equal(t, []string{"sysprobe.yaml", filepath.Join(home, ".sysprobe", "config.yaml")}, l.SearchPaths())

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, scan.ModeSecurity, cfg.Scan.Mode)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SYSPROBE_SCAN_MODE", "hardware")
	t.Setenv("SYSPROBE_SCAN_PROBE_TIMEOUT", "5s")
	t.Setenv("SYSPROBE_LOG_LEVEL", "debug")

	cfg, err := NewLoader("").WithHome(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, scan.ModeHardware, cfg.Scan.Mode)
	assert.Equal(t, 5*time.Second, cfg.Scan.ProbeTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConfigLoad, errors.CodeOf(err))
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scan:\n  fail_on: sometimes\n"), 0o600))

		_, err := NewLoader(path).Load()
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
	})
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
