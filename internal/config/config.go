// Package config loads sysprobe settings from a YAML file, SYSPROBE_*
// environment variables and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/log"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Config is the complete sysprobe configuration. It is loaded once by the
// CLI and passed explicitly to the components that need it.
type Config struct {
	// Scan configures mode selection and the probe run wrapper
	Scan ScanConfig `yaml:"scan" json:"scan" mapstructure:"scan"`

	// Log configures structured logging
	Log LogConfig `yaml:"log" json:"log" mapstructure:"log"`

	// Thresholds holds the limits hardware and system probes grade against
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds" mapstructure:"thresholds"`

	// Network configures the network probes
	Network NetworkConfig `yaml:"network" json:"network" mapstructure:"network"`

	// Security configures the security probes
	Security SecurityConfig `yaml:"security" json:"security" mapstructure:"security"`

	// Export configures report files
	Export ExportConfig `yaml:"export" json:"export" mapstructure:"export"`

	// Modes adds custom scan modes. Each maps to an allow-list of probe
	// names or categories; an empty list selects every probe.
	Modes map[string][]string `yaml:"modes,omitempty" json:"modes,omitempty" mapstructure:"modes"`
}

// ScanConfig configures scanning.
type ScanConfig struct {
	// Mode is the default scan mode
	Mode string `yaml:"mode" json:"mode" mapstructure:"mode"`

	// ProbeTimeout bounds each probe. Zero disables the bound.
	ProbeTimeout time.Duration `yaml:"probe_timeout" json:"probe_timeout" mapstructure:"probe_timeout"`

	// NoAdmin forces a non-elevated run even when privileges are available
	NoAdmin bool `yaml:"no_admin" json:"no_admin" mapstructure:"no_admin"`

	// FailOn is the finding severity that makes the CLI exit non-zero
	FailOn string `yaml:"fail_on" json:"fail_on" mapstructure:"fail_on"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level" json:"level" mapstructure:"level"`
	Format     string `yaml:"format" json:"format" mapstructure:"format"`
	File       string `yaml:"file" json:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress" mapstructure:"compress"`
}

// Limit is a warning/critical pair. Values above Warning produce a warning
// finding, values above Critical a critical one.
type Limit struct {
	Warning  float64 `yaml:"warning" json:"warning" mapstructure:"warning"`
	Critical float64 `yaml:"critical" json:"critical" mapstructure:"critical"`
}

// Grade classifies value against the limit.
func (l Limit) Grade(value float64) scan.Severity {
	switch {
	case value > l.Critical:
		return scan.SeverityCritical
	case value > l.Warning:
		return scan.SeverityWarning
	default:
		return scan.SeverityPass
	}
}

func (l Limit) validate(name string) error {
	if l.Warning < 0 || l.Critical < 0 {
		return errors.NewConfigInvalidError(fmt.Sprintf("thresholds.%s must not be negative", name))
	}
	if l.Warning > l.Critical {
		return errors.NewConfigInvalidError(fmt.Sprintf("thresholds.%s.warning (%.0f) exceeds critical (%.0f)", name, l.Warning, l.Critical))
	}
	return nil
}

// Thresholds are percentages unless noted.
type Thresholds struct {
	CPULoad        Limit `yaml:"cpu_load" json:"cpu_load" mapstructure:"cpu_load"`
	CPUTemperature Limit `yaml:"cpu_temperature" json:"cpu_temperature" mapstructure:"cpu_temperature"` // Celsius
	Memory         Limit `yaml:"memory" json:"memory" mapstructure:"memory"`
	Swap           Limit `yaml:"swap" json:"swap" mapstructure:"swap"`
	Disk           Limit `yaml:"disk" json:"disk" mapstructure:"disk"`
	UptimeDays     Limit `yaml:"uptime_days" json:"uptime_days" mapstructure:"uptime_days"`
	LatencyMS      Limit `yaml:"latency_ms" json:"latency_ms" mapstructure:"latency_ms"`
}

// NetworkConfig configures the network probes.
type NetworkConfig struct {
	// Hosts are host:port targets for the connectivity probe
	Hosts []string `yaml:"hosts" json:"hosts" mapstructure:"hosts"`

	// DNSServers are resolvers queried directly by the DNS probe
	DNSServers []string `yaml:"dns_servers" json:"dns_servers" mapstructure:"dns_servers"`

	// DNSQueries are names resolved through each server
	DNSQueries []string `yaml:"dns_queries" json:"dns_queries" mapstructure:"dns_queries"`

	// SpeedTestURLs are downloaded by the speed test probe
	SpeedTestURLs []string `yaml:"speed_test_urls" json:"speed_test_urls" mapstructure:"speed_test_urls"`

	// Timeout bounds a single dial, query or download
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// SecurityConfig configures the security probes.
type SecurityConfig struct {
	// RiskyPorts are listening ports reported as warnings
	RiskyPorts []int `yaml:"risky_ports" json:"risky_ports" mapstructure:"risky_ports"`

	// ProcessCPUWarn flags processes above this CPU percentage
	ProcessCPUWarn float64 `yaml:"process_cpu_warn" json:"process_cpu_warn" mapstructure:"process_cpu_warn"`

	// ProcessMemoryWarn flags processes above this memory percentage
	ProcessMemoryWarn float64 `yaml:"process_memory_warn" json:"process_memory_warn" mapstructure:"process_memory_warn"`
}

// ExportConfig configures report files.
type ExportConfig struct {
	// Dir receives reports written without an explicit path
	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`

	// Format is the default export format
	Format string `yaml:"format" json:"format" mapstructure:"format"`

	// Checksum writes a BLAKE3 sidecar next to every report file
	Checksum bool `yaml:"checksum" json:"checksum" mapstructure:"checksum"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Mode:         scan.ModeQuick,
			ProbeTimeout: 60 * time.Second,
			FailOn:       "critical",
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Thresholds: Thresholds{
			CPULoad:        Limit{Warning: 90, Critical: 98},
			CPUTemperature: Limit{Warning: 75, Critical: 85},
			Memory:         Limit{Warning: 80, Critical: 90},
			Swap:           Limit{Warning: 50, Critical: 80},
			Disk:           Limit{Warning: 85, Critical: 95},
			UptimeDays:     Limit{Warning: 30, Critical: 90},
			LatencyMS:      Limit{Warning: 200, Critical: 500},
		},
		Network: NetworkConfig{
			Hosts:      []string{"8.8.8.8:53", "1.1.1.1:53", "208.67.222.222:53"},
			DNSServers: []string{"8.8.8.8", "1.1.1.1", "9.9.9.9"},
			DNSQueries: []string{"google.com", "cloudflare.com", "github.com"},
			SpeedTestURLs: []string{
				"https://www.google.com/images/branding/googlelogo/2x/googlelogo_color_272x92dp.png",
				"https://www.cloudflare.com/favicon.ico",
			},
			Timeout: 5 * time.Second,
		},
		Security: SecurityConfig{
			RiskyPorts:        []int{21, 23, 135, 139, 445, 3389, 5900},
			ProcessCPUWarn:    50,
			ProcessMemoryWarn: 10,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "json",
		},
	}
}

// LoggerConfig converts the log section into a log.Config. Debug logging
// also records source locations.
func (c *Config) LoggerConfig() log.Config {
	cfg := log.DefaultConfig()
	if level := log.ParseLevel(c.Log.Level); level == log.LevelDebug {
		cfg = log.DevelopmentConfig()
	} else {
		cfg.Level = level
	}
	cfg.Format = log.ParseFormat(c.Log.Format)
	if c.Log.File != "" {
		cfg.File = log.FileConfig{
			Path:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
			Compress:   c.Log.Compress,
		}
	}
	return cfg
}

// ApplyModes defines every custom mode on the registry.
func (c *Config) ApplyModes(r *scan.Registry) error {
	for name, allow := range c.Modes {
		if err := r.DefineMode(name, allow); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration and returns a CONFIG-002 error
// describing the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Scan.Mode) == "" {
		return errors.NewConfigInvalidError("scan.mode must not be empty")
	}
	if c.Scan.ProbeTimeout < 0 {
		return errors.NewConfigInvalidError("scan.probe_timeout must not be negative")
	}
	switch strings.ToLower(c.Scan.FailOn) {
	case "critical", "warning", "none":
	default:
		return errors.NewConfigInvalidError(fmt.Sprintf("scan.fail_on must be critical, warning or none, got %q", c.Scan.FailOn))
	}
	if !log.ValidLevel(c.Log.Level) {
		return errors.NewConfigInvalidError(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.NewConfigInvalidError(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	limits := []struct {
		name  string
		limit Limit
	}{
		{"cpu_load", c.Thresholds.CPULoad},
		{"cpu_temperature", c.Thresholds.CPUTemperature},
		{"memory", c.Thresholds.Memory},
		{"swap", c.Thresholds.Swap},
		{"disk", c.Thresholds.Disk},
		{"uptime_days", c.Thresholds.UptimeDays},
		{"latency_ms", c.Thresholds.LatencyMS},
	}
	for _, l := range limits {
		if err := l.limit.validate(l.name); err != nil {
			return err
		}
	}

	if c.Network.Timeout <= 0 {
		return errors.NewConfigInvalidError("network.timeout must be positive")
	}
	for _, port := range c.Security.RiskyPorts {
		if port <= 0 || port > 65535 {
			return errors.NewConfigInvalidError(fmt.Sprintf("security.risky_ports contains invalid port %d", port))
		}
	}
	for name := range c.Modes {
		if strings.TrimSpace(name) == "" {
			return errors.NewConfigInvalidError("modes must not contain an empty name")
		}
	}
	return nil
}
