package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. SYSPROBE_SCAN_MODE.
const EnvPrefix = "SYSPROBE"

// Loader loads a Config with viper.
type Loader struct {
	path      string
	envPrefix string
	home      string
	viper     *viper.Viper
}

// NewLoader creates a loader. path may be empty, in which case the default
// locations are searched and a missing file is not an error.
func NewLoader(path string) *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		path:      path,
		envPrefix: EnvPrefix,
		home:      home,
		viper:     viper.New(),
	}
}

// WithHome overrides the home directory searched for config.yaml.
func (l *Loader) WithHome(home string) *Loader {
	l.home = home
	return l
}

// Load reads defaults, the config file and the environment, in increasing
// order of precedence, and validates the result.
func (l *Loader) Load() (*Config, error) {
	l.viper.SetConfigType("yaml")
	l.viper.SetEnvPrefix(l.envPrefix)
	l.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.viper.AutomaticEnv()

	l.setDefaults(Default())

	if err := l.readConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to decode configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file that was read, or "" if none.
func (l *Loader) ConfigFileUsed() string {
	return l.viper.ConfigFileUsed()
}

// SearchPaths returns the locations tried when no explicit path is given.
func (l *Loader) SearchPaths() []string {
	paths := []string{"sysprobe.yaml"}
	if l.home != "" {
		paths = append(paths, filepath.Join(l.home, ".sysprobe", "config.yaml"))
	}
	return paths
}

func (l *Loader) readConfigFile() error {
	path := l.path
	if path == "" {
		for _, candidate := range l.SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return nil
	}

	l.viper.SetConfigFile(path)
	if err := l.viper.ReadInConfig(); err != nil {
		return errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config file "+path, err).
			WithSuggestion("Check that the file exists and is valid YAML")
	}
	return nil
}

func (l *Loader) setDefaults(d *Config) {
	v := l.viper

	v.SetDefault("scan.mode", d.Scan.Mode)
	v.SetDefault("scan.probe_timeout", d.Scan.ProbeTimeout)
	v.SetDefault("scan.no_admin", d.Scan.NoAdmin)
	v.SetDefault("scan.fail_on", d.Scan.FailOn)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)

	limits := map[string]Limit{
		"cpu_load":        d.Thresholds.CPULoad,
		"cpu_temperature": d.Thresholds.CPUTemperature,
		"memory":          d.Thresholds.Memory,
		"swap":            d.Thresholds.Swap,
		"disk":            d.Thresholds.Disk,
		"uptime_days":     d.Thresholds.UptimeDays,
		"latency_ms":      d.Thresholds.LatencyMS,
	}
	for name, limit := range limits {
		v.SetDefault("thresholds."+name+".warning", limit.Warning)
		v.SetDefault("thresholds."+name+".critical", limit.Critical)
	}

	v.SetDefault("network.hosts", d.Network.Hosts)
	v.SetDefault("network.dns_servers", d.Network.DNSServers)
	v.SetDefault("network.dns_queries", d.Network.DNSQueries)
	v.SetDefault("network.speed_test_urls", d.Network.SpeedTestURLs)
	v.SetDefault("network.timeout", d.Network.Timeout)

	v.SetDefault("security.risky_ports", d.Security.RiskyPorts)
	v.SetDefault("security.process_cpu_warn", d.Security.ProcessCPUWarn)
	v.SetDefault("security.process_memory_warn", d.Security.ProcessMemoryWarn)

	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.checksum", d.Export.Checksum)
}
