// Package probes assembles the built-in probe set.
package probes

import (
	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/probes/hardware"
	"github.com/felixgeelhaar/sysprobe/internal/probes/network"
	"github.com/felixgeelhaar/sysprobe/internal/probes/security"
	"github.com/felixgeelhaar/sysprobe/internal/probes/system"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// All returns fresh instances of every built-in probe in registration
// order: hardware, security, network, system.
func All(cfg *config.Config, src sysinfo.Source) []scan.Probe {
	th := cfg.Thresholds
	return []scan.Probe{
		hardware.NewCPU(src, th),
		hardware.NewMemory(src, th),
		hardware.NewDiskUsage(src, th),
		hardware.NewStorage(src),
		hardware.NewNetworkAdapters(src),

		security.NewFirewall(),
		security.NewPorts(src, cfg.Security.RiskyPorts),
		security.NewProcesses(src, cfg.Security.ProcessCPUWarn, cfg.Security.ProcessMemoryWarn),
		security.NewUsers(src),

		network.NewConnectivity(cfg.Network, th.LatencyMS),
		network.NewDNS(cfg.Network, th.LatencyMS),
		network.NewSpeedTest(cfg.Network.SpeedTestURLs, cfg.Network.Timeout),

		system.NewOSInfo(src, th.UptimeDays),
	}
}

// NewRegistry registers All into a registry and applies the custom modes
// from cfg.
func NewRegistry(cfg *config.Config, src sysinfo.Source) (*scan.Registry, error) {
	registry := scan.NewRegistry()
	if err := registry.RegisterAll(All(cfg, src)...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyModes(registry); err != nil {
		return nil, err
	}
	return registry, nil
}
