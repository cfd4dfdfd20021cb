package hardware

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// NetworkAdapters reports interface state, addresses and error counters.
type NetworkAdapters struct {
	scan.Base
	src sysinfo.Source
}

// NewNetworkAdapters creates the Network Adapters probe.
func NewNetworkAdapters(src sysinfo.Source) *NetworkAdapters {
	return &NetworkAdapters{
		Base: scan.NewBase("Network Adapters", scan.CategoryHardware).WithDescription("Network interface status"),
		src:  src,
	}
}

// Execute implements scan.Probe.
func (n *NetworkAdapters) Execute(ctx context.Context) (*scan.Result, error) {
	ifaces, err := n.src.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}

	counters := map[string]net.IOCountersStat{}
	if stats, err := n.src.IOCounters(ctx); err == nil {
		for _, s := range stats {
			counters[s.Name] = s
		}
	}

	res := n.NewResult()
	adapters := make([]map[string]any, 0, len(ifaces))
	active := 0
	for _, iface := range ifaces {
		if hasFlag(iface.Flags, "loopback") {
			continue
		}
		up := hasFlag(iface.Flags, "up")
		addrs := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}
		adapters = append(adapters, map[string]any{
			"name":      iface.Name,
			"mac":       iface.HardwareAddr,
			"mtu":       iface.MTU,
			"up":        up,
			"addresses": addrs,
		})

		if !up {
			res.Add(n.Finding(iface.Name+": down", "Interface is not active", scan.SeverityInfo).WithComponent(iface.Name))
			continue
		}
		if len(addrs) > 0 {
			active++
		}
		desc := "No address assigned"
		if len(addrs) > 0 {
			desc = strings.Join(addrs, ", ")
		}
		res.Add(n.Finding(iface.Name+": up", desc, scan.SeverityPass).
			WithComponent(iface.Name).
			WithDetail("mac", iface.HardwareAddr))

		if c, ok := counters[iface.Name]; ok {
			errs := c.Errin + c.Errout
			drops := c.Dropin + c.Dropout
			if errs > 0 {
				res.Add(n.Finding(iface.Name+": transmission errors",
					fmt.Sprintf("%d errors, %d dropped packets since boot", errs, drops), scan.SeverityWarning).
					WithComponent(iface.Name).
					WithRecommendation("Check the cable, driver or wireless signal"))
			}
		}
	}
	res.WithRaw("adapters", adapters).WithRaw("active", active)

	if active == 0 {
		res.Add(n.Finding("No active network adapters", "No interface is up with an address", scan.SeverityCritical).
			WithRecommendation("Connect a network cable or join a wireless network"))
	}
	return res, nil
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}
