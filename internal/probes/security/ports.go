package security

import (
	"context"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

const rdpPort = 3389

// wellKnownServices names the services usually behind risky ports.
var wellKnownServices = map[int]string{
	21:   "FTP",
	23:   "Telnet",
	135:  "RPC",
	139:  "NetBIOS",
	445:  "SMB",
	3389: "RDP",
	5900: "VNC",
}

// Ports reports listening TCP ports and flags the risky ones.
type Ports struct {
	scan.Base
	src   sysinfo.Source
	risky map[int]bool
}

// NewPorts creates the Ports probe. riskyPorts are reported as warnings
// when something listens on them.
func NewPorts(src sysinfo.Source, riskyPorts []int) *Ports {
	risky := make(map[int]bool, len(riskyPorts))
	for _, p := range riskyPorts {
		risky[p] = true
	}
	return &Ports{
		Base:  scan.NewBase("Ports", scan.CategorySecurity).WithDescription("Listening network ports"),
		src:   src,
		risky: risky,
	}
}

// Execute implements scan.Probe.
func (p *Ports) Execute(ctx context.Context) (*scan.Result, error) {
	conns, err := p.src.Connections(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}

	listening := map[int]string{}
	for _, c := range conns {
		if c.Status != "LISTEN" {
			continue
		}
		port := int(c.Laddr.Port)
		if _, seen := listening[port]; !seen {
			listening[port] = c.Laddr.IP
		}
	}

	ports := make([]int, 0, len(listening))
	for port := range listening {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	res := p.NewResult().
		WithRaw("listening_ports", ports).
		WithRaw("listening_count", len(ports))

	riskyOpen := 0
	for _, port := range ports {
		if !p.risky[port] {
			continue
		}
		riskyOpen++
		service := wellKnownServices[port]
		if service == "" {
			service = "unknown service"
		}
		f := p.Finding(fmt.Sprintf("Port %d (%s) is open", port, service),
			fmt.Sprintf("%s is listening on %s:%d", service, listening[port], port), scan.SeverityWarning).
			WithComponent(fmt.Sprintf("port %d", port)).
			WithDetail("port", port).
			WithDetail("address", listening[port])
		if port == rdpPort {
			f = f.WithRecommendation("Restrict Remote Desktop to a VPN or enable Network Level Authentication")
		} else {
			f = f.WithRecommendation(fmt.Sprintf("Close port %d or restrict it with the firewall if %s is not needed", port, service))
		}
		res.Add(f)
	}

	if riskyOpen == 0 {
		res.Add(p.Finding("No risky ports open",
			fmt.Sprintf("%d listening ports, none on the risky list", len(ports)), scan.SeverityPass))
	}
	return res, nil
}
