// Package network contains probes for reachability, name resolution and
// throughput.
package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// DialFunc opens a connection. net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Connectivity dials configured host:port targets and grades their
// connect latency.
type Connectivity struct {
	scan.Base
	hosts   []string
	timeout time.Duration
	latency config.Limit
	dial    DialFunc
}

// NewConnectivity creates the Connectivity probe.
func NewConnectivity(cfg config.NetworkConfig, latency config.Limit) *Connectivity {
	d := &net.Dialer{Timeout: cfg.Timeout}
	return &Connectivity{
		Base:    scan.NewBase("Connectivity", scan.CategoryNetwork).WithDescription("Internet reachability and latency"),
		hosts:   append([]string(nil), cfg.Hosts...),
		timeout: cfg.Timeout,
		latency: latency,
		dial:    d.DialContext,
	}
}

// WithDialer replaces the function used to open connections.
func (c *Connectivity) WithDialer(dial DialFunc) *Connectivity {
	c.dial = dial
	return c
}

// Execute implements scan.Probe.
func (c *Connectivity) Execute(ctx context.Context) (*scan.Result, error) {
	if len(c.hosts) == 0 {
		return nil, fmt.Errorf("no connectivity targets configured")
	}

	var checks []scan.Finding
	targets := make([]map[string]any, 0, len(c.hosts))
	reachable := 0
	for _, host := range c.hosts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		latency, err := c.probe(ctx, host)
		if err != nil {
			targets = append(targets, map[string]any{"host": host, "reachable": false, "error": err.Error()})
			checks = append(checks, c.Finding(host+": unreachable", err.Error(), scan.SeverityWarning).
				WithComponent(host))
			continue
		}

		reachable++
		ms := float64(latency.Microseconds()) / 1000
		targets = append(targets, map[string]any{"host": host, "reachable": true, "latency_ms": ms})
		checks = append(checks, c.Finding(fmt.Sprintf("%s: %.0fms", host, ms),
			fmt.Sprintf("Connected in %.0fms", ms), c.latency.Grade(ms)).
			WithComponent(host).
			WithDetail("latency_ms", ms))
	}

	res := c.NewResult().
		WithRaw("targets", targets).
		WithRaw("reachable", reachable)

	switch {
	case reachable == len(c.hosts):
		res.Add(c.Finding("Internet connectivity OK",
			fmt.Sprintf("All %d targets reachable", reachable), scan.SeverityPass))
	case reachable > 0:
		res.Add(c.Finding("Partial connectivity",
			fmt.Sprintf("%d of %d targets reachable", reachable, len(c.hosts)), scan.SeverityWarning).
			WithRecommendation("Some destinations may be blocked by a firewall or proxy"))
	default:
		res.Add(c.Finding("No internet connection", "Cannot reach any external host", scan.SeverityCritical).
			WithRecommendation("Check the network cable or Wi-Fi connection and the router"))
	}
	res.Add(checks...)
	return res, nil
}

func (c *Connectivity) probe(ctx context.Context, host string) (time.Duration, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	conn, err := c.dial(ctx, "tcp", host)
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	_ = conn.Close()
	return elapsed, nil
}
