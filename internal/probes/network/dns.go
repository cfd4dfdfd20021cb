package network

import (
	"context"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/miekg/dns"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Exchanger sends one DNS query. *dns.Client satisfies it.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error)
}

// DNS resolves the configured names through each configured server.
type DNS struct {
	scan.Base
	servers []string
	queries []string
	latency config.Limit
	client  Exchanger
}

// NewDNS creates the DNS probe.
func NewDNS(cfg config.NetworkConfig, latency config.Limit) *DNS {
	return &DNS{
		Base:    scan.NewBase("DNS", scan.CategoryNetwork).WithDescription("DNS resolution and resolver latency"),
		servers: append([]string(nil), cfg.DNSServers...),
		queries: append([]string(nil), cfg.DNSQueries...),
		latency: latency,
		client:  &dns.Client{Net: "udp", Timeout: cfg.Timeout},
	}
}

// WithExchanger replaces the DNS client.
func (d *DNS) WithExchanger(client Exchanger) *DNS {
	d.client = client
	return d
}

type serverStats struct {
	server   string
	resolved int
	total    time.Duration
	lastErr  error
}

func (s serverStats) avgMS() float64 {
	if s.resolved == 0 {
		return 0
	}
	return float64((s.total / time.Duration(s.resolved)).Microseconds()) / 1000
}

// Execute implements scan.Probe.
func (d *DNS) Execute(ctx context.Context) (*scan.Result, error) {
	if len(d.servers) == 0 || len(d.queries) == 0 {
		return nil, fmt.Errorf("no DNS servers or queries configured")
	}

	stats := make([]serverStats, 0, len(d.servers))
	for _, server := range d.servers {
		s := serverStats{server: server}
		for _, name := range d.queries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rtt, err := d.resolve(ctx, server, name)
			if err != nil {
				s.lastErr = err
				continue
			}
			s.resolved++
			s.total += rtt
		}
		stats = append(stats, s)
	}

	res := d.NewResult()
	resolved, attempted := 0, len(d.servers)*len(d.queries)
	benchmarks := make([]map[string]any, 0, len(stats))
	for _, s := range stats {
		resolved += s.resolved
		benchmarks = append(benchmarks, map[string]any{
			"server":   s.server,
			"resolved": s.resolved,
			"queries":  len(d.queries),
			"avg_ms":   s.avgMS(),
		})
	}
	res.WithRaw("benchmarks", benchmarks).
		WithRaw("resolved", resolved).
		WithRaw("attempted", attempted)

	switch {
	case resolved == attempted:
		res.Add(d.Finding("DNS resolution OK",
			fmt.Sprintf("Resolved %d names through %d servers", len(d.queries), len(d.servers)), scan.SeverityPass))
	case resolved > 0:
		res.Add(d.Finding("DNS resolution partial",
			fmt.Sprintf("%d of %d lookups succeeded", resolved, attempted), scan.SeverityWarning).
			WithRecommendation("Some resolvers or names failed; check for DNS filtering"))
	default:
		res.Add(d.Finding("DNS resolution failed", "No lookup succeeded", scan.SeverityCritical).
			WithRecommendation("Check DNS settings and the internet connection"))
		return res, nil
	}

	if fastest, ok := fastestServer(stats); ok {
		res.Add(d.Finding("Fastest DNS: "+fastest.server,
			fmt.Sprintf("%.0fms average", fastest.avgMS()), scan.SeverityInfo).
			WithComponent(fastest.server).
			WithDetail("latency_ms", fastest.avgMS()))
	}

	for _, s := range stats {
		if s.resolved == 0 {
			desc := "No answers"
			if s.lastErr != nil {
				desc = s.lastErr.Error()
			}
			res.Add(d.Finding("DNS: "+s.server+" failed", desc, scan.SeverityWarning).WithComponent(s.server))
			continue
		}
		ms := s.avgMS()
		sev := d.latency.Grade(ms)
		if s.resolved < len(d.queries) && sev == scan.SeverityPass {
			sev = scan.SeverityWarning
		}
		res.Add(d.Finding(fmt.Sprintf("DNS: %s", s.server),
			fmt.Sprintf("%d/%d resolved, %.0fms average", s.resolved, len(d.queries), ms), sev).
			WithComponent(s.server).
			WithDetail("latency_ms", ms))
	}
	return res, nil
}

// resolve queries an A record for name through server and returns the
// round-trip time of a successful answer.
func (d *DNS) resolve(ctx context.Context, server, name string) (time.Duration, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)
	m.RecursionDesired = true

	r, rtt, err := d.client.ExchangeContext(ctx, m, serverAddress(server))
	if err != nil {
		return 0, err
	}
	if r.Rcode != dns.RcodeSuccess {
		return 0, fmt.Errorf("%s: %s", name, dns.RcodeToString[r.Rcode])
	}
	if len(r.Answer) == 0 {
		return 0, fmt.Errorf("%s: empty answer", name)
	}
	return rtt, nil
}

func serverAddress(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

func fastestServer(stats []serverStats) (serverStats, bool) {
	ok := make([]serverStats, 0, len(stats))
	for _, s := range stats {
		if s.resolved > 0 {
			ok = append(ok, s)
		}
	}
	if len(ok) == 0 {
		return serverStats{}, false
	}
	sort.SliceStable(ok, func(i, j int) bool { return ok[i].avgMS() < ok[j].avgMS() })
	return ok[0], true
}
