// Package security contains probes for firewall state, exposed ports,
// running processes and user sessions.
package security

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// firewallState is what a backend learned from its tool.
type firewallState struct {
	enabled bool
	detail  string
	// profiles maps a profile or table name to whether it is enabled.
	profiles map[string]bool
}

// firewallBackend knows how to ask one firewall tool for its state.
type firewallBackend struct {
	name   string
	binary string
	args   []string
	parse  func(out string) firewallState
}

// firewallBackends returns the backends for goos in preference order.
func firewallBackends(goos string) []firewallBackend {
	switch goos {
	case "windows":
		return []firewallBackend{{
			name:   "Windows Defender Firewall",
			binary: "netsh",
			args:   []string{"advfirewall", "show", "allprofiles", "state"},
			parse:  parseNetsh,
		}}
	case "darwin":
		return []firewallBackend{{
			name:   "Application Firewall",
			binary: "/usr/libexec/ApplicationFirewall/socketfilterfw",
			args:   []string{"--getglobalstate"},
			parse:  parseSocketFilter,
		}}
	default:
		return []firewallBackend{
			{name: "ufw", binary: "ufw", args: []string{"status"}, parse: parseUFW},
			{name: "nftables", binary: "nft", args: []string{"list", "ruleset"}, parse: parseNft},
			{name: "iptables", binary: "iptables", args: []string{"-S"}, parse: parseIptables},
		}
	}
}

// Firewall reports whether a host firewall is active. It needs elevated
// rights and one of the platform's firewall tools.
type Firewall struct {
	scan.Base
	backends []firewallBackend
	run      Runner
	lookPath func(string) (string, error)
}

// NewFirewall creates the Firewall probe for the running platform.
func NewFirewall() *Firewall {
	return newFirewall(runtime.GOOS, ExecRunner, exec.LookPath)
}

func newFirewall(goos string, run Runner, lookPath func(string) (string, error)) *Firewall {
	backends := firewallBackends(goos)
	binaries := make([]string, 0, len(backends))
	for _, b := range backends {
		binaries = append(binaries, b.binary)
	}
	return &Firewall{
		Base: scan.NewBase("Firewall", scan.CategorySecurity).
			WithAdmin().
			WithDependencies(binaries...).
			WithDescription("Host firewall status"),
		backends: backends,
		run:      run,
		lookPath: lookPath,
	}
}

// Available requires admin rights and at least one firewall tool. The
// dependencies are alternatives, so the default all-of rule does not apply.
func (f *Firewall) Available(env scan.Environment) bool {
	if f.RequiresAdmin() && !env.Admin {
		return false
	}
	for _, b := range f.backends {
		if env.Resolve(b.binary) {
			return true
		}
	}
	return false
}

// Execute implements scan.Probe.
func (f *Firewall) Execute(ctx context.Context) (*scan.Result, error) {
	var lastErr error
	for _, b := range f.backends {
		if _, err := f.lookPath(b.binary); err != nil {
			continue
		}
		out, err := f.run(ctx, b.binary, b.args...)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", b.name, err)
			continue
		}
		return f.report(b, b.parse(string(out))), nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no firewall tool found")
}

func (f *Firewall) report(b firewallBackend, state firewallState) *scan.Result {
	res := f.NewResult().
		WithRaw("backend", b.name).
		WithRaw("enabled", state.enabled)
	if len(state.profiles) > 0 {
		res.WithRaw("profiles", state.profiles)
	}

	if !state.enabled {
		res.Add(f.Finding(b.name+" is disabled", state.detail, scan.SeverityCritical).
			WithComponent(b.name).
			WithRecommendation("Enable the host firewall to block unsolicited inbound traffic"))
		return res
	}

	res.Add(f.Finding(b.name+" is enabled", state.detail, scan.SeverityPass).WithComponent(b.name))
	names := make([]string, 0, len(state.profiles))
	for profile := range state.profiles {
		names = append(names, profile)
	}
	sort.Strings(names)
	for _, profile := range names {
		if !state.profiles[profile] {
			res.Add(f.Finding(fmt.Sprintf("%s profile is off", profile),
				fmt.Sprintf("The %s firewall profile is disabled", profile), scan.SeverityWarning).
				WithComponent(b.name).
				WithRecommendation("Enable the firewall for every network profile"))
		}
	}
	return res
}

func parseUFW(out string) firewallState {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.ToLower(line))
		if strings.HasPrefix(line, "status:") {
			active := strings.TrimSpace(strings.TrimPrefix(line, "status:")) == "active"
			return firewallState{enabled: active, detail: "ufw " + strings.TrimSpace(strings.TrimPrefix(line, "status:"))}
		}
	}
	return firewallState{detail: "ufw status could not be determined"}
}

func parseNft(out string) firewallState {
	chains := strings.Count(out, "chain ")
	rules := 0
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "}" || strings.HasPrefix(line, "table ") ||
			strings.HasPrefix(line, "chain ") || strings.HasPrefix(line, "type ") {
			continue
		}
		rules++
	}
	return firewallState{
		enabled: chains > 0 && rules > 0,
		detail:  fmt.Sprintf("%d chains, %d rules", chains, rules),
	}
}

func parseIptables(out string) firewallState {
	rules, dropPolicy := 0, false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "-P "):
			if strings.HasSuffix(line, "DROP") || strings.HasSuffix(line, "REJECT") {
				dropPolicy = true
			}
		case strings.HasPrefix(line, "-A "):
			rules++
		}
	}
	return firewallState{
		enabled: rules > 0 || dropPolicy,
		detail:  fmt.Sprintf("%d rules", rules),
	}
}

func parseNetsh(out string) firewallState {
	profiles := map[string]bool{}
	current := ""
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if strings.HasSuffix(lower, "profile settings:") {
			current = strings.TrimSpace(line[:len(line)-len("profile settings:")])
			continue
		}
		if current != "" && strings.HasPrefix(lower, "state") {
			profiles[current] = strings.HasSuffix(lower, "on")
			current = ""
		}
	}

	on := 0
	for _, enabled := range profiles {
		if enabled {
			on++
		}
	}
	return firewallState{
		enabled:  on > 0,
		detail:   fmt.Sprintf("%d of %d profiles enabled", on, len(profiles)),
		profiles: profiles,
	}
}

func parseSocketFilter(out string) firewallState {
	lower := strings.ToLower(out)
	enabled := strings.Contains(lower, "enabled") && !strings.Contains(lower, "disabled")
	return firewallState{enabled: enabled, detail: strings.TrimSpace(out)}
}
