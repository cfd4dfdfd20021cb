package security

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo/sysinfotest"
)

func severities(r *scan.Result) []scan.Severity {
	out := make([]scan.Severity, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.Severity)
	}
	return out
}

func titles(r *scan.Result) []string {
	out := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.Title)
	}
	return out
}

// fakeCommands answers lookPath and run from fixed tables.
type fakeCommands struct {
	installed map[string]bool
	outputs   map[string]string
	errs      map[string]error
	ran       []string
}

func (f *fakeCommands) lookPath(name string) (string, error) {
	if f.installed[name] {
		return "/usr/sbin/" + name, nil
	}
	return "", errors.New("not found")
}

func (f *fakeCommands) run(_ context.Context, name string, _ ...string) ([]byte, error) {
	f.ran = append(f.ran, name)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[name]), nil
}

func TestFirewallAvailable(t *testing.T) {
	fw := newFirewall("linux", ExecRunner, func(string) (string, error) { return "", nil })

	tests := []struct {
		name  string
		env   scan.Environment
		avail bool
	}{
		{"no admin", scan.Environment{Admin: false, Resolver: scan.ResolverFunc(func(string) bool { return true })}, false},
		{"admin with nft only", scan.Environment{Admin: true, Resolver: scan.ResolverFunc(func(d string) bool { return d == "nft" })}, true},
		{"admin without tools", scan.Environment{Admin: true, Resolver: scan.ResolverFunc(func(string) bool { return false })}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.avail, fw.Available(tt.env))
		})
	}

	assert.Equal(t, []string{"ufw", "nft", "iptables"}, fw.Dependencies())
	assert.True(t, fw.RequiresAdmin())
}

func TestFirewallLinux(t *testing.T) {
	tests := []struct {
		name      string
		cmds      *fakeCommands
		wantTitle string
		wantSev   scan.Severity
		backend   string
	}{
		{
			name: "ufw active",
			cmds: &fakeCommands{
				installed: map[string]bool{"ufw": true},
				outputs:   map[string]string{"ufw": "Status: active\n\nTo Action From\n"},
			},
			wantTitle: "ufw is enabled",
			wantSev:   scan.SeverityPass,
			backend:   "ufw",
		},
		{
			name: "ufw inactive",
			cmds: &fakeCommands{
				installed: map[string]bool{"ufw": true},
				outputs:   map[string]string{"ufw": "Status: inactive\n"},
			},
			wantTitle: "ufw is disabled",
			wantSev:   scan.SeverityCritical,
			backend:   "ufw",
		},
		{
			name: "falls back to iptables when ufw fails",
			cmds: &fakeCommands{
				installed: map[string]bool{"ufw": true, "iptables": true},
				errs:      map[string]error{"ufw": errors.New("exit status 1")},
				outputs:   map[string]string{"iptables": "-P INPUT DROP\n-P FORWARD DROP\n-P OUTPUT ACCEPT\n-A INPUT -i lo -j ACCEPT\n"},
			},
			wantTitle: "iptables is enabled",
			wantSev:   scan.SeverityPass,
			backend:   "iptables",
		},
		{
			name: "empty iptables ruleset",
			cmds: &fakeCommands{
				installed: map[string]bool{"iptables": true},
				outputs:   map[string]string{"iptables": "-P INPUT ACCEPT\n-P FORWARD ACCEPT\n-P OUTPUT ACCEPT\n"},
			},
			wantTitle: "iptables is disabled",
			wantSev:   scan.SeverityCritical,
			backend:   "iptables",
		},
		{
			name: "nftables with rules",
			cmds: &fakeCommands{
				installed: map[string]bool{"nft": true},
				outputs:   map[string]string{"nft": "table inet filter {\n\tchain input {\n\t\ttype filter hook input priority 0; policy drop;\n\t\tct state established accept\n\t}\n}\n"},
			},
			wantTitle: "nftables is enabled",
			wantSev:   scan.SeverityPass,
			backend:   "nftables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw := newFirewall("linux", tt.cmds.run, tt.cmds.lookPath)

			res, err := fw.Execute(context.Background())
			require.NoError(t, err)
			require.NotEmpty(t, res.Findings)
			assert.Equal(t, tt.wantTitle, res.Findings[0].Title)
			assert.Equal(t, tt.wantSev, res.Findings[0].Severity)
			assert.Equal(t, tt.backend, res.RawData["backend"])
		})
	}
}

func TestFirewallWindowsProfiles(t *testing.T) {
	out := `
Domain Profile Settings:
----------------------------------------------------------------------
State                                 ON

Private Profile Settings:
----------------------------------------------------------------------
State                                 OFF

Public Profile Settings:
----------------------------------------------------------------------
State                                 ON
Ok.
`
	cmds := &fakeCommands{
		installed: map[string]bool{"netsh": true},
		outputs:   map[string]string{"netsh": out},
	}
	fw := newFirewall("windows", cmds.run, cmds.lookPath)

	res, err := fw.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Windows Defender Firewall is enabled", "Private profile is off"}, titles(res))
	assert.Equal(t, []scan.Severity{scan.SeverityPass, scan.SeverityWarning}, severities(res))
	assert.Equal(t, map[string]bool{"Domain": true, "Private": false, "Public": true}, res.RawData["profiles"])
}

func TestFirewallNoTool(t *testing.T) {
	cmds := &fakeCommands{}
	fw := newFirewall("linux", cmds.run, cmds.lookPath)

	_, err := fw.Execute(context.Background())
	require.Error(t, err)
	assert.Empty(t, cmds.ran)
}

func TestFirewallToolError(t *testing.T) {
	cmds := &fakeCommands{
		installed: map[string]bool{"ufw": true},
		errs:      map[string]error{"ufw": errors.New("permission denied")},
	}
	fw := newFirewall("linux", cmds.run, cmds.lookPath)

	_, err := fw.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ufw: permission denied")
}

func TestParseSocketFilter(t *testing.T) {
	assert.True(t, parseSocketFilter("Firewall is enabled. (State = 1)").enabled)
	assert.False(t, parseSocketFilter("Firewall is disabled. (State = 0)").enabled)
}

func listen(ip string, port uint32) net.ConnectionStat {
	return net.ConnectionStat{Status: "LISTEN", Laddr: net.Addr{IP: ip, Port: port}}
}

func TestPorts(t *testing.T) {
	risky := config.Default().Security.RiskyPorts

	t.Run("risky ports", func(t *testing.T) {
		src := &sysinfotest.Fake{Conns: []net.ConnectionStat{
			listen("0.0.0.0", 22),
			listen("0.0.0.0", 3389),
			listen("::", 3389),
			listen("0.0.0.0", 445),
			{Status: "ESTABLISHED", Laddr: net.Addr{IP: "10.0.0.2", Port: 23}},
		}}

		res, err := NewPorts(src, risky).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Port 445 (SMB) is open", "Port 3389 (RDP) is open"}, titles(res))
		assert.Equal(t, []scan.Severity{scan.SeverityWarning, scan.SeverityWarning}, severities(res))
		assert.Contains(t, res.Findings[1].Recommendation, "Remote Desktop")
		assert.Equal(t, []int{22, 445, 3389}, res.RawData["listening_ports"])
	})

	t.Run("nothing risky", func(t *testing.T) {
		src := &sysinfotest.Fake{Conns: []net.ConnectionStat{listen("127.0.0.1", 8080)}}

		res, err := NewPorts(src, risky).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []scan.Severity{scan.SeverityPass}, severities(res))
		assert.Equal(t, "No risky ports open", res.Findings[0].Title)
	})

	t.Run("connection error", func(t *testing.T) {
		src := &sysinfotest.Fake{ConnsErr: errors.New("access denied")}

		_, err := NewPorts(src, risky).Execute(context.Background())
		require.Error(t, err)
	})
}

func TestProcesses(t *testing.T) {
	sec := config.Default().Security

	tests := []struct {
		name   string
		procs  []sysinfo.ProcessInfo
		titles []string
	}{
		{
			name: "clean",
			procs: []sysinfo.ProcessInfo{
				{PID: 1, Name: "init", Exe: "/sbin/init", CPUPercent: 0.1, MemoryPercent: 0.2},
				{PID: 200, Name: "sshd", Exe: "/usr/sbin/sshd", CPUPercent: 1, MemoryPercent: 0.5},
			},
			titles: []string{"No suspicious processes"},
		},
		{
			name: "heavy sorted by cpu",
			procs: []sysinfo.ProcessInfo{
				{PID: 10, Name: "java", Exe: "/usr/bin/java", CPUPercent: 20, MemoryPercent: 35},
				{PID: 11, Name: "miner", Exe: "/usr/local/bin/miner", CPUPercent: 99, MemoryPercent: 1},
			},
			titles: []string{"High resource usage: miner", "High resource usage: java"},
		},
		{
			name: "temporary locations",
			procs: []sysinfo.ProcessInfo{
				{PID: 30, Name: "x", Exe: "/tmp/x"},
				{PID: 31, Name: "upd.exe", Exe: `C:\Users\bob\AppData\Local\Temp\upd.exe`},
				{PID: 32, Name: "tool", Exe: "/home/bob/tmp/tool"},
			},
			titles: []string{
				"Process running from temporary location: x",
				"Process running from temporary location: upd.exe",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &sysinfotest.Fake{Procs: tt.procs}

			res, err := NewProcesses(src, sec.ProcessCPUWarn, sec.ProcessMemoryWarn).Execute(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.titles, titles(res))
			assert.Equal(t, len(tt.procs), res.RawData["process_count"])
		})
	}
}

func TestUsers(t *testing.T) {
	t.Run("sessions", func(t *testing.T) {
		src := &sysinfotest.Fake{UserList: []host.UserStat{
			{User: "alice", Terminal: "tty1"},
			{User: "root", Terminal: "pts/0", Host: "203.0.113.9", Started: 1700000000},
			{User: "alice", Terminal: "pts/1", Host: "10.0.0.5"},
		}}

		res, err := NewUsers(src).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []scan.Severity{scan.SeverityInfo, scan.SeverityWarning, scan.SeverityInfo}, severities(res))
		assert.Equal(t, "Remote administrator session: root", res.Findings[1].Title)
		assert.Contains(t, res.Findings[1].Description, "2023-11-14T22:13:20Z")
		assert.Equal(t, 3, res.RawData["session_count"])
		assert.Equal(t, 2, res.RawData["user_count"])
	})

	t.Run("no sessions", func(t *testing.T) {
		res, err := NewUsers(&sysinfotest.Fake{}).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "No active sessions", res.Findings[0].Title)
	})

	t.Run("error", func(t *testing.T) {
		_, err := NewUsers(&sysinfotest.Fake{UsersErr: errors.New("utmp unreadable")}).Execute(context.Background())
		require.Error(t, err)
	})
}

func TestProbeIdentity(t *testing.T) {
	src := &sysinfotest.Fake{}
	probes := []scan.Probe{
		NewFirewall(),
		NewPorts(src, nil),
		NewProcesses(src, 50, 10),
		NewUsers(src),
	}
	keys := make([]string, 0, len(probes))
	for _, p := range probes {
		assert.Equal(t, scan.CategorySecurity, p.Category())
		keys = append(keys, scan.NormalizeName(p.Name()))
	}
	assert.Equal(t, []string{"firewall", "ports", "processes", "users"}, keys)
}
