package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// Users lists logged-in sessions and flags remote administrator logins.
type Users struct {
	scan.Base
	src sysinfo.Source
}

// NewUsers creates the Users probe.
func NewUsers(src sysinfo.Source) *Users {
	return &Users{
		Base: scan.NewBase("Users", scan.CategorySecurity).WithDescription("Logged-in user sessions"),
		src:  src,
	}
}

// Execute implements scan.Probe.
func (u *Users) Execute(ctx context.Context) (*scan.Result, error) {
	sessions, err := u.src.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	res := u.NewResult().WithRaw("session_count", len(sessions))
	if len(sessions) == 0 {
		res.Add(u.Finding("No active sessions", "No interactive user sessions found", scan.SeverityInfo))
		return res, nil
	}

	names := map[string]bool{}
	for _, s := range sessions {
		names[s.User] = true
		origin := "local"
		if s.Host != "" {
			origin = "from " + s.Host
		}
		desc := fmt.Sprintf("%s on %s (%s)", s.User, s.Terminal, origin)
		if s.Started > 0 {
			desc += ", since " + time.Unix(int64(s.Started), 0).UTC().Format(time.RFC3339)
		}

		if isAdminAccount(s.User) && s.Host != "" {
			res.Add(u.Finding(fmt.Sprintf("Remote administrator session: %s", s.User), desc, scan.SeverityWarning).
				WithComponent(s.User).
				WithDetail("host", s.Host).
				WithRecommendation("Log in as an unprivileged user and elevate with sudo instead"))
			continue
		}
		res.Add(u.Finding(fmt.Sprintf("Session: %s", s.User), desc, scan.SeverityInfo).WithComponent(s.User))
	}
	res.WithRaw("user_count", len(names))
	return res, nil
}

func isAdminAccount(name string) bool {
	switch strings.ToLower(name) {
	case "root", "administrator", "admin":
		return true
	}
	return false
}
