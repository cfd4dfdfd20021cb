// Package privilege reports whether the process runs with elevated rights.
package privilege

// Status describes the effective privilege level of the process.
type Status struct {
	// Admin is true for root on Unix and an elevated token on Windows.
	Admin bool

	// Forced is true when Admin was turned off by the caller.
	Forced bool
}

// IsAdmin reports whether the current process has elevated privileges.
func IsAdmin() bool {
	return isAdmin()
}

// Detect returns the privilege status, honoring a caller request to run
// without admin rights even when they are available.
func Detect(noAdmin bool) Status {
	if noAdmin {
		return Status{Admin: false, Forced: isAdmin()}
	}
	return Status{Admin: isAdmin()}
}

// Label returns a short description for display.
func (s Status) Label() string {
	switch {
	case s.Admin:
		return "administrator"
	case s.Forced:
		return "standard user (admin disabled)"
	default:
		return "standard user"
	}
}
