//go:build !unix && !windows

package privilege

func isAdmin() bool {
	return false
}
