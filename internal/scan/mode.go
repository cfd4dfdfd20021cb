package scan

// Standard scan modes.
const (
	ModeQuick    = "quick"
	ModeFull     = "full"
	ModeHardware = "hardware"
	ModeSecurity = "security"
	ModeNetwork  = "network"
)

// StandardModes returns the built-in mode names in display order.
func StandardModes() []string {
	return []string{ModeQuick, ModeFull, ModeHardware, ModeSecurity, ModeNetwork}
}

// DefaultModes returns a fresh copy of the built-in mode table. Each entry
// is an allow-list of probe keys or category names; a nil list selects every
// registered probe.
func DefaultModes() map[string][]string {
	return map[string][]string{
		ModeQuick: {"cpu", "memory", "disk_usage", "antivirus", "firewall"},
		ModeFull:  nil,
		ModeHardware: {
			"cpu", "gpu", "memory", "disk_usage", "storage", "battery",
			"motherboard", "network_adapters", "peripherals",
		},
		ModeSecurity: {
			"antivirus", "firewall", "windows_update", "ports", "processes",
			"startup", "services", "registry", "users", "bitlocker",
			"secure_boot", "uac", "password_policy", "event_log",
		},
		ModeNetwork: {"network_adapters", "connectivity", "wifi", "dns", "speed_test"},
	}
}

// allowSet turns an allow-list into a lookup set. A nil result means "all".
func allowSet(allow []string) map[string]struct{} {
	if len(allow) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allow))
	for _, entry := range allow {
		set[NormalizeName(entry)] = struct{}{}
	}
	return set
}
