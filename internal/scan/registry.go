package scan

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	diagerr "github.com/felixgeelhaar/sysprobe/internal/errors"
)

// Registry holds probes addressable by normalized name and answers which
// probes apply to a scan mode.
//
// Probes keep their registration order. That order is the order a scan runs
// them in and therefore the order of a Report's results.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	probes map[string]Probe
	modes  map[string][]string
}

// NewRegistry creates an empty registry with the standard mode table.
func NewRegistry() *Registry {
	return &Registry{
		probes: make(map[string]Probe),
		modes:  DefaultModes(),
	}
}

// Register stores a probe under its normalized name. Registering a second
// probe under an existing key fails with a REGISTRY-001 error; use Replace to
// override on purpose.
func (r *Registry) Register(p Probe) error {
	if strings.TrimSpace(p.Name()) == "" {
		return diagerr.New(diagerr.ErrCodeRegistryInvalid, "probe name must not be empty")
	}
	key := NormalizeName(p.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.probes[key]; exists {
		return diagerr.NewDuplicateProbeError(key)
	}
	r.order = append(r.order, key)
	r.probes[key] = p
	return nil
}

// RegisterAll registers probes in order and stops at the first error.
func (r *Registry) RegisterAll(probes ...Probe) error {
	for _, p := range probes {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Replace stores a probe under its normalized name, overwriting any previous
// registration. An overwritten probe keeps its original position.
func (r *Registry) Replace(p Probe) {
	key := NormalizeName(p.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.probes[key]; !exists {
		r.order = append(r.order, key)
	}
	r.probes[key] = p
}

// Get looks a probe up by name. The name is normalized first.
func (r *Registry) Get(name string) (Probe, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.probes[NormalizeName(name)]
	return p, ok
}

// Names returns the registry keys in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Probes returns all probes in registration order.
func (r *Registry) Probes() []Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Probe, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.probes[key])
	}
	return out
}

// Count returns the number of registered probes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// DefineMode adds or replaces a mode. An empty allow-list selects every
// probe, like the full mode.
func (r *Registry) DefineMode(name string, allow []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return diagerr.New(diagerr.ErrCodeModeInvalid, "mode name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(allow) == 0 {
		r.modes[name] = nil
		return nil
	}
	r.modes[name] = append([]string(nil), allow...)
	return nil
}

// HasMode reports whether name is a known mode.
func (r *Registry) HasMode(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modes[name]
	return ok
}

// Modes returns the known mode names: standard modes first, then custom
// modes sorted by name.
func (r *Registry) Modes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modes))
	standard := make(map[string]bool)
	for _, m := range StandardModes() {
		if _, ok := r.modes[m]; ok {
			names = append(names, m)
			standard[m] = true
		}
	}
	var custom []string
	for m := range r.modes {
		if !standard[m] {
			custom = append(custom, m)
		}
	}
	sort.Strings(custom)
	return append(names, custom...)
}

// ModeAllowList returns the allow-list of a mode. all is true when the mode
// selects every probe; ok is false for unknown modes.
func (r *Registry) ModeAllowList(name string) (allow []string, all bool, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list, ok := r.modes[name]
	if !ok {
		return nil, false, false
	}
	return append([]string(nil), list...), len(list) == 0, true
}

// SelectForMode returns the probes a mode applies to, in registration order.
// A probe is selected when its key or its category is in the mode's
// allow-list. An unknown mode selects nothing; it is not an error.
func (r *Registry) SelectForMode(mode string) []Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	allow, ok := r.modes[mode]
	if !ok {
		return []Probe{}
	}

	set := allowSet(allow)
	selected := make([]Probe, 0, len(r.order))
	for _, key := range r.order {
		p := r.probes[key]
		if set == nil {
			selected = append(selected, p)
			continue
		}
		if _, hit := set[key]; hit {
			selected = append(selected, p)
			continue
		}
		if _, hit := set[string(p.Category())]; hit {
			selected = append(selected, p)
		}
	}
	return selected
}

// String describes the registry for debugging.
func (r *Registry) String() string {
	return fmt.Sprintf("Registry(%d probes, %d modes)", r.Count(), len(r.Modes()))
}
