// Package scan provides the diagnostics scan core.
//
// The scan package follows the same pluggable-check pattern throughout:
//   - Probe interface for independent diagnostic units
//   - Run wrapper giving every probe uniform timing and fault containment
//   - Registry keyed by normalized probe name, filtered by scan mode
//   - Engine driving a sequential scan and emitting progress
//   - Report aggregating per-probe Results and their Findings
//
// Example usage:
//
//	registry := scan.NewRegistry()
//	for _, p := range probes.All(cfg, sysinfo.Host()) {
//	    if err := registry.Register(p); err != nil {
//	        return err
//	    }
//	}
//
//	engine := scan.NewEngine(registry, scan.Environment{Admin: privilege.IsAdmin()})
//	report := engine.RunScan(ctx, scan.ModeQuick, func(current, total int, label string) {
//	    fmt.Printf("[%d/%d] %s\n", current, total, label)
//	})
package scan

import (
	"context"
	"os/exec"
	"strings"
)

// Probe is a unit of diagnostic work producing findings about one subsystem.
//
// Implementations embed Base for the identity metadata and the default
// availability check, and supply Execute. Probes must not keep state
// between runs.
type Probe interface {
	// Name is the display label. Its normalized form is the registry key.
	Name() string

	// Category is used for mode filtering and report grouping.
	Category() Category

	// RequiresAdmin declares that the probe needs elevated privileges.
	RequiresAdmin() bool

	// Dependencies lists logical runtime capabilities that must resolve.
	Dependencies() []string

	// Available reports whether the probe can run in env. It must not have
	// side effects.
	Available(env Environment) bool

	// Execute gathers data and returns findings. It may return an error or
	// panic; Run contains both. It should honor ctx cancellation.
	Execute(ctx context.Context) (*Result, error)
}

// DependencyResolver decides whether a named runtime capability exists.
type DependencyResolver interface {
	Resolve(dependency string) bool
}

// ResolverFunc adapts a function to DependencyResolver.
type ResolverFunc func(dependency string) bool

// Resolve calls f(dependency).
func (f ResolverFunc) Resolve(dependency string) bool {
	return f(dependency)
}

// PathResolver resolves dependencies as executables on PATH.
var PathResolver DependencyResolver = ResolverFunc(func(dependency string) bool {
	_, err := exec.LookPath(dependency)
	return err == nil
})

// Environment describes the run conditions shared by every probe of a scan.
// It is read-only for the duration of a scan.
type Environment struct {
	// Admin is true when the process runs with elevated privileges.
	Admin bool

	// Resolver resolves probe dependencies. Nil means PathResolver.
	Resolver DependencyResolver
}

// Resolve resolves a dependency with the configured resolver.
func (e Environment) Resolve(dependency string) bool {
	if e.Resolver == nil {
		return PathResolver.Resolve(dependency)
	}
	return e.Resolver.Resolve(dependency)
}

// NormalizeName turns a probe name into its registry key: lower-cased,
// spaces replaced by underscores. Surrounding spaces are kept, so " CPU"
// keys to "_cpu".
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Requirements is the part of a probe that decides availability.
type Requirements interface {
	RequiresAdmin() bool
	Dependencies() []string
}

// CheckAvailable is the standard availability rule: false when admin is
// required but not granted, or when any dependency fails to resolve.
func CheckAvailable(p Requirements, env Environment) bool {
	if p.RequiresAdmin() && !env.Admin {
		return false
	}
	for _, dep := range p.Dependencies() {
		if !env.Resolve(dep) {
			return false
		}
	}
	return true
}

// Base carries the static identity of a probe. Embed it in probe
// implementations:
//
//	type CPUProbe struct {
//	    scan.Base
//	}
//
//	func NewCPUProbe() *CPUProbe {
//	    return &CPUProbe{Base: scan.NewBase("CPU", scan.CategoryHardware)}
//	}
type Base struct {
	name          string
	category      Category
	description   string
	requiresAdmin bool
	dependencies  []string
}

// NewBase creates probe metadata with the given name and category.
func NewBase(name string, category Category) Base {
	return Base{name: name, category: category}
}

// WithAdmin returns a copy of b that requires elevated privileges.
func (b Base) WithAdmin() Base {
	b.requiresAdmin = true
	return b
}

// WithDependencies returns a copy of b with the given dependencies.
func (b Base) WithDependencies(deps ...string) Base {
	b.dependencies = append([]string(nil), deps...)
	return b
}

// WithDescription returns a copy of b with a human-readable description.
func (b Base) WithDescription(description string) Base {
	b.description = description
	return b
}

// Name returns the display name.
func (b Base) Name() string { return b.name }

// Category returns the probe category.
func (b Base) Category() Category { return b.category }

// Description returns the human-readable description.
func (b Base) Description() string { return b.description }

// RequiresAdmin reports whether elevated privileges are required.
func (b Base) RequiresAdmin() bool { return b.requiresAdmin }

// Dependencies returns a copy of the declared dependencies.
func (b Base) Dependencies() []string {
	return append([]string(nil), b.dependencies...)
}

// Available applies CheckAvailable to the metadata in b.
func (b Base) Available(env Environment) bool {
	return CheckAvailable(b, env)
}

// Key returns the normalized registry key.
func (b Base) Key() string {
	return NormalizeName(b.name)
}

// NewResult creates an empty successful result owned by this probe.
func (b Base) NewResult() *Result {
	return NewResult(b.name, b.category)
}

// Finding creates a finding in this probe's category with the probe name as
// component.
func (b Base) Finding(title, description string, severity Severity) Finding {
	return NewFinding(b.category, title, description, severity).WithComponent(b.name)
}
