package scan

import (
	"context"
	"sync/atomic"
)

// stubProbe is a configurable probe that counts how often it is consulted.
type stubProbe struct {
	Base
	available *bool
	execute   func(ctx context.Context) (*Result, error)

	availableCalls atomic.Int32
	executeCalls   atomic.Int32
}

func newStub(name string, category Category) *stubProbe {
	return &stubProbe{Base: NewBase(name, category)}
}

func (s *stubProbe) withAvailable(ok bool) *stubProbe {
	s.available = &ok
	return s
}

func (s *stubProbe) withExecute(fn func(ctx context.Context) (*Result, error)) *stubProbe {
	s.execute = fn
	return s
}

// withFindings makes Execute return a successful result carrying findings
// of the given severities.
func (s *stubProbe) withFindings(severities ...Severity) *stubProbe {
	return s.withExecute(func(context.Context) (*Result, error) {
		r := s.NewResult()
		for _, sev := range severities {
			r.Add(s.Finding(string(sev)+" finding", "generated by stub", sev))
		}
		return r, nil
	})
}

func (s *stubProbe) Available(env Environment) bool {
	s.availableCalls.Add(1)
	if s.available != nil {
		return *s.available
	}
	return s.Base.Available(env)
}

func (s *stubProbe) Execute(ctx context.Context) (*Result, error) {
	s.executeCalls.Add(1)
	if s.execute != nil {
		return s.execute(ctx)
	}
	return s.NewResult(), nil
}

// progressEvent records one ProgressFunc invocation.
type progressEvent struct {
	current int
	total   int
	label   string
}

type progressRecorder struct {
	events []progressEvent
}

func (p *progressRecorder) record(current, total int, label string) {
	p.events = append(p.events, progressEvent{current: current, total: total, label: label})
}

// resolverOf resolves exactly the given dependencies.
func resolverOf(deps ...string) DependencyResolver {
	set := make(map[string]bool, len(deps))
	for _, d := range deps {
		set[d] = true
	}
	return ResolverFunc(func(dep string) bool { return set[dep] })
}
