package scan

// Finding is a single classified observation produced by a probe.
//
// Findings are values. The With* methods return modified copies and never
// touch the receiver, so a Finding handed to a Result cannot change later.
type Finding struct {
	Title          string
	Description    string
	Severity       Severity
	Category       Category
	Component      string
	Recommendation string
	Details        map[string]any
}

// NewFinding creates a finding. Component is left empty; Base.Finding fills
// it with the probe name.
func NewFinding(category Category, title, description string, severity Severity) Finding {
	return Finding{
		Title:       title,
		Description: description,
		Severity:    severity,
		Category:    category,
		Details:     map[string]any{},
	}
}

// WithComponent returns a copy of f with the component set.
func (f Finding) WithComponent(component string) Finding {
	f.Details = cloneMap(f.Details)
	f.Component = component
	return f
}

// WithRecommendation returns a copy of f with an actionable recommendation.
func (f Finding) WithRecommendation(recommendation string) Finding {
	f.Details = cloneMap(f.Details)
	f.Recommendation = recommendation
	return f
}

// WithDetail returns a copy of f with key set in its details.
func (f Finding) WithDetail(key string, value any) Finding {
	f.Details = cloneMap(f.Details)
	f.Details[key] = value
	return f
}

// HasRecommendation reports whether the finding carries a recommendation.
func (f Finding) HasRecommendation() bool {
	return f.Recommendation != ""
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
