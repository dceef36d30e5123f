package engine

import "sort"

// Kind classifies a validation error
type Kind string

// Validation error kinds
const (
	// KindStructural is a missing required selection
	KindStructural Kind = "structural"
	// KindCombinatorial is a selection that breaks a cross-field rule
	KindCombinatorial Kind = "combinatorial"
	// KindBudget is a count above or below its allowance
	KindBudget Kind = "budget"
	// KindRange is a word count or number outside its bounds
	KindRange Kind = "range"
)

// Priority orders validation errors; high blocks submission
type Priority string

// Priorities
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Report sections
const (
	SectionIdentity   = "identity"
	SectionRace       = "race"
	SectionBackground = "background"
	SectionClass      = "class"
	SectionAbilities  = "abilities"
	SectionFeats      = "feats"
	SectionEquipment  = "equipment"
	SectionSpells     = "spells"
	SectionNarrative  = "narrative"
)

// ValidationError is one diagnostic produced by the validator
type ValidationError struct {
	Section  string   `json:"section"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Kind     Kind     `json:"kind"`
	Priority Priority `json:"priority"`
}

// Report is the ordered output of Validate. Errors are sorted by priority
// and keep resolver order within a priority. Overlapping errors from
// different resolvers are all kept.
type Report struct {
	Errors []ValidationError `json:"errors"`
}

// Blocking reports whether any error prevents submission
func (r *Report) Blocking() bool {
	for _, e := range r.Errors {
		if e.Priority == PriorityHigh {
			return true
		}
	}
	return false
}

// ByPriority returns the errors with the given priority
func (r *Report) ByPriority(p Priority) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Priority == p {
			out = append(out, e)
		}
	}
	return out
}

// BySection returns the errors of one section
func (r *Report) BySection(section string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Section == section {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the error messages in report order
func (r *Report) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}

func newReport(errs []ValidationError) *Report {
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Priority.rank() < errs[j].Priority.rank()
	})
	return &Report{Errors: errs}
}
