package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

// MaxNameLength is the longest accepted character name, in characters
const MaxNameLength = 100

// NarrativeField names a free-text field with a word range
type NarrativeField string

// Narrative fields, in report order
const (
	FieldBackstory   NarrativeField = "backstory"
	FieldAppearance  NarrativeField = "appearance"
	FieldPersonality NarrativeField = "personality"
	FieldIdeals      NarrativeField = "ideals"
	FieldBonds       NarrativeField = "bonds"
	FieldFlaws       NarrativeField = "flaws"
)

// WordRange is an inclusive word-count range
type WordRange struct {
	Min int
	Max int
}

// NarrativeFields lists the fields in report order
var NarrativeFields = []NarrativeField{FieldBackstory, FieldAppearance, FieldPersonality, FieldIdeals, FieldBonds, FieldFlaws}

// NarrativeRanges holds the word range of each field
var NarrativeRanges = map[NarrativeField]WordRange{
	FieldBackstory:   {Min: 200, Max: 750},
	FieldAppearance:  {Min: 20, Max: 450},
	FieldPersonality: {Min: 0, Max: 250},
	FieldIdeals:      {Min: 0, Max: 250},
	FieldBonds:       {Min: 0, Max: 250},
	FieldFlaws:       {Min: 0, Max: 250},
}

// Label is the display name used in messages
func (f NarrativeField) Label() string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// NarrativeText returns the character's text for a field
func NarrativeText(c *entities.Character, f NarrativeField) string {
	switch f {
	case FieldBackstory:
		return c.Backstory
	case FieldAppearance:
		return c.Appearance
	case FieldPersonality:
		return c.Personality
	case FieldIdeals:
		return c.Ideals
	case FieldBonds:
		return c.Bonds
	case FieldFlaws:
		return c.Flaws
	}
	return ""
}

// SetNarrative stores text in a narrative field. Word counts are checked
// by the validator, not here, so partial drafts can be kept.
func SetNarrative(c *entities.Character, f NarrativeField, text string) (*entities.Character, error) {
	out := c.Clone()
	switch f {
	case FieldBackstory:
		out.Backstory = text
	case FieldAppearance:
		out.Appearance = text
	case FieldPersonality:
		out.Personality = text
	case FieldIdeals:
		out.Ideals = text
	case FieldBonds:
		out.Bonds = text
	case FieldFlaws:
		out.Flaws = text
	default:
		return c, errors.Invalid("narrative", "unknown narrative field %q", f)
	}
	return out, nil
}

// SetName stores the character name
func SetName(c *entities.Character, name string) (*entities.Character, error) {
	out := c.Clone()
	out.Name = name
	return out, nil
}

// CheckName returns the problems with a character name, if any
func CheckName(name string) []string {
	if strings.TrimSpace(name) == "" {
		return []string{"Name is required"}
	}
	var problems []string
	if len([]rune(name)) > MaxNameLength {
		problems = append(problems, fmt.Sprintf("Name must be no more than %d characters", MaxNameLength))
	}
	onlyDigits := true
	for _, r := range name {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			onlyDigits = false
			break
		}
	}
	if onlyDigits {
		problems = append(problems, "Name cannot be only numbers")
	}
	return problems
}

func validateNarrative(c *entities.Character) []ValidationError {
	var errs []ValidationError
	for _, f := range NarrativeFields {
		r := NarrativeRanges[f]
		n := WordCount(NarrativeText(c, f))
		switch {
		case n < r.Min:
			errs = append(errs, ValidationError{
				Section: SectionNarrative, Field: string(f),
				Message: fmt.Sprintf("%s must be at least %d words", f.Label(), r.Min),
				Kind:    KindRange, Priority: PriorityHigh,
			})
		case n > r.Max:
			errs = append(errs, ValidationError{
				Section: SectionNarrative, Field: string(f),
				Message: fmt.Sprintf("%s must be no more than %d words", f.Label(), r.Max),
				Kind:    KindRange, Priority: PriorityHigh,
			})
		}
	}
	return errs
}

func validateName(c *entities.Character) []ValidationError {
	var errs []ValidationError
	for _, msg := range CheckName(c.Name) {
		kind := KindRange
		if strings.TrimSpace(c.Name) == "" {
			kind = KindStructural
		}
		errs = append(errs, ValidationError{Section: SectionIdentity, Field: "name", Message: msg, Kind: kind, Priority: PriorityHigh})
	}
	return errs
}
