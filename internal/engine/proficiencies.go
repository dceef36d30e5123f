package engine

import (
	"fmt"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// Bucket is where a selected proficiency is counted
type Bucket string

// Buckets, in classification precedence
const (
	BucketFixed  Bucket = "fixed"
	BucketClass  Bucket = "class"
	BucketGlobal Bucket = "global"
	BucketNone   Bucket = "none"
)

// ProficiencyPool is the derived state of one proficiency kind. It is
// recomputed from the character on demand and never stored.
type ProficiencyPool struct {
	Kind                  entities.ProficiencyKind `json:"kind"`
	Fixed                 []string                 `json:"fixed"`
	ClassBudget           int                      `json:"class_budget"`
	GlobalBudget          int                      `json:"global_budget"`
	EligibleClassChoices  []string                 `json:"eligible_class_choices"`
	EligibleGlobalChoices []string                 `json:"eligible_global_choices"`
	SelectedClassChoices  []string                 `json:"selected_class_choices"`
	SelectedGlobalChoices []string                 `json:"selected_global_choices"`
	// Unclassified holds selections that fit no bucket
	Unclassified []string `json:"unclassified,omitempty"`
	// MissingFixed holds fixed entries absent from the selection
	MissingFixed []string `json:"missing_fixed,omitempty"`

	fixed, class, global map[string]bool
}

// Classify places id in a bucket: fixed first, then class-eligible,
// then global-eligible.
func (p *ProficiencyPool) Classify(id string) Bucket {
	switch {
	case p.fixed[id]:
		return BucketFixed
	case p.class[id]:
		return BucketClass
	case p.global[id]:
		return BucketGlobal
	default:
		return BucketNone
	}
}

// ClassRemaining is the unspent class budget
func (p *ProficiencyPool) ClassRemaining() int {
	return p.ClassBudget - len(p.SelectedClassChoices)
}

// GlobalRemaining is the unspent global budget
func (p *ProficiencyPool) GlobalRemaining() int {
	return p.GlobalBudget - len(p.SelectedGlobalChoices)
}

type grantSources struct {
	race       *rules.RaceDefinition
	subrace    *rules.SubraceDefinition
	background *rules.BackgroundDefinition
	primary    *rules.ClassDefinition
}

func lookupSources(c *entities.Character, t *rules.Tables) grantSources {
	var src grantSources
	if race, err := t.Race(c.RaceID); err == nil {
		src.race = race
		if sub, ok := race.Subrace(c.SubraceID); ok {
			src.subrace = sub
		}
	}
	if bg, err := t.Background(c.BackgroundID); err == nil {
		src.background = bg
	}
	if pc := c.PrimaryClass(); pc != nil {
		if cls, err := t.Class(pc.ClassID); err == nil {
			src.primary = cls
		}
	}
	return src
}

// FixedProficiencies returns the entries granted unconditionally for a
// kind: race, subrace and background grants, plus the primary class's
// tools. The artisan's-tools tag is a choice, not an entry.
func FixedProficiencies(c *entities.Character, t *rules.Tables, kind entities.ProficiencyKind) []string {
	src := lookupSources(c, t)
	var ids []string
	switch kind {
	case entities.KindSkills:
		if src.race != nil {
			ids = append(ids, src.race.Skills...)
		}
		if src.subrace != nil {
			ids = append(ids, src.subrace.Skills...)
		}
		if src.background != nil {
			ids = append(ids, src.background.Skills...)
		}
	case entities.KindTools:
		if src.race != nil {
			ids = append(ids, src.race.Tools...)
		}
		if src.subrace != nil {
			ids = append(ids, src.subrace.Tools...)
		}
		if src.background != nil {
			ids = append(ids, src.background.Tools...)
		}
		if src.primary != nil {
			ids = append(ids, src.primary.Tools...)
		}
	case entities.KindLanguages:
		if src.race != nil {
			ids = append(ids, src.race.Languages...)
		}
		if src.subrace != nil {
			ids = append(ids, src.subrace.Languages...)
		}
	}
	out := ids[:0:0]
	for _, id := range ids {
		if id != rules.ArtisansToolsTag {
			out = append(out, id)
		}
	}
	return entities.NormalizeSet(out)
}

func globalBudget(c *entities.Character, t *rules.Tables, kind entities.ProficiencyKind, src grantSources) int {
	n := 0
	switch kind {
	case entities.KindSkills:
		if src.race != nil {
			n += src.race.SkillChoices
		}
		for i, e := range c.Classes {
			if i == 0 {
				continue
			}
			if cls, err := t.Class(e.ClassID); err == nil && cls.MulticlassSkillGrant {
				n++
			}
		}
	case entities.KindTools:
		var grants [][]string
		if src.race != nil {
			grants = append(grants, src.race.Tools)
		}
		if src.subrace != nil {
			grants = append(grants, src.subrace.Tools)
		}
		if src.background != nil {
			grants = append(grants, src.background.Tools)
		}
		if src.primary != nil {
			grants = append(grants, src.primary.Tools)
		}
		for _, g := range grants {
			for _, id := range g {
				if id == rules.ArtisansToolsTag {
					n++
				}
			}
		}
	case entities.KindLanguages:
		if src.race != nil {
			n += src.race.LanguageChoices
		}
		if src.subrace != nil {
			n += src.subrace.LanguageChoices
		}
		if src.background != nil {
			n += src.background.LanguageChoices
		}
	}
	return n
}

// ResolvePool derives the pool for one proficiency kind
func ResolvePool(c *entities.Character, t *rules.Tables, kind entities.ProficiencyKind) *ProficiencyPool {
	src := lookupSources(c, t)
	p := &ProficiencyPool{
		Kind:         kind,
		Fixed:        FixedProficiencies(c, t, kind),
		GlobalBudget: globalBudget(c, t, kind, src),
		class:        make(map[string]bool),
		global:       make(map[string]bool),
	}
	p.fixed = toSet(p.Fixed)

	if kind == entities.KindSkills && src.primary != nil {
		p.ClassBudget = src.primary.SkillChoiceCount
		for _, s := range src.primary.SkillList {
			if !p.fixed[s] {
				p.EligibleClassChoices = append(p.EligibleClassChoices, s)
				p.class[s] = true
			}
		}
		p.EligibleClassChoices = entities.NormalizeSet(p.EligibleClassChoices)
	}
	for _, id := range t.Known(kind) {
		if !p.fixed[id] && !p.class[id] {
			p.EligibleGlobalChoices = append(p.EligibleGlobalChoices, id)
			p.global[id] = true
		}
	}

	selected := toSet(c.Selection(kind))
	for _, id := range p.Fixed {
		if !selected[id] {
			p.MissingFixed = append(p.MissingFixed, id)
		}
	}
	for _, id := range c.Selection(kind) {
		switch p.Classify(id) {
		case BucketClass:
			p.SelectedClassChoices = append(p.SelectedClassChoices, id)
		case BucketGlobal:
			p.SelectedGlobalChoices = append(p.SelectedGlobalChoices, id)
		case BucketNone:
			p.Unclassified = append(p.Unclassified, id)
		}
	}
	return p
}

// SelectProficiency adds id to a selection set. Fixed entries are always
// accepted; other entries need room in their bucket. Tools outside the
// fixed set must be artisan's tools.
func SelectProficiency(c *entities.Character, t *rules.Tables, kind entities.ProficiencyKind, id string) (*entities.Character, error) {
	field := string(kind)
	if !t.IsKnown(kind, id) {
		return c, errors.Invalid(field, "unknown %s entry %q", kind, id)
	}
	for _, s := range c.Selection(kind) {
		if s == id {
			return c, nil
		}
	}
	pool := ResolvePool(c, t, kind)
	switch pool.Classify(id) {
	case BucketFixed:
	case BucketClass:
		if pool.ClassRemaining() <= 0 {
			return c, errors.Rejected(field, "class %s budget of %d already spent", kind, pool.ClassBudget)
		}
	case BucketGlobal:
		if kind == entities.KindTools && !rules.IsArtisansTool(id) {
			return c, errors.Rejected(field, "%q is not an artisan's tool", id)
		}
		if pool.GlobalRemaining() <= 0 {
			return c, errors.Rejected(field, "%s budget of %d already spent", kind, pool.GlobalBudget)
		}
	default:
		return c, errors.Rejected(field, "%q is not an eligible %s choice", id, kind)
	}
	out := c.Clone()
	out.SetSelection(kind, append(out.Selection(kind), id))
	return out, nil
}

// DeselectProficiency removes id from a selection set. Fixed entries
// cannot be removed while they stay fixed.
func DeselectProficiency(c *entities.Character, t *rules.Tables, kind entities.ProficiencyKind, id string) (*entities.Character, error) {
	for _, f := range FixedProficiencies(c, t, kind) {
		if f == id {
			return c, errors.Rejected(string(kind), "%q is granted by race or background and cannot be removed", id)
		}
	}
	out := c.Clone()
	kept := make([]string, 0, len(c.Selection(kind)))
	for _, s := range c.Selection(kind) {
		if s != id {
			kept = append(kept, s)
		}
	}
	out.SetSelection(kind, kept)
	return out, nil
}

// ValidatePool reports the pool's bookkeeping problems
func ValidatePool(p *ProficiencyPool) []ValidationError {
	section := string(p.Kind)
	var errs []ValidationError
	add := func(msg string, kind Kind, pr Priority) {
		errs = append(errs, ValidationError{Section: section, Field: section, Message: msg, Kind: kind, Priority: pr})
	}
	for _, id := range p.MissingFixed {
		add(fmt.Sprintf("Granted %s entry %q is missing from the selection", p.Kind, id), KindStructural, PriorityHigh)
	}
	for _, id := range p.Unclassified {
		add(fmt.Sprintf("%q is not an eligible %s choice", id, p.Kind), KindCombinatorial, PriorityHigh)
	}
	if p.Kind == entities.KindTools {
		for _, id := range p.SelectedGlobalChoices {
			if !rules.IsArtisansTool(id) {
				add(fmt.Sprintf("%q is not an artisan's tool", id), KindCombinatorial, PriorityHigh)
			}
		}
	}
	switch r := p.ClassRemaining(); {
	case r < 0:
		add(fmt.Sprintf("%d class %s chosen but only %d allowed", len(p.SelectedClassChoices), p.Kind, p.ClassBudget), KindBudget, PriorityMedium)
	case r > 0:
		if open := fillable(r, p.EligibleClassChoices, p.SelectedClassChoices); open > 0 {
			add(fmt.Sprintf("%d class %s choice(s) remaining", open, p.Kind), KindBudget, PriorityLow)
		}
	}
	switch r := p.GlobalRemaining(); {
	case r < 0:
		add(fmt.Sprintf("%d additional %s chosen but only %d allowed", len(p.SelectedGlobalChoices), p.Kind, p.GlobalBudget), KindBudget, PriorityMedium)
	case r > 0:
		if open := fillable(r, p.EligibleGlobalChoices, p.SelectedGlobalChoices); open > 0 {
			add(fmt.Sprintf("%d additional %s choice(s) remaining", open, p.Kind), KindBudget, PriorityLow)
		}
	}
	return errs
}

// fillable caps an unspent budget at the eligible entries still unpicked,
// so a shortfall nobody can fill is not reported.
func fillable(remaining int, eligible, selected []string) int {
	if left := len(eligible) - len(selected); left < remaining {
		return left
	}
	return remaining
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
