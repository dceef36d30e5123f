package engine

import (
	"fmt"
	"sort"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// CorrectionKind names an automatic fix applied by Reconcile
type CorrectionKind string

// Correction kinds
const (
	CorrectionSubclassCleared       CorrectionKind = "subclass-cleared"
	CorrectionFixedRemoved          CorrectionKind = "fixed-removed"
	CorrectionFixedInserted         CorrectionKind = "fixed-inserted"
	CorrectionFeatChoiceDropped     CorrectionKind = "feat-choice-dropped"
	CorrectionFlexibleCleared       CorrectionKind = "flexible-cleared"
	CorrectionRollAssignmentDropped CorrectionKind = "roll-assignment-dropped"
)

// Correction records one change Reconcile made
type Correction struct {
	Kind    CorrectionKind `json:"kind"`
	Field   string         `json:"field"`
	Message string         `json:"message"`
}

// Reconcile brings next in line with the rules after an edit from prev.
// It returns a new character and the corrections it applied; next is not
// modified. prev may be nil for a freshly loaded character.
func Reconcile(prev, next *entities.Character, t *rules.Tables) (*entities.Character, []Correction) {
	out := next.Clone()
	var fixes []Correction
	note := func(kind CorrectionKind, field, format string, args ...interface{}) {
		fixes = append(fixes, Correction{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	for i := range out.Classes {
		e := &out.Classes[i]
		if e.SubclassID == "" {
			continue
		}
		cls, err := t.Class(e.ClassID)
		if err != nil {
			continue
		}
		sub, ok := cls.Subclass(e.SubclassID)
		switch {
		case !ok:
			note(CorrectionSubclassCleared, classField(i, "subclass_id"), "%s cleared: not a %s subclass", e.SubclassID, cls.Name)
			e.SubclassID = ""
		case sub.UnlockLevel > e.Level:
			note(CorrectionSubclassCleared, classField(i, "subclass_id"), "%s cleared: unlocks at %s level %d", sub.Name, cls.Name, sub.UnlockLevel)
			e.SubclassID = ""
		}
	}

	for _, kind := range entities.ProficiencyKinds {
		current := toSet(FixedProficiencies(out, t, kind))
		selection := out.Selection(kind)
		if prev != nil {
			var kept []string
			for _, id := range selection {
				if wasFixed(prev, t, kind, id) && !current[id] {
					note(CorrectionFixedRemoved, string(kind), "%s is no longer granted", id)
					continue
				}
				kept = append(kept, id)
			}
			selection = kept
		}
		have := toSet(selection)
		for _, id := range FixedProficiencies(out, t, kind) {
			if !have[id] {
				note(CorrectionFixedInserted, string(kind), "%s granted", id)
				selection = append(selection, id)
			}
		}
		out.SetSelection(kind, selection)
	}

	names := make([]string, 0, len(out.FeatAbilityChoices))
	for name := range out.FeatAbilityChoices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !out.HasFeat(name) {
			note(CorrectionFeatChoiceDropped, "feat_ability_choices", "ability choice for %s dropped", name)
			delete(out.FeatAbilityChoices, name)
		}
	}

	if prev != nil && (prev.RaceID != out.RaceID || prev.SubraceID != out.SubraceID) && len(out.FlexibleBonuses) > 0 {
		note(CorrectionFlexibleCleared, "flexible_bonuses", "flexible bonuses cleared after race change")
		out.FlexibleBonuses = nil
	} else if len(out.FlexibleBonuses) > 0 {
		if trimmed := trimFlexible(out, t); len(trimmed) != len(out.FlexibleBonuses) {
			note(CorrectionFlexibleCleared, "flexible_bonuses", "%d flexible bonus(es) no longer allowed", len(out.FlexibleBonuses)-len(trimmed))
			out.FlexibleBonuses = trimmed
		}
	}

	if out.AbilityScores.Method == entities.MethodRoll {
		for _, a := range entities.AllAbilities {
			id, assigned := out.AbilityScores.RollAssignments[a]
			if !assigned {
				continue
			}
			if _, ok := out.AbilityScores.Roll(id); !ok {
				note(CorrectionRollAssignmentDropped, abilityField(a), "%s roll assignment dropped: roll no longer in the pool", a.Name())
				delete(out.AbilityScores.RollAssignments, a)
				if out.AbilityScores.Base != nil {
					out.AbilityScores.Base[a] = 0
				}
			}
		}
	}
	return out, fixes
}

func wasFixed(prev *entities.Character, t *rules.Tables, kind entities.ProficiencyKind, id string) bool {
	for _, f := range FixedProficiencies(prev, t, kind) {
		if f == id {
			return true
		}
	}
	return false
}

func trimFlexible(c *entities.Character, t *rules.Tables) []entities.Ability {
	race, err := t.Race(c.RaceID)
	if err != nil {
		return nil
	}
	excluded := make(map[entities.Ability]bool, len(race.FlexibleExcluded))
	for _, a := range race.FlexibleExcluded {
		excluded[a] = true
	}
	slots := FlexibleSlots(c, t)
	seen := make(map[entities.Ability]bool)
	var out []entities.Ability
	for _, a := range c.FlexibleBonuses {
		if len(out) == slots {
			break
		}
		if !a.Valid() || excluded[a] || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// Op is one edit operation; it returns a new character or a rejection
type Op func(*entities.Character) (*entities.Character, error)

// Edit applies op to c and reconciles the result. A rejected op returns
// c unchanged together with the error.
func Edit(c *entities.Character, t *rules.Tables, op Op) (*entities.Character, []Correction, error) {
	next, err := op(c)
	if err != nil {
		return c, nil, err
	}
	out, fixes := Reconcile(c, next, t)
	return out, fixes, nil
}
