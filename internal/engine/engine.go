// Package engine is the character build rules engine. Every function is a
// pure function of a Character and the rule tables: resolvers derive
// ability totals, proficiency pools and feat slots, edit operations return
// a new Character or a rejection, Reconcile applies the automatic
// corrections and Validate produces the prioritized report.
package engine

import (
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// Evaluation is everything derived from one character
type Evaluation struct {
	Character *entities.Character                          `json:"character"`
	Abilities *AbilityResult                               `json:"abilities"`
	Pools     map[entities.ProficiencyKind]*ProficiencyPool `json:"pools"`
	Feats     *FeatSummary                                 `json:"feats"`
	Report    *Report                                      `json:"report"`
}

// Evaluate resolves abilities first, then pools and feats, and finally
// composes the validation report.
func Evaluate(c *entities.Character, t *rules.Tables) *Evaluation {
	ev := &Evaluation{
		Character: c,
		Abilities: ResolveAbilities(c, t),
		Pools:     make(map[entities.ProficiencyKind]*ProficiencyPool, len(entities.ProficiencyKinds)),
	}
	ev.Feats = ResolveFeats(c, t, ev.Abilities.Total)

	var errs []ValidationError
	errs = append(errs, validateIdentity(c, t)...)
	errs = append(errs, validateLevels(c, t)...)
	errs = append(errs, validateAbilities(c, t, ev.Abilities.Total)...)
	for _, kind := range entities.ProficiencyKinds {
		pool := ResolvePool(c, t, kind)
		ev.Pools[kind] = pool
		errs = append(errs, ValidatePool(pool)...)
	}
	errs = append(errs, validateFeats(c, t, ev.Abilities.Total)...)
	errs = append(errs, validateEquipment(c)...)
	errs = append(errs, validateSpells(c, t)...)
	errs = append(errs, validateNarrative(c)...)
	ev.Report = newReport(errs)
	return ev
}
