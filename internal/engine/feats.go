package engine

import (
	"fmt"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// FeatSummary is the feat-or-ASI slot bookkeeping for a character
type FeatSummary struct {
	Available int `json:"available"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	// Eligible lists feat names whose prerequisites currently pass
	Eligible []string `json:"eligible"`
}

// AvailableFeatSlots sums, per class entry, the feat-unlock levels at or
// below that entry's level.
func AvailableFeatSlots(c *entities.Character, t *rules.Tables) int {
	n := 0
	for _, e := range c.Classes {
		if cls, err := t.Class(e.ClassID); err == nil {
			n += cls.FeatSlotsAt(e.Level)
		}
	}
	return n
}

// ResolveFeats computes slot usage and current feat eligibility. totals are
// the resolved ability totals.
func ResolveFeats(c *entities.Character, t *rules.Tables, totals entities.AbilityMap) *FeatSummary {
	s := &FeatSummary{
		Available: AvailableFeatSlots(c, t),
		Used:      len(c.Feats) + len(c.ASIChoices),
	}
	s.Remaining = s.Available - s.Used
	ctx := BuildPrereqContext(c, t, totals)
	for _, name := range t.FeatNames() {
		feat, _ := t.Feat(name)
		if len(CheckPrerequisites(feat, ctx)) == 0 {
			s.Eligible = append(s.Eligible, name)
		}
	}
	return s
}

// PrereqContext is what feat prerequisites are checked against
type PrereqContext struct {
	Totals      entities.AbilityMap
	Spellcaster bool
	ArmorTiers  map[rules.ArmorTier]bool
}

// BuildPrereqContext gathers totals, spellcasting and armor proficiencies
func BuildPrereqContext(c *entities.Character, t *rules.Tables, totals entities.AbilityMap) PrereqContext {
	return PrereqContext{
		Totals:      totals,
		Spellcaster: IsSpellcaster(c, t),
		ArmorTiers:  ArmorProficiencies(c, t),
	}
}

// CheckPrerequisites returns a description of every unmet prerequisite
func CheckPrerequisites(feat *rules.FeatDefinition, ctx PrereqContext) []string {
	var unmet []string
	for _, p := range feat.Prerequisites {
		ok := true
		switch req := p.(type) {
		case rules.MinimumAbility:
			ok = ctx.Totals[req.Ability] >= req.Score
		case rules.RequiresSpellcasting:
			ok = ctx.Spellcaster
		case rules.RequiresArmorProficiency:
			ok = ctx.ArmorTiers[req.Tier]
		case rules.NoPrerequisite:
		}
		if !ok {
			unmet = append(unmet, p.Describe())
		}
	}
	return unmet
}

// IsSpellcaster reports whether any class entry, or its chosen subclass, casts spells
func IsSpellcaster(c *entities.Character, t *rules.Tables) bool {
	for _, e := range c.Classes {
		cls, err := t.Class(e.ClassID)
		if err != nil {
			continue
		}
		if cls.Spellcasting {
			return true
		}
		if sub, ok := cls.Subclass(e.SubclassID); ok && sub.Spellcasting {
			return true
		}
	}
	return false
}

// ArmorProficiencies collects armor tiers from the primary class, the race
// and subrace, and armor-granting feats.
func ArmorProficiencies(c *entities.Character, t *rules.Tables) map[rules.ArmorTier]bool {
	tiers := make(map[rules.ArmorTier]bool)
	src := lookupSources(c, t)
	if src.primary != nil {
		for _, a := range src.primary.Armor {
			tiers[a] = true
		}
	}
	if src.race != nil {
		for _, a := range src.race.Armor {
			tiers[a] = true
		}
	}
	if src.subrace != nil {
		for _, a := range src.subrace.Armor {
			tiers[a] = true
		}
	}
	for _, name := range c.Feats {
		if feat, err := t.Feat(name); err == nil {
			for _, a := range feat.GrantsArmor {
				tiers[a] = true
			}
		}
	}
	return tiers
}

// ValidateASIChoice checks the arity of a user ASI choice: a single choice
// names one ability, a double choice names two distinct abilities.
func ValidateASIChoice(choice entities.ASIChoice) error {
	for _, a := range choice.Abilities {
		if !a.Valid() {
			return errors.Invalid("asi_choices", "unknown ability %q", a)
		}
	}
	switch choice.Mode {
	case entities.ASISingle:
		if len(choice.Abilities) != 1 {
			return errors.Invalid("asi_choices", "a single ASI names exactly one ability, got %d", len(choice.Abilities))
		}
	case entities.ASIDouble:
		if len(choice.Abilities) != 2 {
			return errors.Invalid("asi_choices", "a double ASI names exactly two abilities, got %d", len(choice.Abilities))
		}
		if choice.Abilities[0] == choice.Abilities[1] {
			return errors.Invalid("asi_choices", "a double ASI needs two different abilities")
		}
	default:
		return errors.Invalid("asi_choices", "unknown ASI mode %q", choice.Mode)
	}
	return nil
}

// AddFeat selects a feat. Feats offering several abilities need choice to
// name one of them; feats offering one ability ignore choice.
func AddFeat(c *entities.Character, t *rules.Tables, name string, choice entities.Ability) (*entities.Character, error) {
	feat, err := t.Feat(name)
	if err != nil {
		return c, err
	}
	if c.HasFeat(name) {
		return c, errors.Rejected("feats", "%s is already selected", name)
	}
	totals := ResolveAbilities(c, t).Total
	if unmet := CheckPrerequisites(feat, BuildPrereqContext(c, t, totals)); len(unmet) > 0 {
		return c, errors.Rejected("feats", "%s requires %s", name, unmet[0])
	}
	if AvailableFeatSlots(c, t)-len(c.Feats)-len(c.ASIChoices) <= 0 {
		return c, errors.Rejected("feats", "no feat or ASI slot remaining")
	}
	if feat.NeedsAbilityChoice() {
		if choice == "" {
			return c, errors.Invalid("feat_ability_choices", "%s requires choosing an ability to increase", name)
		}
		if !feat.OffersAbility(choice) {
			return c, errors.Invalid("feat_ability_choices", "%s cannot increase %s", name, choice)
		}
	}

	out := c.Clone()
	out.Feats = append(out.Feats, name)
	if feat.NeedsAbilityChoice() {
		if out.FeatAbilityChoices == nil {
			out.FeatAbilityChoices = make(map[string]entities.Ability)
		}
		out.FeatAbilityChoices[name] = choice
	}
	return out, nil
}

// RemoveFeat drops a feat and its recorded ability choice
func RemoveFeat(c *entities.Character, name string) (*entities.Character, error) {
	if !c.HasFeat(name) {
		return c, errors.NotFoundf("feat %s is not selected", name).WithField("feats")
	}
	out := c.Clone()
	kept := out.Feats[:0]
	for _, f := range out.Feats {
		if f != name {
			kept = append(kept, f)
		}
	}
	out.Feats = kept
	delete(out.FeatAbilityChoices, name)
	return out, nil
}

// AddASIChoice appends a user ASI choice. Invalid arity is rejected before
// the choice is recorded; so is a choice with no slot left.
func AddASIChoice(c *entities.Character, t *rules.Tables, choice entities.ASIChoice) (*entities.Character, error) {
	if err := ValidateASIChoice(choice); err != nil {
		return c, err
	}
	if AvailableFeatSlots(c, t)-len(c.Feats)-len(c.ASIChoices) <= 0 {
		return c, errors.Rejected("asi_choices", "no feat or ASI slot remaining")
	}
	out := c.Clone()
	out.ASIChoices = append(out.ASIChoices, entities.ASIChoice{
		Mode:      choice.Mode,
		Abilities: append([]entities.Ability(nil), choice.Abilities...),
	})
	return out, nil
}

// RemoveASIChoice drops the ASI choice at index
func RemoveASIChoice(c *entities.Character, index int) (*entities.Character, error) {
	if index < 0 || index >= len(c.ASIChoices) {
		return c, errors.OutOfRangef("asi choice %d does not exist", index).WithField("asi_choices")
	}
	out := c.Clone()
	out.ASIChoices = append(out.ASIChoices[:index], out.ASIChoices[index+1:]...)
	return out, nil
}

func validateFeats(c *entities.Character, t *rules.Tables, totals entities.AbilityMap) []ValidationError {
	var errs []ValidationError
	add := func(field, msg string, kind Kind, p Priority) {
		errs = append(errs, ValidationError{Section: SectionFeats, Field: field, Message: msg, Kind: kind, Priority: p})
	}
	ctx := BuildPrereqContext(c, t, totals)
	seen := make(map[string]bool, len(c.Feats))
	for _, name := range c.Feats {
		if seen[name] {
			add("feats", fmt.Sprintf("%s is listed more than once", name), KindCombinatorial, PriorityHigh)
			continue
		}
		seen[name] = true
		feat, err := t.Feat(name)
		if err != nil {
			add("feats", fmt.Sprintf("Unknown feat %q", name), KindCombinatorial, PriorityHigh)
			continue
		}
		if unmet := CheckPrerequisites(feat, ctx); len(unmet) > 0 {
			add("feats", fmt.Sprintf("%s requires %s", name, unmet[0]), KindCombinatorial, PriorityHigh)
		}
		if feat.NeedsAbilityChoice() {
			if choice, ok := c.FeatAbilityChoices[name]; !ok || !feat.OffersAbility(choice) {
				add("feat_ability_choices", fmt.Sprintf("%s needs an ability choice", name), KindStructural, PriorityHigh)
			}
		}
	}
	for i, choice := range c.ASIChoices {
		if err := ValidateASIChoice(choice); err != nil {
			add(fmt.Sprintf("asi_choices.%d", i), errors.GetMessage(err), KindCombinatorial, PriorityHigh)
		}
	}
	available := AvailableFeatSlots(c, t)
	used := len(c.Feats) + len(c.ASIChoices)
	switch remaining := available - used; {
	case remaining < 0:
		add("feats", fmt.Sprintf("%d feats and ASIs chosen but only %d slot(s) earned", used, available), KindBudget, PriorityMedium)
	case remaining > 0:
		add("feats", fmt.Sprintf("%d feat or ASI slot(s) unused", remaining), KindBudget, PriorityLow)
	}
	return errs
}
