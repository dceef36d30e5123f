// Package rules holds the static reference data the engine resolves
// characters against: races, classes, backgrounds, feats and the known
// skill, tool and language ids.
package rules

import (
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
)

// ArmorTier is an armor proficiency level
type ArmorTier string

// Armor tiers
const (
	ArmorLight   ArmorTier = "light"
	ArmorMedium  ArmorTier = "medium"
	ArmorHeavy   ArmorTier = "heavy"
	ArmorShields ArmorTier = "shields"
)

// ArtisansToolsTag marks a fixed tool grant that is really a free choice of
// one artisan's tool. It is never inserted as a selection.
const ArtisansToolsTag = "artisans-tools"

// RaceDefinition describes a playable race
type RaceDefinition struct {
	ID             string              `yaml:"id"`
	Name           string              `yaml:"name"`
	AbilityBonuses entities.AbilityMap `yaml:"ability_bonuses"`
	// FlexibleBonusCount is the number of +1 slots the player assigns
	FlexibleBonusCount int `yaml:"flexible_bonus_count"`
	// FlexibleExcluded lists abilities a flexible slot may not target
	FlexibleExcluded []entities.Ability `yaml:"flexible_excluded"`
	Skills           []string           `yaml:"skills"`
	Tools            []string           `yaml:"tools"`
	Languages        []string           `yaml:"languages"`
	// LanguageChoices counts "choose any language" slots
	LanguageChoices int `yaml:"language_choices"`
	// SkillChoices counts racial global skill slots
	SkillChoices int                  `yaml:"skill_choices"`
	Armor        []ArmorTier          `yaml:"armor"`
	Subraces     []*SubraceDefinition `yaml:"subraces"`
}

// Subrace returns the subrace with the given id
func (r *RaceDefinition) Subrace(id string) (*SubraceDefinition, bool) {
	for _, s := range r.Subraces {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// SubraceDefinition refines a race. Its bonus set replaces the parent's;
// its proficiencies add to the parent's.
type SubraceDefinition struct {
	ID                 string              `yaml:"id"`
	Name               string              `yaml:"name"`
	AbilityBonuses     entities.AbilityMap `yaml:"ability_bonuses"`
	FlexibleBonusCount int                 `yaml:"flexible_bonus_count"`
	Skills             []string            `yaml:"skills"`
	Tools              []string            `yaml:"tools"`
	Languages          []string            `yaml:"languages"`
	LanguageChoices    int                 `yaml:"language_choices"`
	Armor              []ArmorTier         `yaml:"armor"`
}

// ClassDefinition describes a class
type ClassDefinition struct {
	ID               string             `yaml:"id"`
	Name             string             `yaml:"name"`
	HitDie           int                `yaml:"hit_die"`
	PrimaryAbility   entities.Ability   `yaml:"primary_ability"`
	SavingThrows     []entities.Ability `yaml:"saving_throws"`
	SkillChoiceCount int                `yaml:"skill_choice_count"`
	SkillList        []string           `yaml:"skill_list"`
	Tools            []string           `yaml:"tools"`
	Armor            []ArmorTier        `yaml:"armor"`
	Spellcasting     bool               `yaml:"spellcasting"`
	// MulticlassSkillGrant adds a global skill slot when this class is not the primary class
	MulticlassSkillGrant bool                  `yaml:"multiclass_skill_grant"`
	FeatLevels           []int                 `yaml:"feat_levels"`
	Subclasses           []*SubclassDefinition `yaml:"subclasses"`
}

// Subclass returns the subclass with the given id
func (c *ClassDefinition) Subclass(id string) (*SubclassDefinition, bool) {
	for _, s := range c.Subclasses {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// FeatSlotsAt counts feat-unlock levels at or below level
func (c *ClassDefinition) FeatSlotsAt(level int) int {
	n := 0
	for _, l := range c.FeatLevels {
		if l > level {
			break
		}
		n++
	}
	return n
}

// SubclassDefinition is a subclass gated by class level
type SubclassDefinition struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	UnlockLevel  int    `yaml:"unlock_level"`
	Spellcasting bool   `yaml:"spellcasting"`
}

// BackgroundDefinition describes a background
type BackgroundDefinition struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Skills          []string `yaml:"skills"`
	Tools           []string `yaml:"tools"`
	LanguageChoices int      `yaml:"language_choices"`
	Equipment       []string `yaml:"equipment"`
}

// FeatDefinition describes a feat
type FeatDefinition struct {
	Name          string
	Description   string
	Prerequisites []Prerequisite
	// AbilityIncreases lists the abilities the feat may raise by 1.
	// With more than one entry the player must pick exactly one.
	AbilityIncreases []entities.Ability
	// GrantsArmor lists armor proficiencies the feat grants
	GrantsArmor []ArmorTier
}

// NeedsAbilityChoice reports whether selecting the feat requires a chosen ability
func (f *FeatDefinition) NeedsAbilityChoice() bool {
	return len(f.AbilityIncreases) > 1
}

// OffersAbility reports whether a is one of the feat's increase options
func (f *FeatDefinition) OffersAbility(a entities.Ability) bool {
	for _, o := range f.AbilityIncreases {
		if o == a {
			return true
		}
	}
	return false
}
