package entities

import (
	"sort"
	"time"
)

// ProficiencyKind names one of the three proficiency pools
type ProficiencyKind string

// Proficiency pools
const (
	KindSkills    ProficiencyKind = "skills"
	KindTools     ProficiencyKind = "tools"
	KindLanguages ProficiencyKind = "languages"
)

// ProficiencyKinds lists the pools in report order
var ProficiencyKinds = []ProficiencyKind{KindSkills, KindTools, KindLanguages}

// ClassEntry is one class in a possibly multiclassed build
type ClassEntry struct {
	ClassID    string `json:"class_id"`
	SubclassID string `json:"subclass_id,omitempty"`
	Level      int    `json:"level"`
}

// EquipmentSelection is a catalog entry picked for the character.
// TwoHanded is copied from the catalog detail when the weapon is picked.
type EquipmentSelection struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	TwoHanded bool   `json:"two_handed,omitempty"`
}

// Character is the build under edit.
// NOTE: the engine treats a Character as a value. Every edit returns a new
// Character built with Clone; callers never see a half-applied edit.
type Character struct {
	ID       string `json:"id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name"`

	RaceID       string `json:"race_id,omitempty"`
	SubraceID    string `json:"subrace_id,omitempty"`
	BackgroundID string `json:"background_id,omitempty"`
	Alignment    string `json:"alignment,omitempty"`

	Classes []ClassEntry `json:"classes,omitempty"`

	AbilityScores AbilityScores `json:"ability_scores"`
	// FlexibleBonuses holds one ability per assigned flexible racial slot
	FlexibleBonuses []Ability `json:"flexible_bonuses,omitempty"`

	Feats []string `json:"feats,omitempty"`
	// FeatAbilityChoices records the chosen ability for feats that offer several
	FeatAbilityChoices map[string]Ability `json:"feat_ability_choices,omitempty"`
	ASIChoices         []ASIChoice        `json:"asi_choices,omitempty"`

	Skills    []string `json:"skills,omitempty"`
	Tools     []string `json:"tools,omitempty"`
	Languages []string `json:"languages,omitempty"`

	Weapons []EquipmentSelection `json:"weapons,omitempty"`
	Armor   *EquipmentSelection  `json:"armor,omitempty"`
	Shield  *EquipmentSelection  `json:"shield,omitempty"`
	Items   []string             `json:"items,omitempty"`
	Spells  []string             `json:"spells,omitempty"`

	Backstory   string `json:"backstory,omitempty"`
	Appearance  string `json:"appearance,omitempty"`
	Personality string `json:"personality,omitempty"`
	Ideals      string `json:"ideals,omitempty"`
	Bonds       string `json:"bonds,omitempty"`
	Flaws       string `json:"flaws,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewCharacter returns an empty build using the standard array with nothing assigned
func NewCharacter() *Character {
	return &Character{
		AbilityScores: AbilityScores{
			Method: MethodStandardArray,
			Base:   NewAbilityMap(0),
		},
	}
}

// Clone returns a deep copy
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Classes = append([]ClassEntry(nil), c.Classes...)
	out.AbilityScores = c.AbilityScores.Clone()
	out.FlexibleBonuses = append([]Ability(nil), c.FlexibleBonuses...)
	out.Feats = append([]string(nil), c.Feats...)
	if c.FeatAbilityChoices != nil {
		out.FeatAbilityChoices = make(map[string]Ability, len(c.FeatAbilityChoices))
		for k, v := range c.FeatAbilityChoices {
			out.FeatAbilityChoices[k] = v
		}
	}
	if c.ASIChoices != nil {
		out.ASIChoices = make([]ASIChoice, len(c.ASIChoices))
		for i, choice := range c.ASIChoices {
			out.ASIChoices[i] = ASIChoice{
				Mode:      choice.Mode,
				Abilities: append([]Ability(nil), choice.Abilities...),
			}
		}
	}
	out.Skills = append([]string(nil), c.Skills...)
	out.Tools = append([]string(nil), c.Tools...)
	out.Languages = append([]string(nil), c.Languages...)
	out.Weapons = append([]EquipmentSelection(nil), c.Weapons...)
	if c.Armor != nil {
		armor := *c.Armor
		out.Armor = &armor
	}
	if c.Shield != nil {
		shield := *c.Shield
		out.Shield = &shield
	}
	out.Items = append([]string(nil), c.Items...)
	out.Spells = append([]string(nil), c.Spells...)
	return &out
}

// PrimaryClass returns the first-listed class entry, or nil
func (c *Character) PrimaryClass() *ClassEntry {
	if len(c.Classes) == 0 {
		return nil
	}
	return &c.Classes[0]
}

// TotalLevel sums the levels of every class entry
func (c *Character) TotalLevel() int {
	total := 0
	for _, e := range c.Classes {
		total += e.Level
	}
	return total
}

// HasFeat reports whether the named feat is selected
func (c *Character) HasFeat(name string) bool {
	for _, f := range c.Feats {
		if f == name {
			return true
		}
	}
	return false
}

// Selection returns the selection set for a proficiency pool
func (c *Character) Selection(kind ProficiencyKind) []string {
	switch kind {
	case KindSkills:
		return c.Skills
	case KindTools:
		return c.Tools
	case KindLanguages:
		return c.Languages
	}
	return nil
}

// SetSelection replaces a selection set; ids are stored sorted and unique
func (c *Character) SetSelection(kind ProficiencyKind, ids []string) {
	set := NormalizeSet(ids)
	switch kind {
	case KindSkills:
		c.Skills = set
	case KindTools:
		c.Tools = set
	case KindLanguages:
		c.Languages = set
	}
}

// NormalizeSet sorts ids and removes blanks and duplicates
func NormalizeSet(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
