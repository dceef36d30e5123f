// Package builders provides test data builders for creating test fixtures
package builders

import (
	"strings"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
)

// CharacterBuilder provides a fluent interface for building test Character instances
type CharacterBuilder struct {
	c *entities.Character
}

// NewCharacterBuilder creates a new builder with empty defaults
func NewCharacterBuilder() *CharacterBuilder {
	return &CharacterBuilder{c: entities.NewCharacter()}
}

// WithID sets the record id
func (b *CharacterBuilder) WithID(id string) *CharacterBuilder {
	b.c.ID = id
	return b
}

// WithPlayerID sets the player id
func (b *CharacterBuilder) WithPlayerID(playerID string) *CharacterBuilder {
	b.c.PlayerID = playerID
	return b
}

// WithName sets the character name
func (b *CharacterBuilder) WithName(name string) *CharacterBuilder {
	b.c.Name = name
	return b
}

// WithRace sets the race and optionally subrace
func (b *CharacterBuilder) WithRace(raceID string, subraceID ...string) *CharacterBuilder {
	b.c.RaceID = raceID
	if len(subraceID) > 0 {
		b.c.SubraceID = subraceID[0]
	}
	return b
}

// WithBackground sets the background
func (b *CharacterBuilder) WithBackground(backgroundID string) *CharacterBuilder {
	b.c.BackgroundID = backgroundID
	return b
}

// WithClass appends a class entry
func (b *CharacterBuilder) WithClass(classID string, level int, subclassID ...string) *CharacterBuilder {
	entry := entities.ClassEntry{ClassID: classID, Level: level}
	if len(subclassID) > 0 {
		entry.SubclassID = subclassID[0]
	}
	b.c.Classes = append(b.c.Classes, entry)
	return b
}

// WithStandardArray assigns base values in str, dex, con, int, wis, cha order
func (b *CharacterBuilder) WithStandardArray(values ...int) *CharacterBuilder {
	return b.withBase(entities.MethodStandardArray, values)
}

// WithPointBuy assigns point-buy base values in ability order
func (b *CharacterBuilder) WithPointBuy(values ...int) *CharacterBuilder {
	return b.withBase(entities.MethodPointBuy, values)
}

// WithManualScores assigns free-entry base values in ability order
func (b *CharacterBuilder) WithManualScores(values ...int) *CharacterBuilder {
	return b.withBase(entities.MethodManual, values)
}

func (b *CharacterBuilder) withBase(method entities.AbilityMethod, values []int) *CharacterBuilder {
	b.c.AbilityScores = entities.AbilityScores{Method: method, Base: entities.NewAbilityMap(0)}
	for i, a := range entities.AllAbilities {
		if i < len(values) {
			b.c.AbilityScores.Base[a] = values[i]
		}
	}
	return b
}

// WithRolls switches to the roll method with an unassigned pool
func (b *CharacterBuilder) WithRolls(rolls ...entities.AbilityRoll) *CharacterBuilder {
	b.c.AbilityScores = entities.AbilityScores{
		Method: entities.MethodRoll,
		Base:   entities.NewAbilityMap(0),
		Rolls:  rolls,
	}
	return b
}

// WithFlexibleBonuses sets flexible racial bonus assignments
func (b *CharacterBuilder) WithFlexibleBonuses(abilities ...entities.Ability) *CharacterBuilder {
	b.c.FlexibleBonuses = abilities
	return b
}

// WithFeat selects a feat, recording choice when one is given
func (b *CharacterBuilder) WithFeat(name string, choice ...entities.Ability) *CharacterBuilder {
	b.c.Feats = append(b.c.Feats, name)
	if len(choice) > 0 {
		if b.c.FeatAbilityChoices == nil {
			b.c.FeatAbilityChoices = make(map[string]entities.Ability)
		}
		b.c.FeatAbilityChoices[name] = choice[0]
	}
	return b
}

// WithASI appends a user ASI choice
func (b *CharacterBuilder) WithASI(mode entities.ASIMode, abilities ...entities.Ability) *CharacterBuilder {
	b.c.ASIChoices = append(b.c.ASIChoices, entities.ASIChoice{Mode: mode, Abilities: abilities})
	return b
}

// WithSkills sets the skill selection
func (b *CharacterBuilder) WithSkills(ids ...string) *CharacterBuilder {
	b.c.SetSelection(entities.KindSkills, ids)
	return b
}

// WithTools sets the tool selection
func (b *CharacterBuilder) WithTools(ids ...string) *CharacterBuilder {
	b.c.SetSelection(entities.KindTools, ids)
	return b
}

// WithLanguages sets the language selection
func (b *CharacterBuilder) WithLanguages(ids ...string) *CharacterBuilder {
	b.c.SetSelection(entities.KindLanguages, ids)
	return b
}

// WithWeapon appends a weapon selection
func (b *CharacterBuilder) WithWeapon(id, name string, twoHanded bool) *CharacterBuilder {
	b.c.Weapons = append(b.c.Weapons, entities.EquipmentSelection{ID: id, Name: name, Category: "weapon", TwoHanded: twoHanded})
	return b
}

// WithShield selects a shield
func (b *CharacterBuilder) WithShield() *CharacterBuilder {
	b.c.Shield = &entities.EquipmentSelection{ID: "shield", Name: "Shield", Category: "armor"}
	return b
}

// WithSpells sets the spell selection
func (b *CharacterBuilder) WithSpells(ids ...string) *CharacterBuilder {
	b.c.Spells = ids
	return b
}

// WithBackstoryWords fills the backstory with n words
func (b *CharacterBuilder) WithBackstoryWords(n int) *CharacterBuilder {
	b.c.Backstory = Words(n)
	return b
}

// WithAppearanceWords fills the appearance with n words
func (b *CharacterBuilder) WithAppearanceWords(n int) *CharacterBuilder {
	b.c.Appearance = Words(n)
	return b
}

// Build returns the character
func (b *CharacterBuilder) Build() *entities.Character {
	return b.c
}

// Words returns n space-separated words
func Words(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSpace(strings.Repeat("word ", n))
}
