package testutils

import (
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils/builders"
)

// TestCharacterName is the default character name for test fixtures
const TestCharacterName = "Thorin Oakenshield"

// CreateTestCharacter returns a complete level 1 human fighter with the
// soldier background that validates with no errors.
func CreateTestCharacter(playerID string) *entities.Character {
	return builders.NewCharacterBuilder().
		WithPlayerID(playerID).
		WithName(TestCharacterName).
		WithRace("human").
		WithBackground("soldier").
		WithClass("fighter", 1).
		WithStandardArray(15, 14, 13, 12, 10, 8).
		WithSkills("athletics", "intimidation", "perception", "survival").
		WithTools("dice-set", "vehicles-land").
		WithLanguages("common", "dwarvish").
		WithBackstoryWords(220).
		WithAppearanceWords(30).
		Build()
}

// CreateTestFighter returns a valid character with the given fighter level.
// Feat slots are left unused.
func CreateTestFighter(level int) *entities.Character {
	c := CreateTestCharacter("player-test-123")
	c.Classes[0].Level = level
	return c
}
