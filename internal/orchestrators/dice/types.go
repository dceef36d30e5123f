package dice

import "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"

// RollDiceInput defines the request for rolling dice
type RollDiceInput struct {
	Notation string
}

// RollDiceOutput defines the response for rolling dice
type RollDiceOutput struct {
	Dice  []int
	Total int
}

// RollAbilityScoresInput defines the request for rolling an ability-score pool
type RollAbilityScoresInput struct {
	Method string // "4d6_drop_lowest" (default) or "3d6"
}

// RollAbilityScoresOutput defines the response for rolling an ability-score pool.
// Rolls can be handed straight to engine.ApplyRolledPool.
type RollAbilityScoresOutput struct {
	Rolls []entities.AbilityRoll
}
