// Package dice implements the dice orchestrator for rolling ability-score pools
package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=dicemock github.com/KirkDiggler/rpg-toolkit/dice Roller

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
)

const (
	// Dice rolling methods
	MethodStandard = "4d6_drop_lowest"
	MethodClassic  = "3d6"

	// maxDice bounds a single generic roll
	maxDice = 100
)

var (
	// Regex for parsing simple dice notation like "2d6", "1d20", "3d8"
	diceNotationRegex = regexp.MustCompile(`^(\d+)d(\d+)$`)
)

// Service defines the interface for dice operations
type Service interface {
	// RollDice rolls simple XdY notation
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)

	// RollAbilityScores rolls a fresh six-entry pool for the roll method
	RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	Roller      dice.Roller
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	roller dice.Roller
	idGen  idgen.Generator
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies.
// A nil Roller uses the toolkit's default roller.
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}

	return &orchestrator{
		roller: roller,
		idGen:  cfg.IDGenerator,
	}, nil
}

// parseDiceNotation parses simple dice notation like "2d6" and returns count and size
func parseDiceNotation(notation string) (count, size int, err error) {
	matches := diceNotationRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(notation)))
	if len(matches) != 3 {
		return 0, 0, errors.InvalidArgumentf("invalid dice notation: %s (expected format: XdY)", notation)
	}

	count, err = strconv.Atoi(matches[1])
	if err != nil {
		return 0, 0, errors.InvalidArgumentf("invalid dice count in notation: %s", notation)
	}

	size, err = strconv.Atoi(matches[2])
	if err != nil {
		return 0, 0, errors.InvalidArgumentf("invalid die size in notation: %s", notation)
	}

	if count <= 0 || size <= 0 {
		return 0, 0, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}
	if count > maxDice {
		return 0, 0, errors.InvalidArgumentf("cannot roll more than %d dice at once: %s", maxDice, notation)
	}

	return count, size, nil
}

// dropLowest removes one copy of the lowest die; the kept dice keep their roll order
func dropLowest(rolled []int) (kept []int, dropped int) {
	low := 0
	for i, d := range rolled {
		if d < rolled[low] {
			low = i
		}
	}
	kept = make([]int, 0, len(rolled)-1)
	kept = append(kept, rolled[:low]...)
	kept = append(kept, rolled[low+1:]...)
	return kept, rolled[low]
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// RollDice rolls dice using the specified notation
func (o *orchestrator) RollDice(_ context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Notation == "" {
		return nil, errors.InvalidArgument("dice notation is required")
	}

	count, size, err := parseDiceNotation(input.Notation)
	if err != nil {
		return nil, err
	}

	rolled, err := o.roller.RollN(count, size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to roll %s", input.Notation)
	}

	return &RollDiceOutput{Dice: rolled, Total: sum(rolled)}, nil
}

// RollAbilityScores rolls six ability scores and tags each with an id
func (o *orchestrator) RollAbilityScores(_ context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	method := input.Method
	if method == "" {
		method = MethodStandard
	}

	var count int
	switch method {
	case MethodStandard:
		count = 4
	case MethodClassic:
		count = 3
	default:
		return nil, errors.InvalidArgumentf("unsupported rolling method: %s", method)
	}

	rolls := make([]entities.AbilityRoll, 0, len(entities.AllAbilities))
	for i := range entities.AllAbilities {
		rolled, err := o.roller.RollN(count, 6)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll ability score %d", i+1)
		}
		if len(rolled) != count {
			return nil, errors.Internalf("roller returned %d dice, expected %d", len(rolled), count)
		}

		roll := entities.AbilityRoll{
			ID:   o.idGen.Generate(),
			Dice: rolled,
		}
		if method == MethodStandard {
			var kept []int
			kept, roll.Dropped = dropLowest(rolled)
			roll.Value = sum(kept)
		} else {
			roll.Value = sum(rolled)
		}
		rolls = append(rolls, roll)
	}

	slog.Info("Ability scores rolled",
		"method", method,
		"rolls_count", len(rolls),
	)

	return &RollAbilityScoresOutput{Rolls: rolls}, nil
}
