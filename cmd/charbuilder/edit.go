package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/clients/external"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	diceorch "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/dice"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// opBuilder turns "characters edit" arguments into an engine edit.
// Lookups that need IO (dice, catalog) run here, before the edit.
type opBuilder struct {
	tables  *rules.Tables
	dice    func() (diceorch.Service, error)
	catalog func() (*external.CachedCatalog, error)
}

type opSpec struct {
	usage string
	args  int // minimum argument count
	build func(ctx context.Context, b *opBuilder, args []string) (engine.Op, error)
}

var editOps = map[string]opSpec{
	"name": {usage: "name NAME...", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		name := strings.Join(args, " ")
		return func(c *entities.Character) (*entities.Character, error) { return engine.SetName(c, name) }, nil
	}},
	"race": {usage: "race RACE [SUBRACE]", args: 1, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) {
			out, err := engine.SetRace(c, b.tables, args[0])
			if err != nil || len(args) < 2 {
				return out, err
			}
			next, err := engine.SetSubrace(out, b.tables, args[1])
			if err != nil {
				return c, err
			}
			return next, nil
		}, nil
	}},
	"background": {usage: "background ID", args: 1, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) { return engine.SetBackground(c, b.tables, args[0]) }, nil
	}},
	"alignment": {usage: "alignment TEXT...", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		alignment := strings.Join(args, " ")
		return func(c *entities.Character) (*entities.Character, error) { return engine.SetAlignment(c, alignment) }, nil
	}},
	"add-class": {usage: "add-class CLASS", args: 1, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) { return engine.AddClassEntry(c, b.tables, args[0]) }, nil
	}},
	"remove-class": {usage: "remove-class INDEX", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		index, err := parseInt("index", args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.RemoveClassEntry(c, index) }, nil
	}},
	"level": {usage: "level INDEX LEVEL", args: 2, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		index, err := parseInt("index", args[0])
		if err != nil {
			return nil, err
		}
		level, err := parseInt("level", args[1])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.SetClassLevel(c, index, level) }, nil
	}},
	"subclass": {usage: "subclass INDEX ID", args: 2, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		index, err := parseInt("index", args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) {
			return engine.SetSubclass(c, b.tables, index, args[1])
		}, nil
	}},
	"select": {usage: "select skills|tools|languages ID", args: 2, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		kind, err := parseKind(args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) {
			return engine.SelectProficiency(c, b.tables, kind, args[1])
		}, nil
	}},
	"deselect": {usage: "deselect skills|tools|languages ID", args: 2, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		kind, err := parseKind(args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) {
			return engine.DeselectProficiency(c, b.tables, kind, args[1])
		}, nil
	}},
	"feat": {usage: "feat NAME [ABILITY]", args: 1, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		name := args[0]
		var choice entities.Ability
		if len(args) > 1 {
			a, err := parseAbility(args[1])
			if err != nil {
				return nil, err
			}
			choice = a
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.AddFeat(c, b.tables, name, choice) }, nil
	}},
	"remove-feat": {usage: "remove-feat NAME", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) { return engine.RemoveFeat(c, args[0]) }, nil
	}},
	"asi": {usage: "asi single ABILITY | asi double ABILITY ABILITY", args: 2, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		choice := entities.ASIChoice{Mode: entities.ASIMode(args[0])}
		for _, arg := range args[1:] {
			a, err := parseAbility(arg)
			if err != nil {
				return nil, err
			}
			choice.Abilities = append(choice.Abilities, a)
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.AddASIChoice(c, b.tables, choice) }, nil
	}},
	"remove-asi": {usage: "remove-asi INDEX", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		index, err := parseInt("index", args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.RemoveASIChoice(c, index) }, nil
	}},
	"flexible": {usage: "flexible ABILITY...", args: 1, build: func(_ context.Context, b *opBuilder, args []string) (engine.Op, error) {
		abilities := make([]entities.Ability, 0, len(args))
		for _, arg := range args {
			a, err := parseAbility(arg)
			if err != nil {
				return nil, err
			}
			abilities = append(abilities, a)
		}
		return func(c *entities.Character) (*entities.Character, error) {
			return engine.AssignFlexibleBonuses(c, b.tables, abilities)
		}, nil
	}},
	"method": {usage: "method standard-array|point-buy|roll|manual", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		method := entities.AbilityMethod(args[0])
		return func(c *entities.Character) (*entities.Character, error) { return engine.SwitchMethod(c, method) }, nil
	}},
	"score": {usage: "score ABILITY VALUE|ROLL_ID", args: 2, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		a, err := parseAbility(args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) {
			if c.AbilityScores.Method == entities.MethodRoll {
				return engine.AssignRoll(c, a, args[1])
			}
			value, err := parseInt("value", args[1])
			if err != nil {
				return c, err
			}
			switch c.AbilityScores.Method {
			case entities.MethodStandardArray:
				return engine.AssignStandardArray(c, a, value)
			case entities.MethodPointBuy:
				return engine.SetPointBuy(c, a, value)
			default:
				return engine.SetManualScore(c, a, value)
			}
		}, nil
	}},
	"roll-pool": {usage: "roll-pool [4d6_drop_lowest|3d6]", args: 0, build: func(ctx context.Context, b *opBuilder, args []string) (engine.Op, error) {
		svc, err := b.dice()
		if err != nil {
			return nil, err
		}
		input := &diceorch.RollAbilityScoresInput{}
		if len(args) > 0 {
			input.Method = args[0]
		}
		resp, err := svc.RollAbilityScores(ctx, input)
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.ApplyRolledPool(c, resp.Rolls) }, nil
	}},
	"weapon": {usage: "weapon CATALOG_ID", args: 1, build: func(ctx context.Context, b *opBuilder, args []string) (engine.Op, error) {
		catalog, err := b.catalog()
		if err != nil {
			return nil, err
		}
		resolved, err := external.ResolveWeapons(ctx, catalog, []entities.EquipmentSelection{{ID: args[0]}})
		if err != nil {
			return nil, err
		}
		weapon := resolved[0]
		if weapon.Category != string(external.CategoryWeapons) {
			return nil, errors.Invalid("weapons", "%s is not a weapon", args[0])
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.SelectWeapon(c, weapon) }, nil
	}},
	"remove-weapon": {usage: "remove-weapon ID", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) { return engine.RemoveWeapon(c, args[0]) }, nil
	}},
	"armor": {usage: "armor CATALOG_ID|none", args: 1, build: func(ctx context.Context, b *opBuilder, args []string) (engine.Op, error) {
		armor, err := b.armor(ctx, "armor", args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.SetArmor(c, armor) }, nil
	}},
	"shield": {usage: "shield CATALOG_ID|none", args: 1, build: func(ctx context.Context, b *opBuilder, args []string) (engine.Op, error) {
		shield, err := b.armor(ctx, "shield", args[0])
		if err != nil {
			return nil, err
		}
		return func(c *entities.Character) (*entities.Character, error) { return engine.SetShield(c, shield) }, nil
	}},
	"item": {usage: "item ID", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) { return engine.AddItem(c, args[0]) }, nil
	}},
	"remove-item": {usage: "remove-item ID", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) { return engine.RemoveItem(c, args[0]) }, nil
	}},
	"spell": {usage: "spell ID", args: 1, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		return func(c *entities.Character) (*entities.Character, error) { return engine.SelectSpell(c, args[0]) }, nil
	}},
	"narrative": {usage: "narrative FIELD TEXT...", args: 2, build: func(_ context.Context, _ *opBuilder, args []string) (engine.Op, error) {
		field := engine.NarrativeField(args[0])
		text := strings.Join(args[1:], " ")
		return func(c *entities.Character) (*entities.Character, error) { return engine.SetNarrative(c, field, text) }, nil
	}},
}

func (b *opBuilder) build(ctx context.Context, name string, args []string) (engine.Op, error) {
	spec, ok := editOps[name]
	if !ok {
		return nil, errors.InvalidArgumentf("unknown edit %q, expected one of: %s", name, strings.Join(editNames(), ", "))
	}
	if len(args) < spec.args {
		return nil, errors.InvalidArgumentf("usage: %s", spec.usage)
	}
	return spec.build(ctx, b, args)
}

// armor resolves a catalog armor entry; "none" clears the slot without a lookup.
func (b *opBuilder) armor(ctx context.Context, field, id string) (*entities.EquipmentSelection, error) {
	if id == "none" {
		return nil, nil
	}
	catalog, err := b.catalog()
	if err != nil {
		return nil, err
	}
	detail, err := catalog.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Category != external.CategoryArmor {
		return nil, errors.Invalid(field, "%s is not armor", id)
	}
	return &entities.EquipmentSelection{ID: id, Name: detail.Name, Category: string(detail.Category)}, nil
}

func editNames() []string {
	names := make([]string, 0, len(editOps))
	for name := range editOps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func editUsage() string {
	var sb strings.Builder
	for _, name := range editNames() {
		fmt.Fprintf(&sb, "  %s\n", editOps[name].usage)
	}
	return sb.String()
}

func parseInt(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Invalid(field, "%q is not a number", s)
	}
	return n, nil
}

func parseAbility(s string) (entities.Ability, error) {
	a, ok := entities.ParseAbility(s)
	if !ok {
		return "", errors.Invalid("ability", "unknown ability %q", s)
	}
	return a, nil
}

func parseKind(s string) (entities.ProficiencyKind, error) {
	for _, kind := range entities.ProficiencyKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", errors.Invalid("kind", "unknown proficiency kind %q", s)
}
