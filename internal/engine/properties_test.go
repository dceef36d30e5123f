package engine_test

import (
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils/builders"
)

var abilityGen = rapid.SampledFrom(entities.AllAbilities)

func TestProperty_StandardArrayNeverDuplicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := builders.NewCharacterBuilder().Build()
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			a := abilityGen.Draw(t, "ability")
			v := rapid.SampledFrom([]int{0, 8, 10, 11, 12, 13, 14, 15, 16}).Draw(t, "value")
			c, _ = engine.AssignStandardArray(c, a, v)
		}

		var assigned []int
		seen := make(map[int]bool)
		for _, a := range entities.AllAbilities {
			v := c.AbilityScores.Base[a]
			if v == 0 {
				continue
			}
			if seen[v] {
				t.Fatalf("value %d assigned twice", v)
			}
			seen[v] = true
			assigned = append(assigned, v)
		}
		for _, v := range assigned {
			if !contains(engine.StandardArray, v) {
				t.Fatalf("foreign value %d stored", v)
			}
		}
		if len(assigned) == 6 {
			sort.Sort(sort.Reverse(sort.IntSlice(assigned)))
			for i, v := range assigned {
				if v != engine.StandardArray[i] {
					t.Fatalf("full assignment %v is not the standard array", assigned)
				}
			}
		}
	})
}

func TestProperty_PointBuyStaysInBudget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := builders.NewCharacterBuilder().WithPointBuy(8, 8, 8, 8, 8, 8).Build()
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			a := abilityGen.Draw(t, "ability")
			before := c.AbilityScores.Base[a]
			var err error
			if rapid.Bool().Draw(t, "increment") {
				c, err = engine.IncrementPointBuy(c, a)
			} else {
				c, err = engine.DecrementPointBuy(c, a)
			}
			if err != nil && c.AbilityScores.Base[a] != before {
				t.Fatalf("rejected edit changed %s from %d to %d", a, before, c.AbilityScores.Base[a])
			}
			for _, ab := range entities.AllAbilities {
				if v := c.AbilityScores.Base[ab]; v < engine.PointBuyMin || v > engine.PointBuyMax {
					t.Fatalf("%s base %d out of range", ab, v)
				}
			}
			if spent := engine.PointBuySpent(c.AbilityScores.Base); spent > engine.PointBuyBudget {
				t.Fatalf("spent %d points", spent)
			}
		}
	})
}

func TestProperty_SubraceBonusReplacesRace(t *testing.T) {
	tables := rules.MustDefault()
	type pair struct{ race, subrace string }
	var pairs []pair
	for _, id := range tables.RaceIDs() {
		race, _ := tables.Race(id)
		for _, sub := range race.Subraces {
			pairs = append(pairs, pair{id, sub.ID})
		}
	}

	rapid.Check(t, func(t *rapid.T) {
		p := rapid.SampledFrom(pairs).Draw(t, "pair")
		c := builders.NewCharacterBuilder().WithRace(p.race, p.subrace).Build()
		sub, err := tables.Subrace(p.race, p.subrace)
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}

		got := engine.RacialBonuses(c, tables)
		for _, a := range entities.AllAbilities {
			if got[a] != sub.AbilityBonuses[a] {
				t.Fatalf("%s/%s %s bonus %d, want %d", p.race, p.subrace, a, got[a], sub.AbilityBonuses[a])
			}
		}
	})
}

func TestProperty_TotalLevelNeverExceedsCap(t *testing.T) {
	tables := rules.MustDefault()
	classIDs := tables.ClassIDs()

	rapid.Check(t, func(t *rapid.T) {
		c := builders.NewCharacterBuilder().Build()
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				c, _ = engine.AddClassEntry(c, tables, rapid.SampledFrom(classIDs).Draw(t, "class"))
			case 1:
				if len(c.Classes) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(c.Classes)-1).Draw(t, "index")
				level := rapid.IntRange(1, 20).Draw(t, "level")
				before := c.Classes[idx].Level
				next, err := engine.SetClassLevel(c, idx, level)
				if err != nil && next.Classes[idx].Level != before {
					t.Fatalf("rejected level change stored %d", next.Classes[idx].Level)
				}
				if level > engine.MaxLevelFor(c, idx) && err == nil {
					t.Fatalf("level %d above ceiling %d accepted", level, engine.MaxLevelFor(c, idx))
				}
				c = next
			case 2:
				if len(c.Classes) == 0 {
					continue
				}
				c, _ = engine.RemoveClassEntry(c, rapid.IntRange(0, len(c.Classes)-1).Draw(t, "remove"))
			}
			if total := c.TotalLevel(); total > engine.MaxTotalLevel {
				t.Fatalf("total level %d", total)
			}
		}
	})
}

func TestProperty_DoubleASINeedsTwoDistinct(t *testing.T) {
	tables := rules.MustDefault()

	rapid.Check(t, func(t *rapid.T) {
		c := builders.NewCharacterBuilder().WithClass("fighter", 20).Build()
		abilities := rapid.SliceOfN(abilityGen, 0, 4).Draw(t, "abilities")
		choice := entities.ASIChoice{Mode: entities.ASIDouble, Abilities: abilities}

		out, err := engine.AddASIChoice(c, tables, choice)

		valid := len(abilities) == 2 && abilities[0] != abilities[1]
		if valid && err != nil {
			t.Fatalf("valid choice %v rejected: %v", abilities, err)
		}
		if !valid {
			if err == nil {
				t.Fatalf("invalid choice %v accepted", abilities)
			}
			if len(out.ASIChoices) != 0 {
				t.Fatalf("rejected choice appended")
			}
		}
	})
}

func TestProperty_ResolversArePure(t *testing.T) {
	tables := rules.MustDefault()

	rapid.Check(t, func(t *rapid.T) {
		c := builders.NewCharacterBuilder().
			WithRace(rapid.SampledFrom(tables.RaceIDs()).Draw(t, "race")).
			WithBackground(rapid.SampledFrom(tables.BackgroundIDs()).Draw(t, "background")).
			WithClass(rapid.SampledFrom(tables.ClassIDs()).Draw(t, "class"), rapid.IntRange(1, 20).Draw(t, "level")).
			WithStandardArray(15, 14, 13, 12, 10, 8).
			Build()
		snapshot := c.Clone()

		first := engine.Evaluate(c, tables)
		second := engine.Evaluate(c, tables)

		if len(first.Report.Errors) != len(second.Report.Errors) {
			t.Fatalf("evaluation is not deterministic")
		}
		for i := range first.Report.Errors {
			if first.Report.Errors[i] != second.Report.Errors[i] {
				t.Fatalf("error %d differs: %v vs %v", i, first.Report.Errors[i], second.Report.Errors[i])
			}
		}
		if c.RaceID != snapshot.RaceID || len(c.Skills) != len(snapshot.Skills) {
			t.Fatalf("evaluation mutated its input")
		}
	})
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
