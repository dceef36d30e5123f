package engine

import (
	"fmt"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// Ability-score generation constants
const (
	PointBuyBudget = 27
	PointBuyMin    = 8
	PointBuyMax    = 15
	ManualMin      = 1
	ManualMax      = 30
	// AbilityCap is the highest total the rules expect without magic
	AbilityCap = 20
)

// StandardArray is the fixed multiset of standard-array values
var StandardArray = []int{15, 14, 13, 12, 10, 8}

var pointBuyCost = map[int]int{8: 0, 9: 1, 10: 2, 11: 3, 12: 4, 13: 5, 14: 7, 15: 9}

// Modifier returns floor((score-10)/2)
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// PointBuyCost returns the cost of a point-buy base value
func PointBuyCost(base int) (int, bool) {
	cost, ok := pointBuyCost[base]
	return cost, ok
}

// PointBuySpent sums the point-buy cost of the six base values.
// Values outside 8..15 are priced at the nearest bound.
func PointBuySpent(base entities.AbilityMap) int {
	spent := 0
	for _, a := range entities.AllAbilities {
		v := base[a]
		if v < PointBuyMin {
			v = PointBuyMin
		}
		if v > PointBuyMax {
			v = PointBuyMax
		}
		spent += pointBuyCost[v]
	}
	return spent
}

// PointBuyRemaining returns the unspent part of the 27-point budget
func PointBuyRemaining(base entities.AbilityMap) int {
	return PointBuyBudget - PointBuySpent(base)
}

// MethodDefaultBase is the base value every ability resets to on a method switch
func MethodDefaultBase(m entities.AbilityMethod) int {
	switch m {
	case entities.MethodPointBuy:
		return PointBuyMin
	case entities.MethodManual:
		return 10
	default:
		return 0
	}
}

// BonusBreakdown explains how one ability total was reached
type BonusBreakdown struct {
	Base     int `json:"base"`
	Racial   int `json:"racial"`
	Feat     int `json:"feat"`
	ASI      int `json:"asi"`
	Total    int `json:"total"`
	Modifier int `json:"modifier"`
}

// AbilityResult is the output of ResolveAbilities
type AbilityResult struct {
	Total     entities.AbilityMap                 `json:"total"`
	Breakdown map[entities.Ability]BonusBreakdown `json:"breakdown"`
}

// ResolveAbilities computes totals from base values, racial bonuses, feat
// increases and ASI choices. Unknown race or feat ids contribute nothing;
// the validator reports them.
func ResolveAbilities(c *entities.Character, t *rules.Tables) *AbilityResult {
	racial := RacialBonuses(c, t)
	feat := FeatBonuses(c, t)
	asi := ASIBonuses(c)

	res := &AbilityResult{
		Total:     make(entities.AbilityMap, len(entities.AllAbilities)),
		Breakdown: make(map[entities.Ability]BonusBreakdown, len(entities.AllAbilities)),
	}
	for _, a := range entities.AllAbilities {
		b := BonusBreakdown{
			Base:   c.AbilityScores.Base[a],
			Racial: racial[a],
			Feat:   feat[a],
			ASI:    asi[a],
		}
		b.Total = b.Base + b.Racial + b.Feat + b.ASI
		b.Modifier = Modifier(b.Total)
		res.Total[a] = b.Total
		res.Breakdown[a] = b
	}
	return res
}

// RacialBonuses returns the effective racial bonus set. A selected subrace
// replaces the race's fixed bonuses; flexible slots add +1 each.
func RacialBonuses(c *entities.Character, t *rules.Tables) entities.AbilityMap {
	out := make(entities.AbilityMap)
	race, err := t.Race(c.RaceID)
	if err != nil {
		return out
	}
	fixed := race.AbilityBonuses
	if c.SubraceID != "" {
		if sub, ok := race.Subrace(c.SubraceID); ok {
			fixed = sub.AbilityBonuses
		}
	}
	for a, v := range fixed {
		out[a] += v
	}
	slots := FlexibleSlots(c, t)
	for i, a := range c.FlexibleBonuses {
		if i >= slots {
			break
		}
		if a.Valid() {
			out[a]++
		}
	}
	return out
}

// FlexibleSlots is the number of flexible +1 slots for the race or subrace
func FlexibleSlots(c *entities.Character, t *rules.Tables) int {
	race, err := t.Race(c.RaceID)
	if err != nil {
		return 0
	}
	if c.SubraceID != "" {
		if sub, ok := race.Subrace(c.SubraceID); ok {
			return sub.FlexibleBonusCount
		}
	}
	return race.FlexibleBonusCount
}

// FeatBonuses returns +1 per feat-granted increase. Feats with several
// options count only when a valid choice is recorded. A repeated feat
// name counts once.
func FeatBonuses(c *entities.Character, t *rules.Tables) entities.AbilityMap {
	out := make(entities.AbilityMap)
	seen := make(map[string]bool, len(c.Feats))
	for _, name := range c.Feats {
		if seen[name] {
			continue
		}
		seen[name] = true
		feat, err := t.Feat(name)
		if err != nil {
			continue
		}
		switch {
		case len(feat.AbilityIncreases) == 1:
			out[feat.AbilityIncreases[0]]++
		case feat.NeedsAbilityChoice():
			if choice, ok := c.FeatAbilityChoices[name]; ok && feat.OffersAbility(choice) {
				out[choice]++
			}
		}
	}
	return out
}

// ASIBonuses returns the increases from valid user ASI choices
func ASIBonuses(c *entities.Character) entities.AbilityMap {
	out := make(entities.AbilityMap)
	for _, choice := range c.ASIChoices {
		if ValidateASIChoice(choice) != nil {
			continue
		}
		switch choice.Mode {
		case entities.ASISingle:
			out[choice.Abilities[0]] += 2
		case entities.ASIDouble:
			out[choice.Abilities[0]]++
			out[choice.Abilities[1]]++
		}
	}
	return out
}

func abilityField(a entities.Ability) string {
	return "ability_scores." + string(a)
}

func requireMethod(c *entities.Character, a entities.Ability, m entities.AbilityMethod) error {
	if !a.Valid() {
		return errors.Invalid("ability_scores", "unknown ability %q", a)
	}
	if c.AbilityScores.Method != m {
		return errors.Rejected(abilityField(a), "ability scores use %s, not %s", c.AbilityScores.Method, m)
	}
	return nil
}

// AssignStandardArray assigns a standard-array value to an ability.
// A value of 0 unassigns. Foreign values and values already used by
// another ability are rejected.
func AssignStandardArray(c *entities.Character, a entities.Ability, value int) (*entities.Character, error) {
	if err := requireMethod(c, a, entities.MethodStandardArray); err != nil {
		return c, err
	}
	if value != 0 {
		if !inStandardArray(value) {
			return c, errors.Invalid(abilityField(a), "%d is not a standard-array value", value)
		}
		for _, other := range entities.AllAbilities {
			if other != a && c.AbilityScores.Base[other] == value {
				return c, errors.Rejected(abilityField(a), "%d is already assigned to %s", value, other.Name())
			}
		}
	}
	out := c.Clone()
	ensureBase(out)
	out.AbilityScores.Base[a] = value
	return out, nil
}

func inStandardArray(v int) bool {
	for _, s := range StandardArray {
		if s == v {
			return true
		}
	}
	return false
}

// SetPointBuy sets a point-buy base value. Values outside 8..15 or that
// would overspend the 27-point budget are rejected.
func SetPointBuy(c *entities.Character, a entities.Ability, value int) (*entities.Character, error) {
	if err := requireMethod(c, a, entities.MethodPointBuy); err != nil {
		return c, err
	}
	if value < PointBuyMin || value > PointBuyMax {
		return c, errors.Invalid(abilityField(a), "point-buy values range from %d to %d", PointBuyMin, PointBuyMax)
	}
	next := c.AbilityScores.Base.Clone()
	if next == nil {
		next = entities.NewAbilityMap(PointBuyMin)
	}
	next[a] = value
	if spent := PointBuySpent(next); spent > PointBuyBudget {
		return c, errors.Rejected(abilityField(a), "point-buy budget of %d exceeded (%d)", PointBuyBudget, spent)
	}
	out := c.Clone()
	out.AbilityScores.Base = next
	return out, nil
}

// IncrementPointBuy raises a point-buy value by one
func IncrementPointBuy(c *entities.Character, a entities.Ability) (*entities.Character, error) {
	return SetPointBuy(c, a, c.AbilityScores.Base[a]+1)
}

// DecrementPointBuy lowers a point-buy value by one
func DecrementPointBuy(c *entities.Character, a entities.Ability) (*entities.Character, error) {
	return SetPointBuy(c, a, c.AbilityScores.Base[a]-1)
}

// SetManualScore sets a free-entry base value
func SetManualScore(c *entities.Character, a entities.Ability, value int) (*entities.Character, error) {
	if err := requireMethod(c, a, entities.MethodManual); err != nil {
		return c, err
	}
	if value < ManualMin || value > ManualMax {
		return c, errors.Invalid(abilityField(a), "scores range from %d to %d", ManualMin, ManualMax)
	}
	out := c.Clone()
	ensureBase(out)
	out.AbilityScores.Base[a] = value
	return out, nil
}

// SwitchMethod changes the generation method. All six base values reset
// to the new method's default and any rolled pool is discarded.
func SwitchMethod(c *entities.Character, m entities.AbilityMethod) (*entities.Character, error) {
	if !m.Valid() {
		return c, errors.Invalid("ability_scores.method", "unknown method %q", m)
	}
	out := c.Clone()
	out.AbilityScores = entities.AbilityScores{
		Method: m,
		Base:   entities.NewAbilityMap(MethodDefaultBase(m)),
	}
	return out, nil
}

// ApplyRolledPool replaces the rolled pool. Every assignment is cleared,
// so a reroll always starts from an unassigned pool.
func ApplyRolledPool(c *entities.Character, rolls []entities.AbilityRoll) (*entities.Character, error) {
	if c.AbilityScores.Method != entities.MethodRoll {
		return c, errors.Rejected("ability_scores.rolls", "ability scores use %s, not roll", c.AbilityScores.Method)
	}
	if len(rolls) != len(entities.AllAbilities) {
		return c, errors.Invalid("ability_scores.rolls", "a rolled pool has %d entries, got %d", len(entities.AllAbilities), len(rolls))
	}
	seen := make(map[string]bool, len(rolls))
	for _, r := range rolls {
		if r.ID == "" || seen[r.ID] {
			return c, errors.Invalid("ability_scores.rolls", "roll ids must be unique and non-empty")
		}
		seen[r.ID] = true
	}
	out := c.Clone()
	out.AbilityScores.Base = entities.NewAbilityMap(0)
	out.AbilityScores.Rolls = append([]entities.AbilityRoll(nil), rolls...)
	out.AbilityScores.RollAssignments = nil
	return out, nil
}

// AssignRoll assigns a pool entry to an ability. An empty roll id
// unassigns. A pool entry already assigned elsewhere is rejected.
func AssignRoll(c *entities.Character, a entities.Ability, rollID string) (*entities.Character, error) {
	if err := requireMethod(c, a, entities.MethodRoll); err != nil {
		return c, err
	}
	out := c.Clone()
	ensureBase(out)
	if rollID == "" {
		delete(out.AbilityScores.RollAssignments, a)
		out.AbilityScores.Base[a] = 0
		return out, nil
	}
	roll, ok := c.AbilityScores.Roll(rollID)
	if !ok {
		return c, errors.Invalid(abilityField(a), "roll %q is not in the current pool", rollID)
	}
	for other, id := range c.AbilityScores.RollAssignments {
		if id == rollID && other != a {
			return c, errors.Rejected(abilityField(a), "roll %q is already assigned to %s", rollID, other.Name())
		}
	}
	if out.AbilityScores.RollAssignments == nil {
		out.AbilityScores.RollAssignments = make(map[entities.Ability]string)
	}
	out.AbilityScores.RollAssignments[a] = rollID
	out.AbilityScores.Base[a] = roll.Value
	return out, nil
}

// AssignFlexibleBonuses records which abilities the race's flexible +1
// slots go to. Assignments must be distinct, not excluded by the race and
// no more than the slot count.
func AssignFlexibleBonuses(c *entities.Character, t *rules.Tables, abilities []entities.Ability) (*entities.Character, error) {
	race, err := t.Race(c.RaceID)
	if err != nil {
		return c, errors.Rejected("flexible_bonuses", "choose a race before assigning flexible bonuses")
	}
	slots := FlexibleSlots(c, t)
	if len(abilities) > slots {
		return c, errors.Rejected("flexible_bonuses", "%s grants %d flexible bonuses, got %d", race.Name, slots, len(abilities))
	}
	seen := make(map[entities.Ability]bool, len(abilities))
	for _, a := range abilities {
		if !a.Valid() {
			return c, errors.Invalid("flexible_bonuses", "unknown ability %q", a)
		}
		if seen[a] {
			return c, errors.Rejected("flexible_bonuses", "%s can take only one flexible bonus", a.Name())
		}
		seen[a] = true
		for _, ex := range race.FlexibleExcluded {
			if ex == a {
				return c, errors.Rejected("flexible_bonuses", "%s flexible bonuses cannot go to %s", race.Name, a.Name())
			}
		}
	}
	out := c.Clone()
	out.FlexibleBonuses = append([]entities.Ability(nil), abilities...)
	return out, nil
}

func ensureBase(c *entities.Character) {
	if c.AbilityScores.Base == nil {
		c.AbilityScores.Base = entities.NewAbilityMap(MethodDefaultBase(c.AbilityScores.Method))
	}
}

func validateAbilities(c *entities.Character, t *rules.Tables, totals entities.AbilityMap) []ValidationError {
	var errs []ValidationError
	add := func(field, msg string, kind Kind, p Priority) {
		errs = append(errs, ValidationError{Section: SectionAbilities, Field: field, Message: msg, Kind: kind, Priority: p})
	}
	scores := c.AbilityScores
	if !scores.Method.Valid() {
		add("ability_scores.method", fmt.Sprintf("Unknown ability score method %q", scores.Method), KindStructural, PriorityHigh)
		return errs
	}

	switch scores.Method {
	case entities.MethodStandardArray:
		used := make(map[int]entities.Ability)
		for _, a := range entities.AllAbilities {
			v := scores.Base[a]
			switch {
			case v == 0:
				add(abilityField(a), fmt.Sprintf("%s has no standard-array value assigned", a.Name()), KindStructural, PriorityHigh)
			case !inStandardArray(v):
				add(abilityField(a), fmt.Sprintf("%s value %d is not part of the standard array", a.Name(), v), KindCombinatorial, PriorityHigh)
			default:
				if prev, dup := used[v]; dup {
					add(abilityField(a), fmt.Sprintf("%s reuses %d, already assigned to %s", a.Name(), v, prev.Name()), KindCombinatorial, PriorityHigh)
				}
				used[v] = a
			}
		}
	case entities.MethodPointBuy:
		for _, a := range entities.AllAbilities {
			if v := scores.Base[a]; v < PointBuyMin || v > PointBuyMax {
				add(abilityField(a), fmt.Sprintf("%s point-buy value must be between %d and %d", a.Name(), PointBuyMin, PointBuyMax), KindRange, PriorityHigh)
			}
		}
		switch remaining := PointBuyRemaining(scores.Base); {
		case remaining < 0:
			add("ability_scores", fmt.Sprintf("Point buy exceeds the %d-point budget by %d", PointBuyBudget, -remaining), KindCombinatorial, PriorityHigh)
		case remaining > 0:
			add("ability_scores", fmt.Sprintf("%d point-buy points unspent", remaining), KindBudget, PriorityLow)
		}
	case entities.MethodRoll:
		if len(scores.Rolls) == 0 {
			add("ability_scores.rolls", "Roll ability scores before assigning them", KindStructural, PriorityHigh)
			break
		}
		owner := make(map[string]entities.Ability)
		for _, a := range entities.AllAbilities {
			id, ok := scores.RollAssignments[a]
			if !ok {
				add(abilityField(a), fmt.Sprintf("%s has no rolled value assigned", a.Name()), KindStructural, PriorityHigh)
				continue
			}
			roll, found := scores.Roll(id)
			if !found {
				add(abilityField(a), fmt.Sprintf("%s is assigned a roll that is not in the pool", a.Name()), KindCombinatorial, PriorityHigh)
				continue
			}
			if prev, dup := owner[id]; dup {
				add(abilityField(a), fmt.Sprintf("%s reuses the roll already assigned to %s", a.Name(), prev.Name()), KindCombinatorial, PriorityHigh)
			}
			owner[id] = a
			if scores.Base[a] != roll.Value {
				add(abilityField(a), fmt.Sprintf("%s base %d does not match its roll of %d", a.Name(), scores.Base[a], roll.Value), KindCombinatorial, PriorityHigh)
			}
		}
	case entities.MethodManual:
		for _, a := range entities.AllAbilities {
			if v := scores.Base[a]; v < ManualMin || v > ManualMax {
				add(abilityField(a), fmt.Sprintf("%s must be between %d and %d", a.Name(), ManualMin, ManualMax), KindRange, PriorityHigh)
			}
		}
	}

	if race, err := t.Race(c.RaceID); err == nil {
		slots := FlexibleSlots(c, t)
		seen := make(map[entities.Ability]bool)
		for _, a := range c.FlexibleBonuses {
			if seen[a] {
				add("flexible_bonuses", fmt.Sprintf("%s has more than one flexible bonus", a.Name()), KindCombinatorial, PriorityHigh)
			}
			seen[a] = true
			for _, ex := range race.FlexibleExcluded {
				if ex == a {
					add("flexible_bonuses", fmt.Sprintf("%s flexible bonuses cannot go to %s", race.Name, a.Name()), KindCombinatorial, PriorityHigh)
				}
			}
		}
		switch n := len(c.FlexibleBonuses); {
		case n > slots:
			add("flexible_bonuses", fmt.Sprintf("%d flexible bonuses assigned but only %d available", n, slots), KindBudget, PriorityMedium)
		case n < slots:
			add("flexible_bonuses", fmt.Sprintf("%d flexible bonus(es) unassigned", slots-n), KindBudget, PriorityLow)
		}
	}

	for _, a := range entities.AllAbilities {
		if totals[a] > AbilityCap {
			add(abilityField(a), fmt.Sprintf("%s total %d is above %d", a.Name(), totals[a], AbilityCap), KindRange, PriorityMedium)
		}
	}
	return errs
}
