package entities

import "strings"

// Ability is one of the six core ability ids
type Ability string

// Ability ids
const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// AllAbilities lists the abilities in sheet order
var AllAbilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

var abilityNames = map[Ability]string{
	Strength:     "Strength",
	Dexterity:    "Dexterity",
	Constitution: "Constitution",
	Intelligence: "Intelligence",
	Wisdom:       "Wisdom",
	Charisma:     "Charisma",
}

// Valid reports whether a is one of the six ability ids
func (a Ability) Valid() bool {
	_, ok := abilityNames[a]
	return ok
}

// Name returns the display name, e.g. "Strength"
func (a Ability) Name() string {
	if n, ok := abilityNames[a]; ok {
		return n
	}
	return string(a)
}

// ParseAbility accepts either the short id ("str") or the full name ("strength")
func ParseAbility(s string) (Ability, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if a := Ability(s); a.Valid() {
		return a, true
	}
	for a, n := range abilityNames {
		if strings.ToLower(n) == s {
			return a, true
		}
	}
	return "", false
}

// AbilityMap maps abilities to a number (base values, bonuses or totals)
type AbilityMap map[Ability]int

// NewAbilityMap returns a map with all six abilities set to value
func NewAbilityMap(value int) AbilityMap {
	m := make(AbilityMap, len(AllAbilities))
	for _, a := range AllAbilities {
		m[a] = value
	}
	return m
}

// Clone copies the map; a nil map clones to nil
func (m AbilityMap) Clone() AbilityMap {
	if m == nil {
		return nil
	}
	out := make(AbilityMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AbilityMethod is the ability-score generation method
type AbilityMethod string

// Generation methods
const (
	MethodStandardArray AbilityMethod = "standard-array"
	MethodPointBuy      AbilityMethod = "point-buy"
	MethodRoll          AbilityMethod = "roll"
	MethodManual        AbilityMethod = "manual"
)

// Valid reports whether m is a known method
func (m AbilityMethod) Valid() bool {
	switch m {
	case MethodStandardArray, MethodPointBuy, MethodRoll, MethodManual:
		return true
	}
	return false
}

// AbilityRoll is one tagged entry of a rolled pool
type AbilityRoll struct {
	ID      string `json:"id"`
	Value   int    `json:"value"`
	Dice    []int  `json:"dice,omitempty"`
	Dropped int    `json:"dropped,omitempty"`
}

// AbilityScores holds the generation method and the base values only.
// Racial, feat and ASI bonuses are derived, never stored here.
type AbilityScores struct {
	Method AbilityMethod `json:"method"`
	Base   AbilityMap    `json:"base"`
	// Rolls is the current pool when Method is roll
	Rolls []AbilityRoll `json:"rolls,omitempty"`
	// RollAssignments maps an ability to the roll id assigned to it
	RollAssignments map[Ability]string `json:"roll_assignments,omitempty"`
}

// Clone deep-copies the scores
func (s AbilityScores) Clone() AbilityScores {
	out := AbilityScores{
		Method: s.Method,
		Base:   s.Base.Clone(),
	}
	if s.Rolls != nil {
		out.Rolls = make([]AbilityRoll, len(s.Rolls))
		for i, r := range s.Rolls {
			r.Dice = append([]int(nil), r.Dice...)
			out.Rolls[i] = r
		}
	}
	if s.RollAssignments != nil {
		out.RollAssignments = make(map[Ability]string, len(s.RollAssignments))
		for k, v := range s.RollAssignments {
			out.RollAssignments[k] = v
		}
	}
	return out
}

// Roll returns the pool entry with the given id
func (s AbilityScores) Roll(id string) (AbilityRoll, bool) {
	for _, r := range s.Rolls {
		if r.ID == id {
			return r, true
		}
	}
	return AbilityRoll{}, false
}

// ASIMode distinguishes the two shapes of an ability-score improvement
type ASIMode string

// ASI modes
const (
	ASISingle ASIMode = "single"
	ASIDouble ASIMode = "double"
)

// ASIChoice is a user-made ability-score improvement taken instead of a feat
type ASIChoice struct {
	Mode      ASIMode   `json:"mode"`
	Abilities []Ability `json:"abilities"`
}
