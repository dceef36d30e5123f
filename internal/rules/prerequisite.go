package rules

import (
	"fmt"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

// Prerequisite is a structured feat requirement. The concrete types are
// MinimumAbility, RequiresSpellcasting, RequiresArmorProficiency and
// NoPrerequisite.
type Prerequisite interface {
	Describe() string
	prerequisite()
}

// MinimumAbility requires an ability total of at least Score
type MinimumAbility struct {
	Ability entities.Ability
	Score   int
}

// Describe implements Prerequisite
func (p MinimumAbility) Describe() string {
	return fmt.Sprintf("%s %d or higher", p.Ability.Name(), p.Score)
}

func (MinimumAbility) prerequisite() {}

// RequiresSpellcasting requires at least one spellcasting class or subclass
type RequiresSpellcasting struct{}

// Describe implements Prerequisite
func (RequiresSpellcasting) Describe() string {
	return "The ability to cast at least one spell"
}

func (RequiresSpellcasting) prerequisite() {}

// RequiresArmorProficiency requires proficiency with an armor tier
type RequiresArmorProficiency struct {
	Tier ArmorTier
}

// Describe implements Prerequisite
func (p RequiresArmorProficiency) Describe() string {
	if p.Tier == ArmorShields {
		return "Proficiency with shields"
	}
	return fmt.Sprintf("Proficiency with %s armor", p.Tier)
}

func (RequiresArmorProficiency) prerequisite() {}

// NoPrerequisite always passes
type NoPrerequisite struct{}

// Describe implements Prerequisite
func (NoPrerequisite) Describe() string {
	return "None"
}

func (NoPrerequisite) prerequisite() {}

// prerequisiteSpec is the YAML shape of a prerequisite
type prerequisiteSpec struct {
	Kind    string           `yaml:"kind"`
	Ability entities.Ability `yaml:"ability"`
	Score   int              `yaml:"score"`
	Tier    ArmorTier        `yaml:"tier"`
}

func (s prerequisiteSpec) build() (Prerequisite, error) {
	switch s.Kind {
	case "minimum-ability":
		if !s.Ability.Valid() {
			return nil, errors.InvalidArgumentf("minimum-ability prerequisite has unknown ability %q", s.Ability)
		}
		if s.Score < 1 || s.Score > 30 {
			return nil, errors.InvalidArgumentf("minimum-ability prerequisite score %d out of range", s.Score)
		}
		return MinimumAbility{Ability: s.Ability, Score: s.Score}, nil
	case "spellcasting":
		return RequiresSpellcasting{}, nil
	case "armor-proficiency":
		if !validTier(s.Tier) {
			return nil, errors.InvalidArgumentf("armor-proficiency prerequisite has unknown tier %q", s.Tier)
		}
		return RequiresArmorProficiency{Tier: s.Tier}, nil
	case "none", "":
		return NoPrerequisite{}, nil
	default:
		return nil, errors.InvalidArgumentf("unknown prerequisite kind %q", s.Kind)
	}
}

func validTier(t ArmorTier) bool {
	switch t {
	case ArmorLight, ArmorMedium, ArmorHeavy, ArmorShields:
		return true
	}
	return false
}
