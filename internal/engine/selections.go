package engine

import (
	"fmt"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// MaxWeapons caps the number of selected weapons
const MaxWeapons = 5

// SetRace selects a race. A subrace that does not belong to the new race
// is cleared. An empty id clears the race.
func SetRace(c *entities.Character, t *rules.Tables, raceID string) (*entities.Character, error) {
	out := c.Clone()
	if raceID == "" {
		out.RaceID, out.SubraceID = "", ""
		return out, nil
	}
	race, err := t.Race(raceID)
	if err != nil {
		return c, err
	}
	out.RaceID = raceID
	if _, ok := race.Subrace(out.SubraceID); !ok {
		out.SubraceID = ""
	}
	return out, nil
}

// SetSubrace selects a subrace of the current race. An empty id clears it.
func SetSubrace(c *entities.Character, t *rules.Tables, subraceID string) (*entities.Character, error) {
	if subraceID != "" {
		if _, err := t.Subrace(c.RaceID, subraceID); err != nil {
			return c, err
		}
	}
	out := c.Clone()
	out.SubraceID = subraceID
	return out, nil
}

// SetBackground selects a background. An empty id clears it.
func SetBackground(c *entities.Character, t *rules.Tables, backgroundID string) (*entities.Character, error) {
	if backgroundID != "" {
		if _, err := t.Background(backgroundID); err != nil {
			return c, err
		}
	}
	out := c.Clone()
	out.BackgroundID = backgroundID
	return out, nil
}

// SetAlignment stores the alignment text
func SetAlignment(c *entities.Character, alignment string) (*entities.Character, error) {
	out := c.Clone()
	out.Alignment = alignment
	return out, nil
}

// SelectWeapon adds a weapon. A sixth weapon or a repeat is rejected.
func SelectWeapon(c *entities.Character, w entities.EquipmentSelection) (*entities.Character, error) {
	if w.ID == "" {
		return c, errors.Invalid("weapons", "weapon id is required")
	}
	for _, existing := range c.Weapons {
		if existing.ID == w.ID {
			return c, errors.Rejected("weapons", "%s is already selected", w.Name)
		}
	}
	if len(c.Weapons) >= MaxWeapons {
		return c, errors.Rejected("weapons", "at most %d weapons can be selected", MaxWeapons)
	}
	out := c.Clone()
	out.Weapons = append(out.Weapons, w)
	return out, nil
}

// RemoveWeapon drops a weapon by id
func RemoveWeapon(c *entities.Character, id string) (*entities.Character, error) {
	out := c.Clone()
	kept := out.Weapons[:0]
	for _, w := range out.Weapons {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	if len(kept) == len(c.Weapons) {
		return c, errors.NotFoundf("weapon %s is not selected", id).WithField("weapons")
	}
	out.Weapons = kept
	return out, nil
}

// SetArmor selects body armor; nil clears it
func SetArmor(c *entities.Character, armor *entities.EquipmentSelection) (*entities.Character, error) {
	out := c.Clone()
	if armor != nil {
		a := *armor
		out.Armor = &a
	} else {
		out.Armor = nil
	}
	return out, nil
}

// SetShield selects a shield; nil clears it
func SetShield(c *entities.Character, shield *entities.EquipmentSelection) (*entities.Character, error) {
	out := c.Clone()
	if shield != nil {
		s := *shield
		out.Shield = &s
	} else {
		out.Shield = nil
	}
	return out, nil
}

// AddItem adds a catalog item id to the inventory selection
func AddItem(c *entities.Character, id string) (*entities.Character, error) {
	if id == "" {
		return c, errors.Invalid("items", "item id is required")
	}
	out := c.Clone()
	out.Items = entities.NormalizeSet(append(out.Items, id))
	return out, nil
}

// RemoveItem drops an item id
func RemoveItem(c *entities.Character, id string) (*entities.Character, error) {
	out := c.Clone()
	out.Items = removeID(out.Items, id)
	return out, nil
}

// SelectSpell adds a spell id. Spells are accepted for any class; the
// validator flags spells on a character that cannot cast.
func SelectSpell(c *entities.Character, id string) (*entities.Character, error) {
	if id == "" {
		return c, errors.Invalid("spells", "spell id is required")
	}
	out := c.Clone()
	out.Spells = entities.NormalizeSet(append(out.Spells, id))
	return out, nil
}

// RemoveSpell drops a spell id
func RemoveSpell(c *entities.Character, id string) (*entities.Character, error) {
	out := c.Clone()
	out.Spells = removeID(out.Spells, id)
	return out, nil
}

func removeID(ids []string, id string) []string {
	var out []string
	for _, s := range ids {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}

func validateEquipment(c *entities.Character) []ValidationError {
	var errs []ValidationError
	if n := len(c.Weapons); n > MaxWeapons {
		errs = append(errs, ValidationError{
			Section: SectionEquipment, Field: "weapons",
			Message: fmt.Sprintf("%d weapons selected but at most %d are allowed", n, MaxWeapons),
			Kind:    KindBudget, Priority: PriorityMedium,
		})
	}
	if c.Shield != nil {
		for _, w := range c.Weapons {
			if w.TwoHanded {
				errs = append(errs, ValidationError{
					Section: SectionEquipment, Field: "shield",
					Message: fmt.Sprintf("A shield cannot be used with the two-handed %s", w.Name),
					Kind:    KindCombinatorial, Priority: PriorityHigh,
				})
				break
			}
		}
	}
	return errs
}

func validateSpells(c *entities.Character, t *rules.Tables) []ValidationError {
	if len(c.Spells) == 0 || IsSpellcaster(c, t) {
		return nil
	}
	return []ValidationError{{
		Section: SectionSpells, Field: "spells",
		Message: "Spells are selected but no class can cast them",
		Kind:    KindCombinatorial, Priority: PriorityMedium,
	}}
}
