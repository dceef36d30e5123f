package engine

import (
	"fmt"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// MaxTotalLevel is the cap on the sum of all class levels
const MaxTotalLevel = 20

// MaxLevelFor is the highest level the entry at index may take given the
// levels of every other entry.
func MaxLevelFor(c *entities.Character, index int) int {
	others := 0
	for i, e := range c.Classes {
		if i != index {
			others += e.Level
		}
	}
	return MaxTotalLevel - others
}

func classField(index int, name string) string {
	return fmt.Sprintf("classes.%d.%s", index, name)
}

func checkIndex(c *entities.Character, index int) error {
	if index < 0 || index >= len(c.Classes) {
		return errors.OutOfRangef("class entry %d does not exist", index).WithField("classes")
	}
	return nil
}

// SetClassLevel changes the level of one entry. Levels below 1 or above
// the entry's ceiling are rejected and the level stays as it was.
func SetClassLevel(c *entities.Character, index, level int) (*entities.Character, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	if level < 1 {
		return c, errors.Invalid(classField(index, "level"), "class level must be at least 1")
	}
	if ceiling := MaxLevelFor(c, index); level > ceiling {
		return c, errors.Rejected(classField(index, "level"), "only %d level(s) available for this class", ceiling)
	}
	out := c.Clone()
	out.Classes[index].Level = level
	return out, nil
}

// AddClassEntry appends a class at level 1
func AddClassEntry(c *entities.Character, t *rules.Tables, classID string) (*entities.Character, error) {
	if _, err := t.Class(classID); err != nil {
		return c, err
	}
	for _, e := range c.Classes {
		if e.ClassID == classID {
			return c, errors.Rejected("classes", "%s is already one of this character's classes", classID)
		}
	}
	if c.TotalLevel() >= MaxTotalLevel {
		return c, errors.Rejected("classes", "all %d levels are already assigned", MaxTotalLevel)
	}
	out := c.Clone()
	out.Classes = append(out.Classes, entities.ClassEntry{ClassID: classID, Level: 1})
	return out, nil
}

// RemoveClassEntry drops the entry at index. Removing the first entry
// promotes the next one to primary class.
func RemoveClassEntry(c *entities.Character, index int) (*entities.Character, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	out := c.Clone()
	out.Classes = append(out.Classes[:index], out.Classes[index+1:]...)
	return out, nil
}

// SetClassID replaces the class of one entry. The subclass is kept here;
// reconciliation clears it when it no longer belongs to the class.
func SetClassID(c *entities.Character, t *rules.Tables, index int, classID string) (*entities.Character, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	if _, err := t.Class(classID); err != nil {
		return c, err
	}
	for i, e := range c.Classes {
		if i != index && e.ClassID == classID {
			return c, errors.Rejected(classField(index, "class_id"), "%s is already one of this character's classes", classID)
		}
	}
	out := c.Clone()
	out.Classes[index].ClassID = classID
	return out, nil
}

// SetSubclass picks a subclass for one entry. An empty id clears it.
func SetSubclass(c *entities.Character, t *rules.Tables, index int, subclassID string) (*entities.Character, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	entry := c.Classes[index]
	if subclassID != "" {
		cls, err := t.Class(entry.ClassID)
		if err != nil {
			return c, err
		}
		sub, ok := cls.Subclass(subclassID)
		if !ok {
			return c, errors.Invalid(classField(index, "subclass_id"), "%s is not a %s subclass", subclassID, cls.Name)
		}
		if sub.UnlockLevel > entry.Level {
			return c, errors.Rejected(classField(index, "subclass_id"), "%s unlocks at %s level %d", sub.Name, cls.Name, sub.UnlockLevel)
		}
	}
	out := c.Clone()
	out.Classes[index].SubclassID = subclassID
	return out, nil
}

// AvailableSubclasses lists the subclasses unlocked at the entry's level
func AvailableSubclasses(c *entities.Character, t *rules.Tables, index int) []*rules.SubclassDefinition {
	if index < 0 || index >= len(c.Classes) {
		return nil
	}
	entry := c.Classes[index]
	cls, err := t.Class(entry.ClassID)
	if err != nil {
		return nil
	}
	var out []*rules.SubclassDefinition
	for _, s := range cls.Subclasses {
		if s.UnlockLevel <= entry.Level {
			out = append(out, s)
		}
	}
	return out
}

func validateLevels(c *entities.Character, t *rules.Tables) []ValidationError {
	var errs []ValidationError
	add := func(field, msg string, kind Kind, p Priority) {
		errs = append(errs, ValidationError{Section: SectionClass, Field: field, Message: msg, Kind: kind, Priority: p})
	}
	if len(c.Classes) == 0 {
		add("classes", "Choose a class", KindStructural, PriorityHigh)
		return errs
	}
	seen := make(map[string]bool, len(c.Classes))
	for i, e := range c.Classes {
		cls, err := t.Class(e.ClassID)
		if err != nil {
			if e.ClassID == "" {
				add(classField(i, "class_id"), "Choose a class", KindStructural, PriorityHigh)
			} else {
				add(classField(i, "class_id"), fmt.Sprintf("Unknown class %q", e.ClassID), KindCombinatorial, PriorityHigh)
			}
			continue
		}
		if seen[e.ClassID] {
			add(classField(i, "class_id"), fmt.Sprintf("%s is listed more than once", cls.Name), KindCombinatorial, PriorityHigh)
		}
		seen[e.ClassID] = true
		if e.Level < 1 {
			add(classField(i, "level"), fmt.Sprintf("%s level must be at least 1", cls.Name), KindRange, PriorityHigh)
		}
		if e.SubclassID != "" {
			sub, ok := cls.Subclass(e.SubclassID)
			switch {
			case !ok:
				add(classField(i, "subclass_id"), fmt.Sprintf("%s is not a %s subclass", e.SubclassID, cls.Name), KindCombinatorial, PriorityHigh)
			case sub.UnlockLevel > e.Level:
				add(classField(i, "subclass_id"), fmt.Sprintf("%s unlocks at %s level %d", sub.Name, cls.Name, sub.UnlockLevel), KindCombinatorial, PriorityHigh)
			}
		}
	}
	if total := c.TotalLevel(); total > MaxTotalLevel {
		add("classes", fmt.Sprintf("Total level %d exceeds %d", total, MaxTotalLevel), KindCombinatorial, PriorityHigh)
	}
	return errs
}
