package engine

import (
	"fmt"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// Validate runs every resolver against c and returns the prioritized
// report. Callers reconcile before validating so fixed proficiencies are
// already in the selection sets.
func Validate(c *entities.Character, t *rules.Tables) *Report {
	return Evaluate(c, t).Report
}

func validateIdentity(c *entities.Character, t *rules.Tables) []ValidationError {
	errs := validateName(c)
	add := func(section, field, msg string, kind Kind) {
		errs = append(errs, ValidationError{Section: section, Field: field, Message: msg, Kind: kind, Priority: PriorityHigh})
	}

	switch race, err := t.Race(c.RaceID); {
	case c.RaceID == "":
		add(SectionRace, "race_id", "Choose a race", KindStructural)
	case err != nil:
		add(SectionRace, "race_id", fmt.Sprintf("Unknown race %q", c.RaceID), KindCombinatorial)
	case c.SubraceID != "":
		if _, ok := race.Subrace(c.SubraceID); !ok {
			add(SectionRace, "subrace_id", fmt.Sprintf("%s is not a %s subrace", c.SubraceID, race.Name), KindCombinatorial)
		}
	case len(race.Subraces) > 0:
		add(SectionRace, "subrace_id", fmt.Sprintf("Choose a %s subrace", race.Name), KindStructural)
	}

	switch _, err := t.Background(c.BackgroundID); {
	case c.BackgroundID == "":
		add(SectionBackground, "background_id", "Choose a background", KindStructural)
	case err != nil:
		add(SectionBackground, "background_id", fmt.Sprintf("Unknown background %q", c.BackgroundID), KindCombinatorial)
	}
	return errs
}
