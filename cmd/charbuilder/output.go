package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

// readCharacter loads a character JSON file
func readCharacter(path string) (*entities.Character, error) {
	data, err := os.ReadFile(path) // nolint:gosec // path comes from the operator
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("character file %s not found", path)
		}
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read character file")
	}

	c := entities.NewCharacter()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse character file")
	}
	return c, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	return nil
}

func printCorrections(w io.Writer, corrections []engine.Correction) {
	if len(corrections) == 0 {
		return
	}
	fmt.Fprintf(w, "Corrections (%d):\n", len(corrections))
	for _, c := range corrections {
		fmt.Fprintf(w, "  - [%s] %s: %s\n", c.Kind, c.Field, c.Message)
	}
}

func printReport(w io.Writer, report *engine.Report) {
	if len(report.Errors) == 0 {
		fmt.Fprintln(w, "✅ No validation errors")
		return
	}

	status := "not blocking"
	if report.Blocking() {
		status = "blocking"
	}
	fmt.Fprintf(w, "Validation errors (%d, %s):\n", len(report.Errors), status)
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  %-6s %-10s %-24s %s\n", strings.ToUpper(string(e.Priority)), e.Section, e.Field, e.Message)
	}
}

func printCharacterSummary(w io.Writer, c *entities.Character) {
	name := c.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "%s  %s\n", c.ID, name)

	var classes []string
	for _, entry := range c.Classes {
		label := fmt.Sprintf("%s %d", entry.ClassID, entry.Level)
		if entry.SubclassID != "" {
			label += " (" + entry.SubclassID + ")"
		}
		classes = append(classes, label)
	}

	race := c.RaceID
	if c.SubraceID != "" {
		race += "/" + c.SubraceID
	}
	fmt.Fprintf(w, "  player: %s  race: %s  background: %s  classes: %s\n",
		orDash(c.PlayerID), orDash(race), orDash(c.BackgroundID), orDash(strings.Join(classes, ", ")))
}

func printAbilities(w io.Writer, abilities *engine.AbilityResult) {
	fmt.Fprintln(w, "Ability scores:")
	for _, a := range entities.AllAbilities {
		total := abilities.Total[a]
		fmt.Fprintf(w, "  %s %2d (%+d)\n", strings.ToUpper(string(a)), total, engine.Modifier(total))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
