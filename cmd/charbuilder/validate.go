package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/clients/external"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
)

// validationResult is the JSON shape of the validate command
type validationResult struct {
	Character   *entities.Character `json:"character"`
	Corrections []engine.Correction `json:"corrections"`
	Report      *engine.Report      `json:"report"`
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		withCatalog bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Reconcile and validate a character JSON file",
		Long: `Load a character from FILE, apply the automatic corrections and print the
prioritized validation report. Exits 1 when any error blocks submission.

With --with-catalog the tool pool is extended with the catalog's tools and
weapon details (two-handed) are refreshed from the catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := readCharacter(args[0])
			if err != nil {
				return err
			}

			tables := a.tables
			if withCatalog {
				catalog, err := a.catalogClient()
				if err != nil {
					return err
				}
				if tables, err = external.ExtendTables(ctx, catalog, tables); err != nil {
					return err
				}
				if c.Weapons, err = external.ResolveWeapons(ctx, catalog, c.Weapons); err != nil {
					return err
				}
			}

			reconciled, corrections := engine.Reconcile(nil, c, tables)
			report := engine.Validate(reconciled, tables)

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, validationResult{
					Character:   reconciled,
					Corrections: corrections,
					Report:      report,
				}); err != nil {
					return err
				}
			} else {
				printCorrections(out, corrections)
				printReport(out, report)
			}

			if report.Blocking() {
				return &exitError{
					status:  1,
					message: fmt.Sprintf("%d blocking validation error(s)", len(report.ByPriority(engine.PriorityHigh))),
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withCatalog, "with-catalog", false, "extend tools and resolve weapons from the catalog")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
