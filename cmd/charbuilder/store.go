package main

import (
	"fmt"

	"github.com/spf13/cobra"

	characterrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character"
	feedbackrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/feedback"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/records"
)

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Maintain the record store",
	}
	cmd.AddCommand(newStoreCheckCmd(a))
	return cmd
}

func newStoreCheckCmd(a *app) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Find unreadable records and dangling index entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.recordStore(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := 0
			for _, collection := range []string{characterrepo.Collection, feedbackrepo.Collection} {
				result, err := store.Check(cmd.Context(), records.CheckInput{
					Collection: collection,
					Repair:     repair,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%s: %d checked, %d corrupt, %d stale index entries\n",
					collection, result.Checked, len(result.Corrupt), result.StaleIndexEntries)
				for _, id := range result.Corrupt {
					fmt.Fprintf(out, "  ❌ %s\n", id)
				}
				problems += result.Problems()
			}

			switch {
			case problems == 0:
				fmt.Fprintln(out, "✅ Store is clean")
			case repair:
				fmt.Fprintf(out, "🔧 Removed %d problems\n", problems)
			default:
				fmt.Fprintln(out, "Run with --repair to remove them")
				return &exitError{status: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "delete corrupt records and stale index entries")
	return cmd
}
