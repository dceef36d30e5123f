package main

import (
	"fmt"

	"github.com/spf13/cobra"

	diceorch "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/dice"
)

func newRollCmd(a *app) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "roll [NOTATION]",
		Short: "Roll an ability-score pool or XdY dice",
		Long: `Without arguments, roll a fresh six-entry ability-score pool. Examples:

  roll
  roll --method 3d6
  roll 2d6`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.diceService()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				resp, err := svc.RollDice(cmd.Context(), &diceorch.RollDiceInput{Notation: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "🎲 %s: %v = %d\n", args[0], resp.Dice, resp.Total)
				return nil
			}

			resp, err := svc.RollAbilityScores(cmd.Context(), &diceorch.RollAbilityScoresInput{Method: method})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "🎲 Ability score pool:")
			for _, roll := range resp.Rolls {
				fmt.Fprintf(out, "  %-40s %2d  %v\n", roll.ID, roll.Value, roll.Dice)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", diceorch.MethodStandard, "pool method: 4d6_drop_lowest or 3d6")
	return cmd
}
