package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	characterorch "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/character"
)

func newCharactersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"character", "char"},
		Short:   "Store, load and edit character builds",
	}
	cmd.AddCommand(newCharactersNewCmd(a))
	cmd.AddCommand(newCharactersSaveCmd(a))
	cmd.AddCommand(newCharactersGetCmd(a))
	cmd.AddCommand(newCharactersListCmd(a))
	cmd.AddCommand(newCharactersEditCmd(a))
	cmd.AddCommand(newCharactersDeleteCmd(a))
	return cmd
}

func newCharactersNewCmd(a *app) *cobra.Command {
	var playerID, name string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty draft for a player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.characterService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := svc.CreateDraft(cmd.Context(), &characterorch.CreateDraftInput{
				PlayerID: playerID,
				Name:     name,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Draft created: %s\n", resp.Character.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "owning player id (required)")
	cmd.Flags().StringVar(&name, "name", "", "character name")
	_ = cmd.MarkFlagRequired("player") // nolint:errcheck // flag exists
	return cmd
}

func newCharactersSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save FILE",
		Short: "Validate a character JSON file and store it when nothing blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCharacter(args[0])
			if err != nil {
				return err
			}
			svc, err := a.characterService(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			resp, err := svc.Submit(cmd.Context(), &characterorch.SubmitInput{Character: c})
			if err != nil {
				if blocking, ok := errors.GetMeta(err)[characterorch.MetaValidationErrors].([]engine.ValidationError); ok {
					printReport(out, &engine.Report{Errors: blocking})
				}
				return err
			}

			printCorrections(out, resp.Corrections)
			printReport(out, resp.Report)
			fmt.Fprintf(out, "✅ Saved %s\n", resp.Character.ID)
			return nil
		},
	}
}

func newCharactersGetCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Load a stored character and evaluate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.characterService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := svc.Get(cmd.Context(), &characterorch.GetInput{CharacterID: args[0]})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, resp.Evaluation)
			}
			printCharacterSummary(out, resp.Character)
			printAbilities(out, resp.Evaluation.Abilities)
			fmt.Fprintf(out, "Feat slots: %d used of %d\n", resp.Evaluation.Feats.Used, resp.Evaluation.Feats.Available)
			printReport(out, resp.Evaluation.Report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the evaluation as JSON")
	return cmd
}

func newCharactersListCmd(a *app) *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored characters",
		Long: `List stored characters, oldest first. Filter on an indexed field with
--where player_id=ID, race_id=ID, background_id=ID or class_id=ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := &characterorch.ListInput{}
			if where != "" {
				field, value, ok := strings.Cut(where, "=")
				if !ok || field == "" {
					return errors.Invalid("where", "expected field=value, got %q", where)
				}
				input.Field, input.Value = field, value
			}

			svc, err := a.characterService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := svc.List(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Characters) == 0 {
				fmt.Fprintln(out, "No characters found")
				return nil
			}
			for _, c := range resp.Characters {
				printCharacterSummary(out, c)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "filter as field=value")
	return cmd
}

func newCharactersEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID EDIT [ARGS...]",
		Short: "Apply one edit to a stored character",
		Long: "Apply one edit, reconcile the build and store it. A rejected edit leaves the\nstored character unchanged. Edits:\n\n" + editUsage(),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			builder := &opBuilder{
				tables:  a.tables,
				dice:    a.diceService,
				catalog: a.catalogClient,
			}
			op, err := builder.build(ctx, args[1], args[2:])
			if err != nil {
				return err
			}

			svc, err := a.characterService(ctx)
			if err != nil {
				return err
			}
			resp, err := svc.Edit(ctx, &characterorch.EditInput{CharacterID: args[0], Op: op})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCharacterSummary(out, resp.Character)
			printCorrections(out, resp.Corrections)
			printReport(out, resp.Report)
			return nil
		},
	}
}

func newCharactersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.characterService(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := svc.Delete(cmd.Context(), &characterorch.DeleteInput{CharacterID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", args[0])
			return nil
		},
	}
}
