package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	feedbackorch "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/orchestrators/feedback"
)

func newFeedbackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Submit, list and upvote feedback",
	}
	cmd.AddCommand(newFeedbackSubmitCmd(a))
	cmd.AddCommand(newFeedbackListCmd(a))
	cmd.AddCommand(newFeedbackUpvoteCmd(a))
	return cmd
}

func newFeedbackSubmitCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "submit MESSAGE",
		Short: "Submit a feedback message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.feedbackService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := svc.Submit(cmd.Context(), &feedbackorch.SubmitInput{
				Message:  args[0],
				Category: entities.FeedbackCategory(category),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Feedback %s submitted (%s)\n", resp.Feedback.ID, resp.Feedback.Category)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "bug, feature or general (default general)")
	return cmd
}

func newFeedbackListCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feedback, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.feedbackService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := svc.List(cmd.Context(), &feedbackorch.ListInput{
				Category: entities.FeedbackCategory(category),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Feedback) == 0 {
				fmt.Fprintln(out, "No feedback yet")
				return nil
			}
			for _, f := range resp.Feedback {
				fmt.Fprintf(out, "%s  [%s]  ▲%d  %s\n", f.ID, f.Category, len(f.Upvotes), f.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list one category")
	return cmd
}

func newFeedbackUpvoteCmd(a *app) *cobra.Command {
	var voterID string

	cmd := &cobra.Command{
		Use:   "upvote ID",
		Short: "Upvote a feedback message",
		Long: `Upvote a feedback message. Each voter id counts once; without --voter a
fresh anonymous voter id is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.feedbackService(cmd.Context())
			if err != nil {
				return err
			}
			if voterID == "" {
				voterID = svc.NewVoterID()
			}
			resp, err := svc.Upvote(cmd.Context(), &feedbackorch.UpvoteInput{
				FeedbackID: args[0],
				VoterID:    voterID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "▲ %s now has %d upvote(s)\n", resp.Feedback.ID, len(resp.Feedback.Upvotes))
			return nil
		},
	}

	cmd.Flags().StringVar(&voterID, "voter", "", "voter id")
	return cmd
}
