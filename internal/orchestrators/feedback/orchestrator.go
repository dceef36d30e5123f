// Package feedback implements feedback submission and anonymous upvotes
package feedback

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
	feedbackrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/feedback"
)

// MaxMessageLength caps a feedback message, in characters
const MaxMessageLength = 2000

// Service defines the feedback operations
type Service interface {
	// Submit stores a new feedback message
	Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error)
	// List returns feedback, optionally for one category
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
	// Upvote records one upvote per voter
	// Returns errors.AlreadyExists if the voter already upvoted
	Upvote(ctx context.Context, input *UpvoteInput) (*UpvoteOutput, error)
	// NewVoterID returns a fresh anonymous voter id
	NewVoterID() string
}

// SubmitInput defines the request for submitting feedback
type SubmitInput struct {
	Message  string
	Category entities.FeedbackCategory
}

// SubmitOutput defines the response for submitting feedback
type SubmitOutput struct {
	Feedback *entities.Feedback
}

// ListInput defines the request for listing feedback
type ListInput struct {
	Category entities.FeedbackCategory
}

// ListOutput defines the response for listing feedback
type ListOutput struct {
	Feedback []*entities.Feedback
}

// UpvoteInput defines the request for upvoting feedback
type UpvoteInput struct {
	FeedbackID string
	VoterID    string
}

// UpvoteOutput defines the response for upvoting feedback
type UpvoteOutput struct {
	Feedback *entities.Feedback
}

// Config holds the dependencies for the feedback orchestrator
type Config struct {
	FeedbackRepo feedbackrepo.Repository
	VoterIDs     idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.FeedbackRepo == nil {
		vb.RequiredField("FeedbackRepo")
	}
	if c.VoterIDs == nil {
		vb.RequiredField("VoterIDs")
	}

	return vb.Build()
}

type orchestrator struct {
	feedbackRepo feedbackrepo.Repository
	voterIDs     idgen.Generator
}

// New creates a new feedback orchestrator
func New(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		feedbackRepo: cfg.FeedbackRepo,
		voterIDs:     cfg.VoterIDs,
	}, nil
}

func (o *orchestrator) NewVoterID() string {
	return o.voterIDs.Generate()
}

func (o *orchestrator) Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	message := strings.TrimSpace(input.Message)
	category := input.Category
	if category == "" {
		category = entities.FeedbackGeneral
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("message", message, vb)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		vb.Fieldf("message", "must be no more than %d characters", MaxMessageLength)
	}
	if !category.Valid() {
		vb.Fieldf("category", "unknown category %q", category)
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	out, err := o.feedbackRepo.Create(ctx, feedbackrepo.CreateInput{
		Feedback: &entities.Feedback{Message: message, Category: category},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit feedback")
	}

	slog.Info("Feedback submitted",
		"feedback_id", out.Feedback.ID,
		"category", category,
	)

	return &SubmitOutput{Feedback: out.Feedback}, nil
}

func (o *orchestrator) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var (
		out *feedbackrepo.ListOutput
		err error
	)
	if input.Category == "" {
		out, err = o.feedbackRepo.List(ctx, feedbackrepo.ListInput{})
	} else {
		out, err = o.feedbackRepo.ListByCategory(ctx, feedbackrepo.ListByCategoryInput{Category: input.Category})
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list feedback")
	}

	return &ListOutput{Feedback: out.Feedback}, nil
}

func (o *orchestrator) Upvote(ctx context.Context, input *UpvoteInput) (*UpvoteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("feedbackID", input.FeedbackID, vb)
	errors.ValidateRequired("voterID", input.VoterID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	got, err := o.feedbackRepo.Get(ctx, feedbackrepo.GetInput{ID: input.FeedbackID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get feedback %s", input.FeedbackID)
	}

	fb := got.Feedback
	if fb.HasUpvoteFrom(input.VoterID) {
		return nil, errors.AlreadyExistsf("feedback %s already upvoted by this voter", input.FeedbackID)
	}
	fb.Upvotes = append(fb.Upvotes, input.VoterID)

	out, err := o.feedbackRepo.Update(ctx, feedbackrepo.UpdateInput{Feedback: fb})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upvote feedback %s", input.FeedbackID)
	}

	slog.Info("Feedback upvoted",
		"feedback_id", input.FeedbackID,
		"upvotes", len(out.Feedback.Upvotes),
	)

	return &UpvoteOutput{Feedback: out.Feedback}, nil
}
