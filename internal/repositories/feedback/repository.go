// Package feedback provides persistence for user feedback
package feedback

//go:generate mockgen -destination=mock/mock_repository.go -package=feedbackmock github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/feedback Repository

import (
	"context"
	"encoding/json"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/records"
)

// Collection is the record collection feedback is stored in
const Collection = "feedback"

const fieldCategory = "category"

const (
	errFeedbackNil     = "feedback cannot be nil"
	errFeedbackIDEmpty = "feedback ID cannot be empty"
)

// Repository defines the interface for feedback persistence
type Repository interface {
	// Create stores new feedback and assigns its ID
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	// Get retrieves feedback by ID
	// Returns errors.NotFound if it doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	// Update replaces stored feedback
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	// List returns all feedback, oldest first
	List(ctx context.Context, input ListInput) (*ListOutput, error)
	// ListByCategory returns the feedback filed under one category
	ListByCategory(ctx context.Context, input ListByCategoryInput) (*ListOutput, error)
}

// CreateInput defines the input for creating feedback
type CreateInput struct {
	Feedback *entities.Feedback
}

// CreateOutput defines the output for creating feedback
type CreateOutput struct {
	Feedback *entities.Feedback
}

// GetInput defines the input for getting feedback
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting feedback
type GetOutput struct {
	Feedback *entities.Feedback
}

// UpdateInput defines the input for updating feedback
type UpdateInput struct {
	Feedback *entities.Feedback
}

// UpdateOutput defines the output for updating feedback
type UpdateOutput struct {
	Feedback *entities.Feedback
}

// ListInput defines the input for listing feedback
type ListInput struct{}

// ListByCategoryInput defines the input for listing one category
type ListByCategoryInput struct {
	Category entities.FeedbackCategory
}

// ListOutput defines the output for listing feedback
type ListOutput struct {
	Feedback []*entities.Feedback
}

// Config contains the dependencies of the feedback repository
type Config struct {
	Store records.Store
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Store == nil {
		return errors.InvalidArgument("store cannot be nil")
	}
	return nil
}

type repository struct {
	store records.Store
}

// New creates a feedback repository over a record store
func New(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &repository{store: cfg.Store}, nil
}

func (r *repository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Feedback == nil {
		return nil, errors.InvalidArgument(errFeedbackNil)
	}
	rec, err := toRecord(input.Feedback)
	if err != nil {
		return nil, err
	}
	rec.ID = ""

	out, err := r.store.Create(ctx, records.CreateInput{Collection: Collection, Record: rec})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create feedback")
	}

	f, err := fromRecord(out.Record)
	if err != nil {
		return nil, err
	}
	return &CreateOutput{Feedback: f}, nil
}

func (r *repository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errFeedbackIDEmpty)
	}

	out, err := r.store.Get(ctx, records.GetInput{Collection: Collection, ID: input.ID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get feedback %s", input.ID)
	}

	f, err := fromRecord(out.Record)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Feedback: f}, nil
}

func (r *repository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Feedback == nil {
		return nil, errors.InvalidArgument(errFeedbackNil)
	}
	if input.Feedback.ID == "" {
		return nil, errors.InvalidArgument(errFeedbackIDEmpty)
	}
	rec, err := toRecord(input.Feedback)
	if err != nil {
		return nil, err
	}

	out, err := r.store.Update(ctx, records.UpdateInput{Collection: Collection, Record: rec})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update feedback %s", input.Feedback.ID)
	}

	f, err := fromRecord(out.Record)
	if err != nil {
		return nil, err
	}
	return &UpdateOutput{Feedback: f}, nil
}

func (r *repository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	out, err := r.store.List(ctx, records.ListInput{Collection: Collection})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list feedback")
	}
	return toListOutput(out.Records)
}

func (r *repository) ListByCategory(ctx context.Context, input ListByCategoryInput) (*ListOutput, error) {
	if !input.Category.Valid() {
		return nil, errors.Invalid("category", "unknown feedback category %q", input.Category)
	}

	out, err := r.store.ListWhere(ctx, records.ListWhereInput{
		Collection: Collection,
		Field:      fieldCategory,
		Value:      string(input.Category),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s feedback", input.Category)
	}
	return toListOutput(out.Records)
}

func toRecord(f *entities.Feedback) (*records.Record, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal feedback")
	}
	return &records.Record{
		ID:     f.ID,
		Data:   data,
		Fields: map[string]string{fieldCategory: string(f.Category)},
	}, nil
}

func fromRecord(rec *records.Record) (*entities.Feedback, error) {
	var f entities.Feedback
	if err := json.Unmarshal(rec.Data, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal feedback %s", rec.ID)
	}
	f.ID = rec.ID
	f.CreatedAt = rec.CreatedAt
	f.UpdatedAt = rec.UpdatedAt
	return &f, nil
}

func toListOutput(recs []*records.Record) (*ListOutput, error) {
	out := make([]*entities.Feedback, 0, len(recs))
	for _, rec := range recs {
		f, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return &ListOutput{Feedback: out}, nil
}
