package character

import (
	"context"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
)

// Service defines the character build operations
type Service interface {
	// CreateDraft stores an empty build for a player without validating it
	CreateDraft(ctx context.Context, input *CreateDraftInput) (*CreateDraftOutput, error)

	// Get loads a stored build and evaluates it
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Edit loads a build, applies one edit, reconciles and saves it.
	// A rejected edit leaves the stored build untouched.
	Edit(ctx context.Context, input *EditInput) (*EditOutput, error)

	// Validate reconciles and validates a build without storing it
	Validate(ctx context.Context, input *ValidateInput) (*ValidateOutput, error)

	// Submit validates a build and saves it when nothing blocks.
	// Returns errors.FailedPrecondition with the blocking errors in Meta["validation_errors"].
	Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error)

	// List returns stored builds, optionally filtered on an indexed field
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Delete removes a stored build
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// CreateDraftInput defines the request for creating a draft
type CreateDraftInput struct {
	PlayerID string
	Name     string
}

// CreateDraftOutput defines the response for creating a draft
type CreateDraftOutput struct {
	Character *entities.Character
}

// GetInput defines the request for getting a build
type GetInput struct {
	CharacterID string
}

// GetOutput defines the response for getting a build
type GetOutput struct {
	Character  *entities.Character
	Evaluation *engine.Evaluation
}

// EditInput defines the request for editing a stored build
type EditInput struct {
	CharacterID string
	Op          engine.Op
}

// EditOutput defines the response for editing a stored build
type EditOutput struct {
	Character   *entities.Character
	Corrections []engine.Correction
	Report      *engine.Report
}

// ValidateInput defines the request for validating a build
type ValidateInput struct {
	Character *entities.Character
}

// ValidateOutput defines the response for validating a build.
// Character is the reconciled copy the report was computed from.
type ValidateOutput struct {
	Character   *entities.Character
	Corrections []engine.Correction
	Report      *engine.Report
}

// SubmitInput defines the request for submitting a build
type SubmitInput struct {
	Character *entities.Character
}

// SubmitOutput defines the response for submitting a build
type SubmitOutput struct {
	Character   *entities.Character
	Corrections []engine.Correction
	Report      *engine.Report
}

// ListInput defines the request for listing builds.
// An empty Field lists everything.
type ListInput struct {
	Field string
	Value string
}

// ListOutput defines the response for listing builds
type ListOutput struct {
	Characters []*entities.Character
}

// DeleteInput defines the request for deleting a build
type DeleteInput struct {
	CharacterID string
}

// DeleteOutput defines the response for deleting a build
type DeleteOutput struct{}
