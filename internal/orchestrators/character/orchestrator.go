// Package character implements the character orchestrator
package character

import (
	"context"
	"log/slog"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/engine"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	characterrepo "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// MetaValidationErrors is the error Meta key holding a submit's blocking errors
const MetaValidationErrors = "validation_errors"

// Config holds the dependencies for the character orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	Tables        *rules.Tables
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.Tables == nil {
		vb.RequiredField("Tables")
	}

	return vb.Build()
}

// Orchestrator implements the Service interface
type Orchestrator struct {
	characterRepo characterrepo.Repository
	tables        *rules.Tables
}

// New creates a new character orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		tables:        cfg.Tables,
	}, nil
}

// Ensure Orchestrator implements the Service interface
var _ Service = (*Orchestrator)(nil)

// CreateDraft stores a new, unvalidated build
func (o *Orchestrator) CreateDraft(ctx context.Context, input *CreateDraftInput) (*CreateDraftOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("playerID", input.PlayerID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	draft := entities.NewCharacter()
	draft.PlayerID = input.PlayerID
	draft.Name = input.Name

	out, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: draft})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create draft")
	}

	slog.Info("Character draft created",
		"character_id", out.Character.ID,
		"player_id", input.PlayerID,
	)

	return &CreateDraftOutput{Character: out.Character}, nil
}

// Get loads a build and evaluates it against the rule tables
func (o *Orchestrator) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	out, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", input.CharacterID)
	}

	return &GetOutput{
		Character:  out.Character,
		Evaluation: engine.Evaluate(out.Character, o.tables),
	}, nil
}

// Edit runs one edit through reconciliation and persists the result
func (o *Orchestrator) Edit(ctx context.Context, input *EditInput) (*EditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("characterID", input.CharacterID, vb)
	if input.Op == nil {
		vb.RequiredField("op")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	current, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", input.CharacterID)
	}

	next, corrections, err := engine.Edit(current.Character, o.tables, input.Op)
	if err != nil {
		return nil, err
	}

	saved, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: next})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save character %s", input.CharacterID)
	}

	if len(corrections) > 0 {
		slog.Info("Character reconciled after edit",
			"character_id", input.CharacterID,
			"corrections", len(corrections),
		)
	}

	return &EditOutput{
		Character:   saved.Character,
		Corrections: corrections,
		Report:      engine.Validate(saved.Character, o.tables),
	}, nil
}

// Validate reconciles a copy of the build and reports on it
func (o *Orchestrator) Validate(_ context.Context, input *ValidateInput) (*ValidateOutput, error) {
	if input == nil || input.Character == nil {
		return nil, errors.InvalidArgument("character is required")
	}

	reconciled, corrections := engine.Reconcile(nil, input.Character.Clone(), o.tables)

	return &ValidateOutput{
		Character:   reconciled,
		Corrections: corrections,
		Report:      engine.Validate(reconciled, o.tables),
	}, nil
}

// Submit validates and saves a build. The caller's character is never modified.
func (o *Orchestrator) Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error) {
	validated, err := o.Validate(ctx, &ValidateInput{Character: characterOf(input)})
	if err != nil {
		return nil, err
	}

	if validated.Report.Blocking() {
		blocking := validated.Report.ByPriority(engine.PriorityHigh)
		slog.Info("Character submit blocked",
			"character_id", validated.Character.ID,
			"blocking_errors", len(blocking),
		)
		return nil, errors.FailedPreconditionf("character has %d blocking validation error(s)", len(blocking)).
			WithMeta(MetaValidationErrors, blocking)
	}

	var saved *entities.Character
	if validated.Character.ID == "" {
		out, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: validated.Character})
		if err != nil {
			return nil, errors.Wrap(err, "failed to save character")
		}
		saved = out.Character
	} else {
		out, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: validated.Character})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to save character %s", validated.Character.ID)
		}
		saved = out.Character
	}

	slog.Info("Character submitted",
		"character_id", saved.ID,
		"player_id", saved.PlayerID,
		"warnings", len(validated.Report.Errors),
	)

	return &SubmitOutput{
		Character:   saved,
		Corrections: validated.Corrections,
		Report:      validated.Report,
	}, nil
}

// List returns stored builds
func (o *Orchestrator) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var (
		out *characterrepo.ListOutput
		err error
	)
	if input.Field == "" {
		out, err = o.characterRepo.List(ctx, characterrepo.ListInput{})
	} else {
		out, err = o.characterRepo.ListByField(ctx, characterrepo.ListByFieldInput{
			Field: input.Field,
			Value: input.Value,
		})
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}

	return &ListOutput{Characters: out.Characters}, nil
}

// Delete removes a stored build
func (o *Orchestrator) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	if _, err := o.characterRepo.Delete(ctx, characterrepo.DeleteInput{ID: input.CharacterID}); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character %s", input.CharacterID)
	}

	slog.Info("Character deleted", "character_id", input.CharacterID)

	return &DeleteOutput{}, nil
}

func characterOf(input *SubmitInput) *entities.Character {
	if input == nil {
		return nil
	}
	return input.Character
}
