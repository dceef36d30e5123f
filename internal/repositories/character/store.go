package character

import (
	"context"
	"encoding/json"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/records"
)

const (
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errCharacterIDSet   = "character ID is assigned by the store"
)

// Config contains the dependencies of the character repository
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

// New creates a character repository over a record store
func New(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &repository{store: cfg.Store}, nil
}

func (r *repository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID != "" {
		return nil, errors.InvalidArgument(errCharacterIDSet)
	}

	rec, err := toRecord(input.Character)
	if err != nil {
		return nil, err
	}

	out, err := r.store.Create(ctx, records.CreateInput{Collection: Collection, Record: rec})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}

	c, err := fromRecord(out.Record)
	if err != nil {
		return nil, err
	}
	return &CreateOutput{Character: c}, nil
}

func (r *repository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	out, err := r.store.Get(ctx, records.GetInput{Collection: Collection, ID: input.ID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", input.ID)
	}

	c, err := fromRecord(out.Record)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Character: c}, nil
}

func (r *repository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	rec, err := toRecord(input.Character)
	if err != nil {
		return nil, err
	}

	out, err := r.store.Update(ctx, records.UpdateInput{Collection: Collection, Record: rec})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update character %s", input.Character.ID)
	}

	c, err := fromRecord(out.Record)
	if err != nil {
		return nil, err
	}
	return &UpdateOutput{Character: c}, nil
}

func (r *repository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	if _, err := r.store.Delete(ctx, records.DeleteInput{Collection: Collection, ID: input.ID}); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character %s", input.ID)
	}
	return &DeleteOutput{}, nil
}

func (r *repository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	out, err := r.store.List(ctx, records.ListInput{Collection: Collection})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}
	return toListOutput(out.Records)
}

func (r *repository) ListByField(ctx context.Context, input ListByFieldInput) (*ListOutput, error) {
	if !isIndexed(input.Field) {
		return nil, errors.InvalidArgumentf("cannot list characters by %q", input.Field).
			WithMeta("allowed_fields", IndexedFields)
	}

	out, err := r.store.ListWhere(ctx, records.ListWhereInput{
		Collection: Collection,
		Field:      input.Field,
		Value:      input.Value,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list characters by %s", input.Field)
	}
	return toListOutput(out.Records)
}

func isIndexed(field string) bool {
	for _, f := range IndexedFields {
		if f == field {
			return true
		}
	}
	return false
}

// indexFields picks the values ListByField can search on; empty values are not indexed
func indexFields(c *entities.Character) map[string]string {
	fields := make(map[string]string)
	set := func(field, value string) {
		if value != "" {
			fields[field] = value
		}
	}
	set(FieldPlayerID, c.PlayerID)
	set(FieldRaceID, c.RaceID)
	set(FieldBackgroundID, c.BackgroundID)
	if primary := c.PrimaryClass(); primary != nil {
		set(FieldClassID, primary.ClassID)
	}
	return fields
}

func toRecord(c *entities.Character) (*records.Record, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal character")
	}
	return &records.Record{
		ID:     c.ID,
		Data:   data,
		Fields: indexFields(c),
	}, nil
}

func fromRecord(rec *records.Record) (*entities.Character, error) {
	c := entities.NewCharacter()
	if err := json.Unmarshal(rec.Data, c); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character %s", rec.ID)
	}
	if c.AbilityScores.Base == nil {
		c.AbilityScores.Base = entities.NewAbilityMap(0)
	}
	c.ID = rec.ID
	c.CreatedAt = rec.CreatedAt
	c.UpdatedAt = rec.UpdatedAt
	return c, nil
}

func toListOutput(recs []*records.Record) (*ListOutput, error) {
	characters := make([]*entities.Character, 0, len(recs))
	for _, rec := range recs {
		c, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return &ListOutput{Characters: characters}, nil
}
