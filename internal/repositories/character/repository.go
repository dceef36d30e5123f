// Package character provides the interface for character persistence
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/character Repository

import (
	"context"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
)

// Collection is the record collection characters are stored in
const Collection = "characters"

// Indexed fields usable with ListByField
const (
	FieldPlayerID     = "player_id"
	FieldRaceID       = "race_id"
	FieldBackgroundID = "background_id"
	FieldClassID      = "class_id"
)

// IndexedFields lists the fields ListByField accepts
var IndexedFields = []string{FieldPlayerID, FieldRaceID, FieldBackgroundID, FieldClassID}

// Repository defines the interface for character persistence
type Repository interface {
	// Create stores a new character and assigns its ID
	// Returns errors.InvalidArgument if the character is nil or already has an ID
	// Returns errors.Unavailable when the store cannot be reached
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID
	// Returns errors.InvalidArgument for an empty ID
	// Returns errors.NotFound if character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a stored character
	// Returns errors.NotFound if character doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete deletes a character by ID
	// Returns errors.NotFound if character doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns every stored character, oldest first
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// ListByField returns characters whose indexed field equals Value
	// Returns errors.InvalidArgument for a field outside IndexedFields
	ListByField(ctx context.Context, input ListByFieldInput) (*ListOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *entities.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *entities.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *entities.Character
}

// UpdateInput defines the input for updating a character
type UpdateInput struct {
	Character *entities.Character
}

// UpdateOutput defines the output for updating a character
type UpdateOutput struct {
	Character *entities.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct{}

// ListInput defines the input for listing characters
type ListInput struct{}

// ListByFieldInput defines the input for listing characters by an indexed field
type ListByFieldInput struct {
	Field string
	Value string
}

// ListOutput defines the output for listing characters
type ListOutput struct {
	Characters []*entities.Character
}
