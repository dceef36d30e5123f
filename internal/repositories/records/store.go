// Package records provides a small document store with indexed fields.
// Typed repositories (characters, feedback) sit on top of it.
package records

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

const (
	errCollectionEmpty = "collection cannot be empty"
	errRecordNil       = "record cannot be nil"
	errRecordIDEmpty   = "record ID cannot be empty"
	errFieldEmpty      = "field cannot be empty"
)

// Record is one stored document.
// Fields are indexed and can be queried with ListWhere.
type Record struct {
	ID        string            `json:"id"`
	Data      json.RawMessage   `json:"data"`
	Fields    map[string]string `json:"fields,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store persists records grouped by collection
type Store interface {
	// Create assigns a new ID and timestamps, then stores the record
	// Returns errors.InvalidArgument for a missing collection or record
	// Returns errors.Unavailable when the backend cannot be reached
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Update replaces an existing record, keeping its CreatedAt
	// Returns errors.NotFound if the record doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Get retrieves a record by ID
	// Returns errors.NotFound if the record doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List returns every record in a collection, oldest first
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// ListWhere returns the records whose indexed field equals value, oldest first
	ListWhere(ctx context.Context, input ListWhereInput) (*ListOutput, error)

	// Delete removes a record and its index entries
	// Returns errors.NotFound if the record doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// Check scans a collection for unreadable records and index entries
	// pointing at missing records. With Repair set both are removed.
	Check(ctx context.Context, input CheckInput) (*CheckOutput, error)
}

// CreateInput defines the input for creating a record
type CreateInput struct {
	Collection string
	Record     *Record
}

// CreateOutput defines the output for creating a record
type CreateOutput struct {
	Record *Record
}

// UpdateInput defines the input for updating a record
type UpdateInput struct {
	Collection string
	Record     *Record
}

// UpdateOutput defines the output for updating a record
type UpdateOutput struct {
	Record *Record
}

// GetInput defines the input for getting a record
type GetInput struct {
	Collection string
	ID         string
}

// GetOutput defines the output for getting a record
type GetOutput struct {
	Record *Record
}

// ListInput defines the input for listing a collection
type ListInput struct {
	Collection string
}

// ListWhereInput defines the input for listing by an indexed field
type ListWhereInput struct {
	Collection string
	Field      string
	Value      string
}

// ListOutput defines the output for both list operations
type ListOutput struct {
	Records []*Record
}

// DeleteInput defines the input for deleting a record
type DeleteInput struct {
	Collection string
	ID         string
}

// CheckInput defines the input for checking a collection
type CheckInput struct {
	Collection string
	Repair     bool
}

// CheckOutput reports what a check found
type CheckOutput struct {
	// Checked counts the records examined
	Checked int
	// Corrupt lists the ids whose stored document cannot be decoded
	Corrupt []string
	// StaleIndexEntries counts index members without a record
	StaleIndexEntries int
	// Repaired is true when a repair removed at least one problem
	Repaired bool
}

// Problems counts the corrupt records and stale index entries found
func (o *CheckOutput) Problems() int {
	return len(o.Corrupt) + o.StaleIndexEntries
}

// DeleteOutput defines the output for deleting a record
type DeleteOutput struct{}

func validateWrite(collection string, rec *Record) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("collection", collection, vb)
	if rec == nil {
		vb.Field("record", errRecordNil)
	} else {
		for field := range rec.Fields {
			if field == "" {
				vb.Field("record.fields", errFieldEmpty)
			}
		}
	}
	return vb.Build()
}

func validateKey(collection, id string) error {
	if collection == "" {
		return errors.InvalidArgument(errCollectionEmpty)
	}
	if id == "" {
		return errors.InvalidArgument(errRecordIDEmpty)
	}
	return nil
}

func notFound(collection, id string) error {
	return errors.NotFoundf("%s record %s not found", collection, id).
		WithMeta(errors.MetaCollection, collection)
}

func cloneRecord(rec *Record) *Record {
	out := *rec
	out.Data = append(json.RawMessage(nil), rec.Data...)
	if rec.Fields != nil {
		out.Fields = make(map[string]string, len(rec.Fields))
		for k, v := range rec.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}

func sortRecords(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}
