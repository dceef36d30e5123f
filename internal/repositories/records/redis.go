package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/clock"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
	redisclient "github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/redis"
)

const recordKeyPrefix = "record:"

// RedisConfig holds the dependencies of the Redis store
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
	IDGen  idgen.Generator
}

// Validate ensures all required dependencies are present
func (c *RedisConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGen == nil {
		vb.RequiredField("IDGen")
	}
	return vb.Build()
}

type redisStore struct {
	client redisclient.Client
	clock  clock.Clock
	idGen  idgen.Generator
}

// NewRedis creates a Redis-backed record store
func NewRedis(cfg *RedisConfig) (Store, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &redisStore{
		client: cfg.Client,
		clock:  cfg.Clock,
		idGen:  cfg.IDGen,
	}, nil
}

func recordKey(collection, id string) string {
	return fmt.Sprintf("%s%s:%s", recordKeyPrefix, collection, id)
}

func idsKey(collection string) string {
	return fmt.Sprintf("%s%s:ids", recordKeyPrefix, collection)
}

func indexKey(collection, field, value string) string {
	return fmt.Sprintf("%s%s:idx:%s:%s", recordKeyPrefix, collection, field, value)
}

// backendError keeps connection failures distinguishable from other storage errors
func backendError(err error, message string) error {
	if redisclient.IsConnectionError(err) {
		return errors.WrapWithCode(err, errors.CodeUnavailable, message)
	}
	return errors.Wrap(err, message)
}

func (s *redisStore) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateWrite(input.Collection, input.Record); err != nil {
		return nil, err
	}

	rec := cloneRecord(input.Record)
	rec.ID = s.idGen.Generate()
	now := s.clock.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal record")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(input.Collection, rec.ID), data, 0)
	pipe.SAdd(ctx, idsKey(input.Collection), rec.ID)
	for field, value := range rec.Fields {
		pipe.SAdd(ctx, indexKey(input.Collection, field, value), rec.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, backendError(err, "failed to create record")
	}

	return &CreateOutput{Record: rec}, nil
}

func (s *redisStore) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if err := validateWrite(input.Collection, input.Record); err != nil {
		return nil, err
	}
	if input.Record.ID == "" {
		return nil, errors.InvalidArgument(errRecordIDEmpty)
	}

	existing, err := s.Get(ctx, GetInput{Collection: input.Collection, ID: input.Record.ID})
	if err != nil {
		return nil, err
	}

	rec := cloneRecord(input.Record)
	rec.CreatedAt = existing.Record.CreatedAt
	rec.UpdatedAt = s.clock.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal record")
	}

	pipe := s.client.TxPipeline()
	for field, old := range existing.Record.Fields {
		if value, ok := rec.Fields[field]; !ok || value != old {
			pipe.SRem(ctx, indexKey(input.Collection, field, old), rec.ID)
		}
	}
	pipe.Set(ctx, recordKey(input.Collection, rec.ID), data, 0)
	for field, value := range rec.Fields {
		pipe.SAdd(ctx, indexKey(input.Collection, field, value), rec.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, backendError(err, "failed to update record")
	}

	return &UpdateOutput{Record: rec}, nil
}

func (s *redisStore) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.Collection, input.ID); err != nil {
		return nil, err
	}

	result, err := s.client.Get(ctx, recordKey(input.Collection, input.ID)).Result()
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, notFound(input.Collection, input.ID)
		}
		return nil, backendError(err, "failed to get record")
	}

	var rec Record
	if err := json.Unmarshal([]byte(result), &rec); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal record %s", input.ID)
	}

	return &GetOutput{Record: &rec}, nil
}

func (s *redisStore) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.Collection == "" {
		return nil, errors.InvalidArgument(errCollectionEmpty)
	}
	return s.loadSet(ctx, input.Collection, idsKey(input.Collection))
}

func (s *redisStore) ListWhere(ctx context.Context, input ListWhereInput) (*ListOutput, error) {
	if input.Collection == "" {
		return nil, errors.InvalidArgument(errCollectionEmpty)
	}
	if input.Field == "" {
		return nil, errors.InvalidArgument(errFieldEmpty)
	}
	return s.loadSet(ctx, input.Collection, indexKey(input.Collection, input.Field, input.Value))
}

func (s *redisStore) loadSet(ctx context.Context, collection, setKey string) (*ListOutput, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, backendError(err, "failed to list record ids")
	}
	if len(ids) == 0 {
		return &ListOutput{Records: []*Record{}}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(collection, id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, backendError(err, "failed to load records")
	}

	recs := make([]*Record, 0, len(values))
	for i, value := range values {
		// A set member without a document is a stale index entry
		str, ok := value.(string)
		if !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal record %s", ids[i])
		}
		recs = append(recs, &rec)
	}

	sortRecords(recs)
	return &ListOutput{Records: recs}, nil
}

func (s *redisStore) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	existing, err := s.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, recordKey(input.Collection, input.ID))
	pipe.SRem(ctx, idsKey(input.Collection), input.ID)
	for field, value := range existing.Record.Fields {
		pipe.SRem(ctx, indexKey(input.Collection, field, value), input.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, backendError(err, "failed to delete record")
	}

	return &DeleteOutput{}, nil
}

// Check walks the id set first, then every index set of the collection
func (s *redisStore) Check(ctx context.Context, input CheckInput) (*CheckOutput, error) {
	if input.Collection == "" {
		return nil, errors.InvalidArgument(errCollectionEmpty)
	}

	out := &CheckOutput{Corrupt: []string{}}

	ids, err := s.client.SMembers(ctx, idsKey(input.Collection)).Result()
	if err != nil {
		return nil, backendError(err, "failed to list record ids")
	}

	for _, id := range ids {
		key := recordKey(input.Collection, id)
		data, err := s.client.Get(ctx, key).Result()
		if redisclient.IsNil(err) {
			out.StaleIndexEntries++
			if input.Repair {
				if err := s.client.SRem(ctx, idsKey(input.Collection), id).Err(); err != nil {
					return nil, backendError(err, "failed to remove stale id")
				}
			}
			continue
		}
		if err != nil {
			return nil, backendError(err, "failed to read record")
		}
		out.Checked++

		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			slog.Warn("Corrupted record found", "collection", input.Collection, "record_id", id)
			out.Corrupt = append(out.Corrupt, id)
			if input.Repair {
				pipe := s.client.TxPipeline()
				pipe.Del(ctx, key)
				pipe.SRem(ctx, idsKey(input.Collection), id)
				if _, err := pipe.Exec(ctx); err != nil {
					return nil, backendError(err, "failed to remove corrupted record")
				}
			}
		}
	}

	// index entries of corrupt records count as stale
	pattern := fmt.Sprintf("%s%s:idx:*", recordKeyPrefix, input.Collection)
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		members, err := s.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return nil, backendError(err, "failed to list index entries")
		}
		for _, id := range members {
			n, err := s.client.Exists(ctx, recordKey(input.Collection, id)).Result()
			if err != nil {
				return nil, backendError(err, "failed to check record")
			}
			if n > 0 && !contains(out.Corrupt, id) {
				continue
			}
			out.StaleIndexEntries++
			if input.Repair {
				if err := s.client.SRem(ctx, setKey, id).Err(); err != nil {
					return nil, backendError(err, "failed to remove stale index entry")
				}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, backendError(err, "failed to scan index keys")
	}

	sort.Strings(out.Corrupt)
	out.Repaired = input.Repair && out.Problems() > 0
	return out, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
