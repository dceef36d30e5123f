package records_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/clock"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/repositories/records"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/testutils"
)

const collection = "characters"

// StoreTestSuite runs the same behaviour checks against every backend
type StoreTestSuite struct {
	suite.Suite
	newStore func(t *testing.T, clk clock.Clock) (records.Store, func())

	clock   *clock.Fixed
	store   records.Store
	cleanup func()
	ctx     context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.clock = clock.NewFixed(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s.store, s.cleanup = s.newStore(s.T(), s.clock)
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *StoreTestSuite) create(name, player string) *records.Record {
	out, err := s.store.Create(s.ctx, records.CreateInput{
		Collection: collection,
		Record: &records.Record{
			Data:   json.RawMessage(`{"name":"` + name + `"}`),
			Fields: map[string]string{"player_id": player},
		},
	})
	s.Require().NoError(err)
	return out.Record
}

func (s *StoreTestSuite) TestCreateAssignsIDAndTimestamps() {
	rec := s.create("Thorin", "player-1")

	s.Equal("rec_1", rec.ID)
	s.True(rec.CreatedAt.Equal(s.clock.Now()))
	s.True(rec.UpdatedAt.Equal(s.clock.Now()))

	got, err := s.store.Get(s.ctx, records.GetInput{Collection: collection, ID: rec.ID})
	s.Require().NoError(err)
	s.JSONEq(`{"name":"Thorin"}`, string(got.Record.Data))
	s.Equal(map[string]string{"player_id": "player-1"}, got.Record.Fields)
	s.True(got.Record.CreatedAt.Equal(rec.CreatedAt))
}

func (s *StoreTestSuite) TestCreateIgnoresCallerID() {
	out, err := s.store.Create(s.ctx, records.CreateInput{
		Collection: collection,
		Record:     &records.Record{ID: "mine", Data: json.RawMessage(`{}`)},
	})

	s.Require().NoError(err)
	s.Equal("rec_1", out.Record.ID)
}

func (s *StoreTestSuite) TestCreateValidation() {
	testCases := []struct {
		name  string
		input records.CreateInput
	}{
		{name: "missing collection", input: records.CreateInput{Record: &records.Record{}}},
		{name: "missing record", input: records.CreateInput{Collection: collection}},
		{
			name: "blank field name",
			input: records.CreateInput{
				Collection: collection,
				Record:     &records.Record{Fields: map[string]string{"": "x"}},
			},
		},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.store.Create(s.ctx, tc.input)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *StoreTestSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, records.GetInput{Collection: collection, ID: "nope"})
	s.True(errors.IsNotFound(err))
	s.Equal(collection, errors.GetMeta(err)[errors.MetaCollection])

	_, err = s.store.Get(s.ctx, records.GetInput{Collection: collection})
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestUpdateKeepsCreatedAtAndMovesIndex() {
	rec := s.create("Thorin", "player-1")
	s.clock.Advance(time.Hour)

	rec.Data = json.RawMessage(`{"name":"Balin"}`)
	rec.Fields = map[string]string{"player_id": "player-2"}
	out, err := s.store.Update(s.ctx, records.UpdateInput{Collection: collection, Record: rec})

	s.Require().NoError(err)
	s.True(out.Record.UpdatedAt.Equal(s.clock.Now()))
	s.True(out.Record.CreatedAt.Equal(s.clock.Now().Add(-time.Hour)))

	old, err := s.store.ListWhere(s.ctx, records.ListWhereInput{Collection: collection, Field: "player_id", Value: "player-1"})
	s.Require().NoError(err)
	s.Empty(old.Records)

	moved, err := s.store.ListWhere(s.ctx, records.ListWhereInput{Collection: collection, Field: "player_id", Value: "player-2"})
	s.Require().NoError(err)
	s.Require().Len(moved.Records, 1)
	s.JSONEq(`{"name":"Balin"}`, string(moved.Records[0].Data))
}

func (s *StoreTestSuite) TestUpdateMissing() {
	_, err := s.store.Update(s.ctx, records.UpdateInput{
		Collection: collection,
		Record:     &records.Record{ID: "nope", Data: json.RawMessage(`{}`)},
	})
	s.True(errors.IsNotFound(err))

	_, err = s.store.Update(s.ctx, records.UpdateInput{Collection: collection, Record: &records.Record{}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestListOrdersByCreation() {
	first := s.create("a", "player-1")
	s.clock.Advance(time.Minute)
	second := s.create("b", "player-2")
	s.clock.Advance(time.Minute)
	third := s.create("c", "player-1")

	all, err := s.store.List(s.ctx, records.ListInput{Collection: collection})
	s.Require().NoError(err)
	s.Equal([]string{first.ID, second.ID, third.ID}, ids(all.Records))

	mine, err := s.store.ListWhere(s.ctx, records.ListWhereInput{Collection: collection, Field: "player_id", Value: "player-1"})
	s.Require().NoError(err)
	s.Equal([]string{first.ID, third.ID}, ids(mine.Records))

	other, err := s.store.List(s.ctx, records.ListInput{Collection: "feedback"})
	s.Require().NoError(err)
	s.Empty(other.Records)
}

func (s *StoreTestSuite) TestDelete() {
	rec := s.create("Thorin", "player-1")

	_, err := s.store.Delete(s.ctx, records.DeleteInput{Collection: collection, ID: rec.ID})
	s.Require().NoError(err)

	_, err = s.store.Get(s.ctx, records.GetInput{Collection: collection, ID: rec.ID})
	s.True(errors.IsNotFound(err))

	byPlayer, err := s.store.ListWhere(s.ctx, records.ListWhereInput{Collection: collection, Field: "player_id", Value: "player-1"})
	s.Require().NoError(err)
	s.Empty(byPlayer.Records)

	_, err = s.store.Delete(s.ctx, records.DeleteInput{Collection: collection, ID: rec.ID})
	s.True(errors.IsNotFound(err))
}

func (s *StoreTestSuite) TestCheckCleanCollection() {
	s.create("Thorin", "player-1")
	s.create("Gimli", "player-2")

	out, err := s.store.Check(s.ctx, records.CheckInput{Collection: collection})

	s.Require().NoError(err)
	s.Equal(2, out.Checked)
	s.Empty(out.Corrupt)
	s.Zero(out.StaleIndexEntries)
	s.False(out.Repaired)

	out, err = s.store.Check(s.ctx, records.CheckInput{Collection: collection, Repair: true})
	s.Require().NoError(err)
	s.Zero(out.Problems())
	s.False(out.Repaired, "nothing was removed")

	_, err = s.store.Check(s.ctx, records.CheckInput{})
	s.True(errors.IsInvalidArgument(err))
}

func ids(recs []*records.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestRedisStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{
		newStore: func(t *testing.T, clk clock.Clock) (records.Store, func()) {
			client, cleanup := testutils.CreateTestRedisClient(t)
			store, err := records.NewRedis(&records.RedisConfig{
				Client: client,
				Clock:  clk,
				IDGen:  idgen.NewSequential("rec"),
			})
			if err != nil {
				t.Fatalf("new redis store: %v", err)
			}
			return store, cleanup
		},
	})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{
		newStore: func(t *testing.T, clk clock.Clock) (records.Store, func()) {
			store, err := records.OpenSQLite(context.Background(), &records.SQLiteConfig{
				Path:  ":memory:",
				Clock: clk,
				IDGen: idgen.NewSequential("rec"),
			})
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			return store, func() { _ = store.Close() }
		},
	})
}

type RedisStoreTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	store   records.Store
	cleanup func()
	ctx     context.Context
}

func (s *RedisStoreTestSuite) SetupTest() {
	client, mr, cleanup := testutils.CreateTestRedisServer(s.T())
	s.mr = mr
	s.cleanup = cleanup
	s.ctx = context.Background()

	store, err := records.NewRedis(&records.RedisConfig{
		Client: client,
		Clock:  clock.NewFixed(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		IDGen:  idgen.NewSequential("rec"),
	})
	s.Require().NoError(err)
	s.store = store
}

func (s *RedisStoreTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisStoreTestSuite) TestKeyLayout() {
	_, err := s.store.Create(s.ctx, records.CreateInput{
		Collection: collection,
		Record: &records.Record{
			Data:   json.RawMessage(`{}`),
			Fields: map[string]string{"race_id": "elf"},
		},
	})
	s.Require().NoError(err)

	s.True(s.mr.Exists("record:characters:rec_1"))
	members, err := s.mr.Members("record:characters:ids")
	s.Require().NoError(err)
	s.Equal([]string{"rec_1"}, members)
	members, err = s.mr.Members("record:characters:idx:race_id:elf")
	s.Require().NoError(err)
	s.Equal([]string{"rec_1"}, members)
}

func (s *RedisStoreTestSuite) TestStaleIndexEntriesAreSkipped() {
	_, err := s.mr.SAdd("record:characters:ids", "ghost")
	s.Require().NoError(err)

	out, err := s.store.List(s.ctx, records.ListInput{Collection: collection})

	s.Require().NoError(err)
	s.Empty(out.Records)
}

func (s *RedisStoreTestSuite) TestUnreachableBackend() {
	s.mr.Close()

	_, err := s.store.Create(s.ctx, records.CreateInput{
		Collection: collection,
		Record:     &records.Record{Data: json.RawMessage(`{}`)},
	})

	s.True(errors.IsUnavailable(err))
}

func (s *RedisStoreTestSuite) TestNewRedisRequiresDependencies() {
	_, err := records.NewRedis(&records.RedisConfig{})
	s.True(errors.IsInvalidArgument(err))

	_, err = records.NewRedis(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisStoreTestSuite) TestCheckFindsAndRepairsDamage() {
	_, err := s.store.Create(s.ctx, records.CreateInput{
		Collection: collection,
		Record: &records.Record{
			Data:   json.RawMessage(`{}`),
			Fields: map[string]string{"race_id": "elf"},
		},
	})
	s.Require().NoError(err)

	s.Require().NoError(s.mr.Set("record:characters:broken", "{not json"))
	_, err = s.mr.SAdd("record:characters:ids", "broken")
	s.Require().NoError(err)
	_, err = s.mr.SAdd("record:characters:idx:race_id:elf", "broken", "ghost")
	s.Require().NoError(err)

	out, err := s.store.Check(s.ctx, records.CheckInput{Collection: collection})
	s.Require().NoError(err)
	s.Equal(2, out.Checked)
	s.Equal([]string{"broken"}, out.Corrupt)
	s.Equal(2, out.StaleIndexEntries)
	s.True(s.mr.Exists("record:characters:broken"), "check alone changes nothing")

	out, err = s.store.Check(s.ctx, records.CheckInput{Collection: collection, Repair: true})
	s.Require().NoError(err)
	s.True(out.Repaired)
	s.False(s.mr.Exists("record:characters:broken"))
	members, err := s.mr.Members("record:characters:idx:race_id:elf")
	s.Require().NoError(err)
	s.Equal([]string{"rec_1"}, members)

	out, err = s.store.Check(s.ctx, records.CheckInput{Collection: collection})
	s.Require().NoError(err)
	s.Equal(1, out.Checked)
	s.Empty(out.Corrupt)
	s.Zero(out.StaleIndexEntries)
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func TestSQLiteStore_CheckRemovesCorruptRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")
	store, err := records.OpenSQLite(ctx, &records.SQLiteConfig{
		Path:  path,
		Clock: clock.New(),
		IDGen: idgen.NewSequential("rec"),
	})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for i := 0; i < 2; i++ {
		_, err := store.Create(ctx, records.CreateInput{
			Collection: collection,
			Record:     &records.Record{Data: json.RawMessage(`{}`), Fields: map[string]string{"player_id": "p"}},
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `UPDATE records SET data = '{oops' WHERE id = 'rec_2'`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	store, err = records.OpenSQLite(ctx, &records.SQLiteConfig{
		Path:  path,
		Clock: clock.New(),
		IDGen: idgen.NewSequential("rec"),
	})
	require.NoError(t, err)

	out, err := store.Check(ctx, records.CheckInput{Collection: collection})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Checked)
	assert.Equal(t, []string{"rec_2"}, out.Corrupt)

	out, err = store.Check(ctx, records.CheckInput{Collection: collection, Repair: true})
	require.NoError(t, err)
	assert.True(t, out.Repaired)

	listed, err := store.ListWhere(ctx, records.ListWhereInput{Collection: collection, Field: "player_id", Value: "p"})
	require.NoError(t, err)
	assert.Len(t, listed.Records, 1)
}
