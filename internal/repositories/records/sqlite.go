package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/clock"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE TABLE IF NOT EXISTS record_fields (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	field TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (collection, id, field),
	FOREIGN KEY (collection, id) REFERENCES records (collection, id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS record_fields_lookup ON record_fields (collection, field, value);
`

// SQLiteConfig holds the settings of the SQLite store.
// Path may be ":memory:" for a throwaway database.
type SQLiteConfig struct {
	Path  string
	Clock clock.Clock
	IDGen idgen.Generator
}

// Validate ensures all required settings are present
func (c *SQLiteConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Path", c.Path, vb)
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGen == nil {
		vb.RequiredField("IDGen")
	}
	return vb.Build()
}

// SQLiteStore is a record store in a single SQLite file
type SQLiteStore struct {
	db    *sql.DB
	clock clock.Clock
	idGen idgen.Generator
}

// OpenSQLite opens (creating if needed) the database and ensures the schema
func OpenSQLite(ctx context.Context, cfg *SQLiteConfig) (*SQLiteStore, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	path := strings.TrimSpace(cfg.Path)
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, errors.Wrapf(err, "failed to create %s", parent)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to open sqlite database")
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to configure sqlite database")
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &SQLiteStore{db: db, clock: cfg.Clock, idGen: cfg.IDGen}, nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateWrite(input.Collection, input.Record); err != nil {
		return nil, err
	}

	rec := cloneRecord(input.Record)
	rec.ID = s.idGen.Generate()
	now := s.clock.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			input.Collection, rec.ID, string(rec.Data), rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
		); err != nil {
			return err
		}
		return insertFields(ctx, tx, input.Collection, rec)
	})
	if err != nil {
		return nil, sqliteError(err, "failed to create record")
	}

	return &CreateOutput{Record: rec}, nil
}

func (s *SQLiteStore) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if err := validateWrite(input.Collection, input.Record); err != nil {
		return nil, err
	}
	if input.Record.ID == "" {
		return nil, errors.InvalidArgument(errRecordIDEmpty)
	}

	rec := cloneRecord(input.Record)
	rec.UpdatedAt = s.clock.Now()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var created int64
		err := tx.QueryRowContext(ctx,
			`SELECT created_at FROM records WHERE collection = ? AND id = ?`,
			input.Collection, rec.ID,
		).Scan(&created)
		if err == sql.ErrNoRows {
			return notFound(input.Collection, rec.ID)
		}
		if err != nil {
			return err
		}
		rec.CreatedAt = time.Unix(0, created).UTC()

		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
			string(rec.Data), rec.UpdatedAt.UnixNano(), input.Collection, rec.ID,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM record_fields WHERE collection = ? AND id = ?`,
			input.Collection, rec.ID,
		); err != nil {
			return err
		}
		return insertFields(ctx, tx, input.Collection, rec)
	})
	if err != nil {
		return nil, sqliteError(err, "failed to update record")
	}

	return &UpdateOutput{Record: rec}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.Collection, input.ID); err != nil {
		return nil, err
	}

	recs, err := s.query(ctx, input.Collection,
		`SELECT id, data, created_at, updated_at FROM records WHERE collection = ? AND id = ?`,
		input.Collection, input.ID,
	)
	if err != nil {
		return nil, sqliteError(err, "failed to get record")
	}
	if len(recs) == 0 {
		return nil, notFound(input.Collection, input.ID)
	}

	return &GetOutput{Record: recs[0]}, nil
}

func (s *SQLiteStore) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.Collection == "" {
		return nil, errors.InvalidArgument(errCollectionEmpty)
	}

	recs, err := s.query(ctx, input.Collection,
		`SELECT id, data, created_at, updated_at FROM records WHERE collection = ?`,
		input.Collection,
	)
	if err != nil {
		return nil, sqliteError(err, "failed to list records")
	}

	sortRecords(recs)
	return &ListOutput{Records: recs}, nil
}

func (s *SQLiteStore) ListWhere(ctx context.Context, input ListWhereInput) (*ListOutput, error) {
	if input.Collection == "" {
		return nil, errors.InvalidArgument(errCollectionEmpty)
	}
	if input.Field == "" {
		return nil, errors.InvalidArgument(errFieldEmpty)
	}

	recs, err := s.query(ctx, input.Collection,
		`SELECT r.id, r.data, r.created_at, r.updated_at
		FROM records r
		JOIN record_fields f ON f.collection = r.collection AND f.id = r.id
		WHERE r.collection = ? AND f.field = ? AND f.value = ?`,
		input.Collection, input.Field, input.Value,
	)
	if err != nil {
		return nil, sqliteError(err, "failed to list records")
	}

	sortRecords(recs)
	return &ListOutput{Records: recs}, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateKey(input.Collection, input.ID); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`,
		input.Collection, input.ID,
	)
	if err != nil {
		return nil, sqliteError(err, "failed to delete record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound(input.Collection, input.ID)
	}

	return &DeleteOutput{}, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// query loads records and their fields; rows are read fully before fields are fetched
// because the pool holds a single connection
func (s *SQLiteStore) query(ctx context.Context, collection, stmt string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}

	recs := []*Record{}
	for rows.Next() {
		var (
			rec              Record
			data             string
			created, updated int64
		)
		if err := rows.Scan(&rec.ID, &data, &created, &updated); err != nil {
			_ = rows.Close()
			return nil, err
		}
		rec.Data = json.RawMessage(data)
		rec.CreatedAt = time.Unix(0, created).UTC()
		rec.UpdatedAt = time.Unix(0, updated).UTC()
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for _, rec := range recs {
		fields, err := s.fields(ctx, collection, rec.ID)
		if err != nil {
			return nil, err
		}
		rec.Fields = fields
	}
	return recs, nil
}

func (s *SQLiteStore) fields(ctx context.Context, collection, id string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT field, value FROM record_fields WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var fields map[string]string
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		if fields == nil {
			fields = make(map[string]string)
		}
		fields[field] = value
	}
	return fields, rows.Err()
}

func insertFields(ctx context.Context, tx *sql.Tx, collection string, rec *Record) error {
	for field, value := range rec.Fields {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO record_fields (collection, id, field, value) VALUES (?, ?, ?, ?)`,
			collection, rec.ID, field, value,
		); err != nil {
			return err
		}
	}
	return nil
}

// sqliteError passes through errors that already carry a code
func sqliteError(err error, message string) error {
	if errors.GetCode(err) != errors.CodeInternal && errors.GetCode(err) != errors.CodeOK {
		return err
	}
	return errors.Wrap(err, message)
}

// Check finds rows whose document is not valid JSON. Index rows cascade
// with their record, so none can be stale.
func (s *SQLiteStore) Check(ctx context.Context, input CheckInput) (*CheckOutput, error) {
	if input.Collection == "" {
		return nil, errors.InvalidArgument(errCollectionEmpty)
	}

	out := &CheckOutput{Corrupt: []string{}}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE collection = ?`, input.Collection)
		if err := row.Scan(&out.Checked); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM records WHERE collection = ? AND json_valid(data) = 0 ORDER BY id`,
			input.Collection,
		)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return err
			}
			out.Corrupt = append(out.Corrupt, id)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if !input.Repair {
			return nil
		}
		for _, id := range out.Corrupt {
			slog.Warn("Removing corrupted record", "collection", input.Collection, "record_id", id)
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM records WHERE collection = ? AND id = ?`, input.Collection, id,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, sqliteError(err, "failed to check records")
	}

	out.Repaired = input.Repair && out.Problems() > 0
	return out, nil
}
