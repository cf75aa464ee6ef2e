// If you are AI: This file implements the SQL storage backend over database/sql.
// Stream blobs live in stream_meta; sealed segments live in stream_segment.

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"logbook/internal/core/metadata"
	"logbook/internal/storage"
)

// Store is a storage.Backend over a SQL database.
// Queries use $N placeholders in order of appearance, which postgres, pgx
// and sqlite3 all bind the same way.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens the pool, checks connectivity and creates the tables.
func Open(ctx context.Context, cfg PoolConfig) (*Store, error) {
	db, err := openPool(cfg)
	if err != nil {
		return nil, err
	}

	s := NewWithDB(db, cfg.DriverName)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DriverName, err)
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing pool. driver selects the DDL dialect.
func NewWithDB(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	blob := "BYTEA"
	if s.driver == DriverSQLite {
		blob = "BLOB"
	}

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS stream_meta (name TEXT PRIMARY KEY, schema_blob " + blob + ", alert_blob " + blob + ")",
		"CREATE TABLE IF NOT EXISTS stream_segment (stream TEXT NOT NULL, segment_id TEXT NOT NULL, data " + blob + " NOT NULL, created_at BIGINT NOT NULL, PRIMARY KEY (stream, segment_id))",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ListStreams returns every stream row, ordered by name.
func (s *Store) ListStreams(ctx context.Context) ([]metadata.StreamDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM stream_meta ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	var streams []metadata.StreamDescriptor
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		streams = append(streams, metadata.StreamDescriptor{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}
	return streams, nil
}

// GetSchema returns the schema blob. A missing row or NULL column is ErrObjectNotFound.
func (s *Store) GetSchema(ctx context.Context, name string) ([]byte, error) {
	return s.getBlob(ctx, name, "SELECT schema_blob FROM stream_meta WHERE name = $1", storage.SchemaObject)
}

// GetAlert returns the alert blob. A missing row or NULL column is ErrObjectNotFound.
func (s *Store) GetAlert(ctx context.Context, name string) ([]byte, error) {
	return s.getBlob(ctx, name, "SELECT alert_blob FROM stream_meta WHERE name = $1", storage.AlertObject)
}

// CreateStream inserts an empty stream row.
func (s *Store) CreateStream(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO stream_meta (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	if err != nil {
		return fmt.Errorf("insert stream %s: %w", name, err)
	}
	return nil
}

// DeleteStream removes a stream row and its segments in one transaction.
func (s *Store) DeleteStream(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM stream_segment WHERE stream = $1", name); err != nil {
		return fmt.Errorf("delete segments of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM stream_meta WHERE name = $1", name); err != nil {
		return fmt.Errorf("delete stream %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", name, err)
	}
	return nil
}

// PutSchema replaces the schema blob of an existing stream.
func (s *Store) PutSchema(ctx context.Context, name string, schema []byte) error {
	return s.setBlob(ctx, name, "UPDATE stream_meta SET schema_blob = $1 WHERE name = $2", schema, storage.SchemaObject)
}

// PutAlert replaces the alert blob of an existing stream.
func (s *Store) PutAlert(ctx context.Context, name string, alert []byte) error {
	return s.setBlob(ctx, name, "UPDATE stream_meta SET alert_blob = $1 WHERE name = $2", alert, storage.AlertObject)
}

// PutSegment stores a sealed segment row.
func (s *Store) PutSegment(ctx context.Context, name, segmentID string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO stream_segment (stream, segment_id, data, created_at) VALUES ($1, $2, $3, $4)",
		name, segmentID, data, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert segment %s/%s: %w", name, segmentID, err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// getBlob runs a single-column blob query for name.
func (s *Store) getBlob(ctx context.Context, name, query, object string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, query, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound(name, object)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s/%s: %w", name, object, err)
	}
	if blob == nil {
		return nil, storage.NotFound(name, object)
	}
	return blob, nil
}

// setBlob runs a single-row update, reporting a missing stream as ErrObjectNotFound.
func (s *Store) setBlob(ctx context.Context, name, query string, blob []byte, object string) error {
	if blob == nil {
		blob = []byte{}
	}
	res, err := s.db.ExecContext(ctx, query, blob, name)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", name, object, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", name, object, err)
	}
	if n == 0 {
		return storage.NotFound(name, "")
	}
	return nil
}

var _ storage.Backend = (*Store)(nil)
