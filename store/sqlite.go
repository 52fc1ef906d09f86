package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Aashish23092/shipment-label-extractor/dto"
)

// SQLiteStore persists batches so results survive a restart. Documents and
// records are stored as JSON columns; records keep their placeholder strings.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS batches (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL,
	documents  TEXT NOT NULL,
	records    TEXT NOT NULL
)`)
	return err
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, batch dto.Batch) error {
	docs, err := json.Marshal(batch.Documents)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	records, err := json.Marshal(batch.Records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO batches (id, created_at, documents, records) VALUES (?, ?, ?, ?)`,
		batch.ID, batch.CreatedAt.UTC().Format(time.RFC3339Nano), string(docs), string(records))
	if err != nil {
		return fmt.Errorf("inserting batch %s: %w", batch.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetBatch(ctx context.Context, id string) (dto.Batch, error) {
	query := `SELECT id, created_at, documents, records FROM batches WHERE id = ?`
	args := []interface{}{id}
	if id == LatestID {
		query = `SELECT id, created_at, documents, records FROM batches ORDER BY seq DESC LIMIT 1`
		args = nil
	}

	var (
		batch              dto.Batch
		createdAt          string
		docsJSON, recsJSON string
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&batch.ID, &createdAt, &docsJSON, &recsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return dto.Batch{}, dto.ErrBatchNotFound
	}
	if err != nil {
		return dto.Batch{}, fmt.Errorf("querying batch %s: %w", id, err)
	}

	if batch.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return dto.Batch{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(docsJSON), &batch.Documents); err != nil {
		return dto.Batch{}, fmt.Errorf("decoding documents: %w", err)
	}
	if err := json.Unmarshal([]byte(recsJSON), &batch.Records); err != nil {
		return dto.Batch{}, fmt.Errorf("decoding records: %w", err)
	}
	return batch, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
