package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
)

const directoryDocument = "users"

// SQLiteStore implements [Store] by keeping the directory document in one row of the documents table.
//
// It keeps the full-document semantics of [FileStore]; SQLite only supplies durability.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new [SQLiteStore] with the given database connection.
//
// The schema must already be migrated, see [shared.RunMigrations].
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the directory row. A missing row is an empty directory.
func (s *SQLiteStore) Load(ctx context.Context) (models.Directory, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = ?", directoryDocument).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Directory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query directory: %v", shared.ErrStorage, err)
	}

	return decodeDirectory([]byte(body))
}

// Save upserts the directory row.
func (s *SQLiteStore) Save(ctx context.Context, dir models.Directory) error {
	data, err := encodeDirectory(dir)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, directoryDocument, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to save directory: %v", shared.ErrStorage, err)
	}

	return nil
}
