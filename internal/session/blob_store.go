package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/askdokita/dokita/internal/db"
	"github.com/askdokita/dokita/internal/debug"
)

// blobKey is the fixed storage key for the serialized session collection.
const blobKey = "sessions"

// BlobStore persists the session collection as a single JSON value in
// SQLite.
type BlobStore struct {
	db *db.DB
}

// NewBlobStore creates a BlobStore backed by the given database.
func NewBlobStore(database *db.DB) *BlobStore {
	return &BlobStore{db: database}
}

// Load reads the persisted collection. A missing row or a value that no
// longer parses yields an empty collection, never an error to the caller.
func (s *BlobStore) Load() ([]*Session, error) {
	var value string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value FROM blobs WHERE key = ?", blobKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	var sessions []*Session
	if err := json.Unmarshal([]byte(value), &sessions); err != nil {
		debug.Error("session", err, "discarding unreadable session data")
		return nil, nil
	}
	return sessions, nil
}

// Save overwrites the persisted collection.
func (s *BlobStore) Save(sessions []*Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}

	_, err = s.db.ExecContext(context.Background(),
		`INSERT INTO blobs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		blobKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving sessions: %w", err)
	}
	return nil
}
