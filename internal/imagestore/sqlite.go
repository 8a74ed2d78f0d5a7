package imagestore

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLite stores images as blobs in the images table.
type SQLite struct {
	DB *sql.DB
}

// Put stores data under key, replacing any previous image.
func (s *SQLite) Put(ctx context.Context, key string, data []byte, mime string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO images (key, data, mime) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, mime = excluded.mime`,
		key, data, mime,
	)
	if err != nil {
		return fmt.Errorf("storing image: %w", err)
	}
	return nil
}

// Get returns the image stored under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := s.DB.QueryRowContext(ctx,
		`SELECT data, mime FROM images WHERE key = ?`, key,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting image: %w", err)
	}
	return data, mime, nil
}
