package postgres

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"match_importer/internal/domain"
)

type CheckpointStore struct {
	db *sqlx.DB
}

func NewCheckpointStore(db *sqlx.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

// Get returns nil when the url has never been imported.
func (s *CheckpointStore) Get(ctx context.Context, url string) (*domain.ImportCheckpoint, error) {
	var checkpoint domain.ImportCheckpoint
	query := `
		SELECT url, last_content_length, last_modified_at
		FROM import_checkpoints
		WHERE url = $1`

	err := s.db.GetContext(ctx, &checkpoint, query, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

func (s *CheckpointStore) Put(ctx context.Context, url string, contentLength int64) error {
	query := `
		INSERT INTO import_checkpoints (url, last_content_length, last_modified_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (url) DO UPDATE SET
			last_content_length = EXCLUDED.last_content_length,
			last_modified_at = EXCLUDED.last_modified_at`

	_, err := s.db.ExecContext(ctx, query, url, contentLength)
	return err
}
