package postgres

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"match_importer/internal/domain"
)

// SeasonStore tracks the season codes ("2324") feeds are published under.
type SeasonStore struct {
	db *sqlx.DB
}

func NewSeasonStore(db *sqlx.DB) *SeasonStore {
	return &SeasonStore{db: db}
}

// Current is the latest registered season.
func (s *SeasonStore) Current(ctx context.Context) (string, error) {
	var code string
	err := s.db.GetContext(ctx, &code, `SELECT code FROM seasons ORDER BY code DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNoSeason
	}
	if err != nil {
		return "", errors.Wrap(err, "query current season")
	}
	return code, nil
}

func (s *SeasonStore) Add(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO seasons (code) SELECT unnest($1::text[]) ON CONFLICT (code) DO NOTHING`,
		pq.Array(codes),
	)
	return err
}
