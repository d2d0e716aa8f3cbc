package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"match_importer/internal/domain"
)

type FeedSource interface {
	ID() string
	FixturesURL() string
	ResultsURL(season, countryCode string, division int) string
	Fetch(ctx context.Context, url string) (*domain.FeedFile, error)
}

type Transformer interface {
	Transform(row domain.Row, matchType domain.MatchType) (*domain.Match, error)
}

// MatchStore persists matches with a single conditional write: fixtures only
// land on an empty key, results land on an empty key or over a fixture.
type MatchStore interface {
	Save(ctx context.Context, match *domain.Match) (domain.SaveOutcome, error)
}

type CheckpointStore interface {
	Get(ctx context.Context, url string) (*domain.ImportCheckpoint, error)
	Put(ctx context.Context, url string, contentLength int64) error
}

type SeasonStore interface {
	Current(ctx context.Context) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, match *domain.Match, outcome domain.SaveOutcome) error
	Close() error
}
