package service

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"match_importer/internal/domain"
	"match_importer/internal/logging"
	"match_importer/internal/source/footballdata"
)

type ImportService struct {
	source      FeedSource
	transformer Transformer
	matches     MatchStore
	checkpoints CheckpointStore
	seasons     SeasonStore
	detector    *ChangeDetector
	publisher   Publisher
	validate    *validator.Validate
	logger      *logging.Logger
}

func NewImportService(
	source FeedSource,
	transformer Transformer,
	matches MatchStore,
	checkpoints CheckpointStore,
	seasons SeasonStore,
	publisher Publisher,
	logger *logging.Logger,
) *ImportService {
	return &ImportService{
		source:      source,
		transformer: transformer,
		matches:     matches,
		checkpoints: checkpoints,
		seasons:     seasons,
		detector:    NewChangeDetector(checkpoints),
		publisher:   publisher,
		validate:    validator.New(),
		logger:      logger.With("source", source.ID()),
	}
}

// ImportFixtures imports the upcoming-fixtures feed.
func (s *ImportService) ImportFixtures(ctx context.Context) (*domain.ImportStats, error) {
	return s.importFeed(ctx, s.source.FixturesURL(), domain.MatchTypeFixture)
}

// ImportResults imports one league's results for a season, defaulting to the
// current season when the request leaves it blank.
func (s *ImportService) ImportResults(ctx context.Context, req domain.ResultFeedRequest) (*domain.ImportStats, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "validate result feed request"), domain.ErrInvalidInput)
	}

	season := req.Season
	if season == "" {
		current, err := s.seasons.Current(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "resolve current season")
		}
		season = current
	}

	url := s.source.ResultsURL(season, req.CountryCode, req.Division)
	return s.importFeed(ctx, url, domain.MatchTypeResult)
}

func (s *ImportService) importFeed(ctx context.Context, url string, matchType domain.MatchType) (*domain.ImportStats, error) {
	startTime := time.Now()
	logger := s.logger.With("url", url, "type", string(matchType))
	logger.Info("starting import")

	file, err := s.source.Fetch(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "fetch feed")
	}

	stats := &domain.ImportStats{
		URL:           url,
		Type:          matchType,
		ContentLength: file.ContentLength,
	}

	changed, err := s.detector.ShouldProcess(ctx, url, file.ContentLength)
	if err != nil {
		return nil, err
	}
	if !changed {
		stats.Unchanged = true
		stats.Duration = time.Since(startTime)
		logger.Info("feed unchanged, skipping", "content_length", file.ContentLength)
		return stats, nil
	}

	rows := footballdata.Decode(file.Data)
	for {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrap(err, "import interrupted")
		}

		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		var rowErr *footballdata.RowError
		switch {
		case errors.As(err, &rowErr):
			stats.Rows++
			stats.Failed++
			logger.Warn("skipping malformed line", "line", rowErr.Line, "error", err)
			continue
		case err != nil:
			return stats, errors.Wrap(err, "decode feed")
		}

		stats.Rows++
		s.importRow(ctx, logger.With("line", rows.Line()), row, matchType, stats)
	}

	if err := s.checkpoints.Put(ctx, url, file.ContentLength); err != nil {
		return stats, errors.Mark(errors.Wrap(err, "update checkpoint"), domain.ErrCheckpoint)
	}

	stats.Duration = time.Since(startTime)
	logger.Info("import completed",
		"rows", stats.Rows,
		"inserted", stats.Inserted,
		"upgraded", stats.Upgraded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

// importRow never fails the invocation: problems are counted and logged.
func (s *ImportService) importRow(ctx context.Context, logger *logging.Logger, row domain.Row, matchType domain.MatchType, stats *domain.ImportStats) {
	match, err := s.transformer.Transform(row, matchType)
	if err != nil {
		stats.Failed++
		logger.Warn("skipping row", "error", err)
		return
	}

	outcome, err := s.matches.Save(ctx, match)
	if err != nil {
		stats.Failed++
		logger.Warn("failed to save match", "id", match.ID(), "date", match.Date, "error", err)
		return
	}

	switch outcome {
	case domain.SaveInserted:
		stats.Inserted++
	case domain.SaveUpgraded:
		stats.Upgraded++
	default:
		stats.Skipped++
		logger.Info("match already recorded, skipping", "id", match.ID(), "date", match.Date)
		return
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, match, outcome); err != nil {
		logger.Warn("failed to publish match", "id", match.ID(), "error", err)
		return
	}
	stats.Published++
}
