package footballdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"match_importer/internal/domain"
	"match_importer/internal/logging"
)

const (
	SourceID   = "football-data"
	SourceName = "Football-Data.co.uk"

	DefaultBaseURL = "https://www.football-data.co.uk"
	fixturesPath   = "fixtures.csv"
)

// Config holds football-data source configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Source downloads fixture and result feeds. Failures are returned as-is;
// retrying is left to whoever schedules the import.
type Source struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logging.Logger
}

func New(cfg Config, logger *logging.Logger) *Source {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "MatchImporter/1.0"
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   baseURL,
		userAgent: userAgent,
		logger:    logger.With("source", SourceID),
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

// FixturesURL is the feed of upcoming matches across all leagues.
func (s *Source) FixturesURL() string {
	return s.baseURL + "/" + fixturesPath
}

// ResultsURL is the per-season, per-league results feed, e.g. .../mmz4281/2324/E0.csv.
func (s *Source) ResultsURL(season, countryCode string, division int) string {
	return fmt.Sprintf("%s/mmz4281/%s/%s%s.csv", s.baseURL, season, countryCode, DivisionCode(countryCode, division))
}

// DivisionCode reverses the numbering offset applied when records are decoded:
// English and Scottish feeds number their top flight 0, and the English
// fifth tier (National League) is published as "C".
func DivisionCode(countryCode string, division int) string {
	switch countryCode {
	case "E":
		if division == 5 {
			return "C"
		}
		return fmt.Sprintf("%d", division-1)
	case "SC":
		return fmt.Sprintf("%d", division-1)
	default:
		return fmt.Sprintf("%d", division)
	}
}

// Fetch downloads the whole feed. The returned content length is the number
// of body bytes received, which is what change detection compares.
func (s *Source) Fetch(ctx context.Context, url string) (*domain.FeedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "execute request %s", url), domain.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read body %s", url), domain.ErrTransport)
	}

	s.logger.Debug("fetched feed",
		"url", url,
		"bytes", len(data),
		"content_length_header", resp.ContentLength,
	)

	return &domain.FeedFile{
		URL:           url,
		ContentLength: int64(len(data)),
		Data:          data,
	}, nil
}
