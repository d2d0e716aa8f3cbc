//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"match_importer/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "000001_create_matches.up.sql"),
			filepath.Join(migrationsPath, "000002_create_import_checkpoints.up.sql"),
			filepath.Join(migrationsPath, "000003_create_seasons.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM matches")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM import_checkpoints")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM seasons")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func ptr[T any](v T) *T {
	return &v
}

func testMatch(matchType domain.MatchType, referee string) *domain.Match {
	date := time.Date(2023, 8, 11, 20, 0, 0, 0, time.UTC)
	return &domain.Match{
		Type:        matchType,
		CountryCode: "E",
		Division:    1,
		Date:        date,
		Referee:     ptr(referee),
		HomeTeam:    "Burnley",
		AwayTeam:    "Man City",
		Odds:        []domain.Odds{{Company: "Bet365", HomeWin: 8, Draw: 5.5, AwayWin: 1.33}},
		ModifiedAt:  time.Now().UTC().Truncate(time.Microsecond),
		Expiration:  date.AddDate(0, 0, 7).Unix(),
	}
}

func (s *PostgresIntegrationSuite) TestMatchStore_InsertAndGet() {
	store := NewMatchStore(s.db)
	match := testMatch(domain.MatchTypeResult, "A Taylor")
	match.Result = ptr("A")
	match.Statistics = &domain.Statistics{HomeGoals: ptr(0), AwayGoals: ptr(3)}

	outcome, err := store.Save(s.ctx, match)
	s.NoError(err)
	s.Equal(domain.SaveInserted, outcome)

	stored, err := store.Get(s.ctx, match.ID(), match.Date)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(domain.MatchTypeResult, stored.Type)
	s.Equal("A", *stored.Result)
	s.Equal(3, *stored.Statistics.AwayGoals)
	s.Nil(stored.Statistics.HomeShots)
	s.Len(stored.Odds, 1)
	s.Equal(match.Date, stored.Date)
}

func (s *PostgresIntegrationSuite) TestMatchStore_FixtureThenFixtureSkips() {
	store := NewMatchStore(s.db)

	outcome, err := store.Save(s.ctx, testMatch(domain.MatchTypeFixture, "first"))
	s.NoError(err)
	s.Equal(domain.SaveInserted, outcome)

	outcome, err = store.Save(s.ctx, testMatch(domain.MatchTypeFixture, "second"))
	s.NoError(err)
	s.Equal(domain.SaveSkipped, outcome)

	stored, err := store.Get(s.ctx, "e#burnley#man-city", testMatch(domain.MatchTypeFixture, "").Date)
	s.Require().NoError(err)
	s.Equal("first", *stored.Referee)
}

func (s *PostgresIntegrationSuite) TestMatchStore_FixtureThenResultUpgrades() {
	store := NewMatchStore(s.db)

	_, err := store.Save(s.ctx, testMatch(domain.MatchTypeFixture, "fixture"))
	s.NoError(err)

	result := testMatch(domain.MatchTypeResult, "result")
	outcome, err := store.Save(s.ctx, result)
	s.NoError(err)
	s.Equal(domain.SaveUpgraded, outcome)

	stored, err := store.Get(s.ctx, result.ID(), result.Date)
	s.Require().NoError(err)
	s.Equal(domain.MatchTypeResult, stored.Type)
	s.Equal("result", *stored.Referee)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM matches"))
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestMatchStore_ResultThenFixtureSkips() {
	store := NewMatchStore(s.db)

	_, err := store.Save(s.ctx, testMatch(domain.MatchTypeResult, "result"))
	s.NoError(err)

	fixture := testMatch(domain.MatchTypeFixture, "fixture")
	outcome, err := store.Save(s.ctx, fixture)
	s.NoError(err)
	s.Equal(domain.SaveSkipped, outcome)

	stored, err := store.Get(s.ctx, fixture.ID(), fixture.Date)
	s.Require().NoError(err)
	s.Equal(domain.MatchTypeResult, stored.Type)
	s.Equal("result", *stored.Referee)
}

func (s *PostgresIntegrationSuite) TestMatchStore_ResultReplaySkips() {
	store := NewMatchStore(s.db)

	_, err := store.Save(s.ctx, testMatch(domain.MatchTypeResult, "first"))
	s.NoError(err)

	outcome, err := store.Save(s.ctx, testMatch(domain.MatchTypeResult, "second"))
	s.NoError(err)
	s.Equal(domain.SaveSkipped, outcome)
}

func (s *PostgresIntegrationSuite) TestMatchStore_DifferentDateIsDifferentKey() {
	store := NewMatchStore(s.db)

	first := testMatch(domain.MatchTypeResult, "first leg")
	second := testMatch(domain.MatchTypeFixture, "second leg")
	second.Date = first.Date.AddDate(0, 5, 0)

	_, err := store.Save(s.ctx, first)
	s.NoError(err)
	outcome, err := store.Save(s.ctx, second)
	s.NoError(err)
	s.Equal(domain.SaveInserted, outcome)
}

func (s *PostgresIntegrationSuite) TestMatchStore_ConcurrentFixtureAndResult() {
	store := NewMatchStore(s.db)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Save(s.ctx, testMatch(domain.MatchTypeFixture, "fixture"))
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := store.Save(s.ctx, testMatch(domain.MatchTypeResult, "result"))
			s.NoError(err)
		}()
	}
	wg.Wait()

	m := testMatch(domain.MatchTypeResult, "")
	stored, err := store.Get(s.ctx, m.ID(), m.Date)
	s.Require().NoError(err)
	s.Equal(domain.MatchTypeResult, stored.Type)
}

func (s *PostgresIntegrationSuite) TestMatchStore_GetMissing() {
	stored, err := NewMatchStore(s.db).Get(s.ctx, "x#y#z", time.Now())
	s.NoError(err)
	s.Nil(stored)
}

func (s *PostgresIntegrationSuite) TestCheckpointStore_GetMissing() {
	store := NewCheckpointStore(s.db)

	checkpoint, err := store.Get(s.ctx, "https://feeds.test/fixtures.csv")
	s.NoError(err)
	s.Nil(checkpoint)
}

func (s *PostgresIntegrationSuite) TestCheckpointStore_PutAndOverwrite() {
	store := NewCheckpointStore(s.db)
	url := "https://feeds.test/fixtures.csv"

	s.NoError(store.Put(s.ctx, url, 1000))
	first, err := store.Get(s.ctx, url)
	s.Require().NoError(err)
	s.Equal(int64(1000), first.LastContentLength)
	s.WithinDuration(time.Now(), first.LastModifiedAt, time.Minute)

	s.NoError(store.Put(s.ctx, url, 1200))
	second, err := store.Get(s.ctx, url)
	s.Require().NoError(err)
	s.Equal(url, second.URL)
	s.Equal(int64(1200), second.LastContentLength)
}

func (s *PostgresIntegrationSuite) TestSeasonStore_Current() {
	store := NewSeasonStore(s.db)

	_, err := store.Current(s.ctx)
	s.ErrorIs(err, domain.ErrNoSeason)

	s.NoError(store.Add(s.ctx, "2223", "2324"))
	s.NoError(store.Add(s.ctx, "2324"))

	current, err := store.Current(s.ctx)
	s.NoError(err)
	s.Equal("2324", current)
}
