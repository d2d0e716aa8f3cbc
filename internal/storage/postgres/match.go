package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"match_importer/internal/domain"
)

// saveMatchQuery is the whole write policy in one statement. A new key is
// inserted; an existing key is only overwritten when a result replaces a
// fixture. Anything else returns no row, i.e. the condition failed.
const saveMatchQuery = `
	INSERT INTO matches (
		id, date, type, country_code, division, home_team, home_team_id,
		away_team, away_team_id, referee, result, halftime_result,
		statistics, odds, modified_at, expiration
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb, $14::jsonb, $15, $16
	)
	ON CONFLICT (id, date) DO UPDATE SET
		type = EXCLUDED.type,
		country_code = EXCLUDED.country_code,
		division = EXCLUDED.division,
		home_team = EXCLUDED.home_team,
		home_team_id = EXCLUDED.home_team_id,
		away_team = EXCLUDED.away_team,
		away_team_id = EXCLUDED.away_team_id,
		referee = EXCLUDED.referee,
		result = EXCLUDED.result,
		halftime_result = EXCLUDED.halftime_result,
		statistics = EXCLUDED.statistics,
		odds = EXCLUDED.odds,
		modified_at = EXCLUDED.modified_at,
		expiration = EXCLUDED.expiration
	WHERE matches.type = 'FIXTURE' AND EXCLUDED.type = 'RESULT'
	RETURNING (xmax = 0) AS inserted`

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) Save(ctx context.Context, match *domain.Match) (domain.SaveOutcome, error) {
	statistics, err := encodeJSON(match.Statistics)
	if err != nil {
		return domain.SaveSkipped, errors.Wrap(err, "encode statistics")
	}
	odds, err := sonic.Marshal(oddsOrEmpty(match.Odds))
	if err != nil {
		return domain.SaveSkipped, errors.Wrap(err, "encode odds")
	}

	var inserted bool
	err = s.db.QueryRowContext(ctx, saveMatchQuery,
		match.ID(),
		match.Date.UTC(),
		string(match.Type),
		match.CountryCode,
		match.Division,
		match.HomeTeam,
		match.HomeTeamID(),
		match.AwayTeam,
		match.AwayTeamID(),
		match.Referee,
		match.Result,
		match.HalftimeResult,
		statistics,
		string(odds),
		match.ModifiedAt.UTC(),
		match.Expiration,
	).Scan(&inserted)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.SaveSkipped, nil
	}
	if err != nil {
		return domain.SaveSkipped, errors.Wrapf(err, "save match %s", match.ID())
	}
	if inserted {
		return domain.SaveInserted, nil
	}
	return domain.SaveUpgraded, nil
}

type matchRow struct {
	ID             string         `db:"id"`
	Date           time.Time      `db:"date"`
	Type           string         `db:"type"`
	CountryCode    string         `db:"country_code"`
	Division       int            `db:"division"`
	HomeTeam       string         `db:"home_team"`
	AwayTeam       string         `db:"away_team"`
	Referee        sql.NullString `db:"referee"`
	Result         sql.NullString `db:"result"`
	HalftimeResult sql.NullString `db:"halftime_result"`
	Statistics     sql.NullString `db:"statistics"`
	Odds           string         `db:"odds"`
	ModifiedAt     time.Time      `db:"modified_at"`
	Expiration     int64          `db:"expiration"`
}

// Get loads the record stored under (id, date), or nil.
func (s *MatchStore) Get(ctx context.Context, id string, date time.Time) (*domain.Match, error) {
	query := `
		SELECT id, date, type, country_code, division, home_team, away_team,
			referee, result, halftime_result, statistics::text AS statistics,
			odds::text AS odds, modified_at, expiration
		FROM matches
		WHERE id = $1 AND date = $2`

	var row matchRow
	err := s.db.GetContext(ctx, &row, query, id, date.UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get match %s", id)
	}
	return row.toDomain()
}

func (r matchRow) toDomain() (*domain.Match, error) {
	m := &domain.Match{
		Type:           domain.MatchType(r.Type),
		CountryCode:    r.CountryCode,
		Division:       r.Division,
		Date:           r.Date.UTC(),
		Referee:        nullable(r.Referee),
		HomeTeam:       r.HomeTeam,
		AwayTeam:       r.AwayTeam,
		Result:         nullable(r.Result),
		HalftimeResult: nullable(r.HalftimeResult),
		ModifiedAt:     r.ModifiedAt.UTC(),
		Expiration:     r.Expiration,
	}

	if r.Statistics.Valid {
		m.Statistics = &domain.Statistics{}
		if err := sonic.UnmarshalString(r.Statistics.String, m.Statistics); err != nil {
			return nil, errors.Wrap(err, "decode statistics")
		}
	}
	if err := sonic.UnmarshalString(r.Odds, &m.Odds); err != nil {
		return nil, errors.Wrap(err, "decode odds")
	}
	return m, nil
}

func encodeJSON(stats *domain.Statistics) (*string, error) {
	if stats == nil {
		return nil, nil
	}
	s, err := sonic.MarshalString(stats)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func oddsOrEmpty(odds []domain.Odds) []domain.Odds {
	if odds == nil {
		return []domain.Odds{}
	}
	return odds
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
