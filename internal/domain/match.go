package domain

import (
	"time"

	"match_importer/internal/slug"
)

// MatchType is the lifecycle stage of a match record.
type MatchType string

const (
	MatchTypeFixture MatchType = "FIXTURE"
	MatchTypeResult  MatchType = "RESULT"
)

// IDSeparator joins the slugs making up a match identity.
const IDSeparator = "#"

type Match struct {
	Type           MatchType   `json:"type"`
	CountryCode    string      `json:"countryCode"`
	Division       int         `json:"division"`
	Date           time.Time   `json:"date"`
	Referee        *string     `json:"referee,omitempty"`
	HomeTeam       string      `json:"homeTeam"`
	AwayTeam       string      `json:"awayTeam"`
	Result         *string     `json:"result,omitempty"`
	HalftimeResult *string     `json:"halftimeResult,omitempty"`
	Statistics     *Statistics `json:"statistics,omitempty"`
	Odds           []Odds      `json:"odds"`
	ModifiedAt     time.Time   `json:"modifiedAt"`
	Expiration     int64       `json:"expiration"`
}

// ID is derived from the country and both team names; it is never assigned.
func (m *Match) ID() string {
	return slug.Make(m.CountryCode) + IDSeparator + m.HomeTeamID() + IDSeparator + m.AwayTeamID()
}

func (m *Match) HomeTeamID() string {
	return slug.Make(m.HomeTeam)
}

func (m *Match) AwayTeamID() string {
	return slug.Make(m.AwayTeam)
}

// Odds is a single bookmaker's 1X2 quote. Entries are only kept when all three prices exist.
type Odds struct {
	Company string  `json:"company"`
	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`
}

type Statistics struct {
	Attendance            *int `json:"attendance,omitempty"`
	HomeGoals             *int `json:"homeGoals,omitempty"`
	AwayGoals             *int `json:"awayGoals,omitempty"`
	HalftimeHomeGoals     *int `json:"halftimeHomeGoals,omitempty"`
	HalftimeAwayGoals     *int `json:"halftimeAwayGoals,omitempty"`
	HomeShots             *int `json:"homeShots,omitempty"`
	AwayShots             *int `json:"awayShots,omitempty"`
	HomeShotsOnTarget     *int `json:"homeShotsOnTarget,omitempty"`
	AwayShotsOnTarget     *int `json:"awayShotsOnTarget,omitempty"`
	HomeHitWoodwork       *int `json:"homeHitWoodwork,omitempty"`
	AwayHitWoodwork       *int `json:"awayHitWoodwork,omitempty"`
	HomeCorners           *int `json:"homeCorners,omitempty"`
	AwayCorners           *int `json:"awayCorners,omitempty"`
	HomeFoulsCommitted    *int `json:"homeFoulsCommitted,omitempty"`
	AwayFoulsCommitted    *int `json:"awayFoulsCommitted,omitempty"`
	HomeFreeKicksConceded *int `json:"homeFreeKicksConceded,omitempty"`
	AwayFreeKicksConceded *int `json:"awayFreeKicksConceded,omitempty"`
	HomeOffsides          *int `json:"homeOffsides,omitempty"`
	AwayOffsides          *int `json:"awayOffsides,omitempty"`
	HomeYellowCards       *int `json:"homeYellowCards,omitempty"`
	AwayYellowCards       *int `json:"awayYellowCards,omitempty"`
	HomeRedCards          *int `json:"homeRedCards,omitempty"`
	AwayRedCards          *int `json:"awayRedCards,omitempty"`
	HomeBookingsPoints    *int `json:"homeBookingsPoints,omitempty"` // 10 per yellow, 25 per red
	AwayBookingsPoints    *int `json:"awayBookingsPoints,omitempty"`
}

// SaveOutcome reports what a conditional write did.
type SaveOutcome int

const (
	SaveSkipped SaveOutcome = iota
	SaveInserted
	SaveUpgraded
)

func (o SaveOutcome) String() string {
	switch o {
	case SaveInserted:
		return "insert"
	case SaveUpgraded:
		return "upgrade"
	default:
		return "skip"
	}
}

// Written reports whether the store accepted the record.
func (o SaveOutcome) Written() bool {
	return o == SaveInserted || o == SaveUpgraded
}
