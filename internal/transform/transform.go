// Package transform turns raw feed rows into canonical match records.
package transform

import (
	"strings"
	"time"

	"match_importer/internal/domain"
)

const (
	ColDivision = "Div"
	ColDate     = "Date"
	ColTime     = "Time"
	ColHomeTeam = "HomeTeam"
	ColAwayTeam = "AwayTeam"
	ColReferee  = "Referee"
	ColResult   = "FTR"
	ColHalftime = "HTR"
)

const (
	fixtureLifetimeDays = 7
	resultLifetimeYears = 2
)

type Transformer struct {
	now func() time.Time
}

func New() *Transformer {
	return &Transformer{now: time.Now}
}

// NewWithClock pins the ingestion time stamped on every record.
func NewWithClock(now func() time.Time) *Transformer {
	return &Transformer{now: now}
}

// Transform maps one row to a Match of the given type. A *FieldError is
// returned when a required column is missing or a team name is blank.
func (t *Transformer) Transform(row domain.Row, matchType domain.MatchType) (*domain.Match, error) {
	div, ok := row.Field(ColDivision)
	if !ok {
		return nil, missing(ColDivision)
	}
	date, ok := row.Field(ColDate)
	if !ok {
		return nil, missing(ColDate)
	}
	home, err := requiredText(row, ColHomeTeam)
	if err != nil {
		return nil, err
	}
	away, err := requiredText(row, ColAwayTeam)
	if err != nil {
		return nil, err
	}

	clock, ok := row.Field(ColTime)
	if !ok {
		clock = ""
	}

	countryCode, division := DecodeDivision(div)
	kickoff := ParseDate(date, clock)

	return &domain.Match{
		Type:           matchType,
		CountryCode:    countryCode,
		Division:       division,
		Date:           kickoff,
		Referee:        optionalText(row, ColReferee),
		HomeTeam:       home,
		AwayTeam:       away,
		Result:         optionalText(row, ColResult),
		HalftimeResult: optionalText(row, ColHalftime),
		Statistics:     ExtractStatistics(row),
		Odds:           ExtractOdds(row),
		ModifiedAt:     t.now().UTC(),
		Expiration:     Expiration(kickoff, matchType),
	}, nil
}

// DecodeDivision splits a combined country+division code such as "E0" or "SC1".
// The last character is the division; a non-digit means the non-league bucket (4).
// England and Scotland number their top flight from zero, so one is added.
func DecodeDivision(combined string) (string, int) {
	if combined == "" {
		return "", 0
	}

	r := []rune(combined)
	countryCode := string(r[:len(r)-1])
	last := r[len(r)-1]

	division := 4
	if last >= '0' && last <= '9' {
		division = int(last - '0')
	}

	if countryCode == "E" || countryCode == "SC" {
		division++
	}

	return countryCode, division
}

// ParseDate reads dd/MM/yyyy then dd/MM/yy, both with an HH:mm clock, as UTC.
// Blank or unparseable dates yield the zero time.
func ParseDate(date, clock string) time.Time {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "00:00"
	}

	value := date + " " + clock
	if t, err := time.ParseInLocation("02/01/2006 15:04", value, time.UTC); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("02/01/06 15:04", value, time.UTC); err == nil {
		// Two-digit years pivot at 2049: 50..99 belong to the 1900s.
		if t.Year() >= 2050 {
			t = t.AddDate(-100, 0, 0)
		}
		return t
	}
	return time.Time{}
}

// Expiration is the unix time after which the record may be evicted.
func Expiration(date time.Time, matchType domain.MatchType) int64 {
	if matchType == domain.MatchTypeResult {
		return date.AddDate(resultLifetimeYears, 0, 0).Unix()
	}
	return date.AddDate(0, 0, fixtureLifetimeDays).Unix()
}

func requiredText(row domain.Row, col string) (string, error) {
	v, ok := row.Field(col)
	if !ok {
		return "", missing(col)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", &FieldError{Field: col, Reason: "blank"}
	}
	return v, nil
}

func optionalText(row domain.Row, col string) *string {
	v, ok := row.Field(col)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
