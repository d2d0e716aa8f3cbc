package transform

import (
	"strconv"
	"strings"

	"match_importer/internal/domain"
)

type bookmaker struct {
	name   string
	prefix string
}

// bookmakers fixes the order of extracted odds.
var bookmakers = []bookmaker{
	{"Bet365", "B365"},
	{"Betfair", "BF"},
	{"Blue Square", "BS"},
	{"Bet&Win", "BW"},
	{"Gamebookers", "GB"},
	{"Interwetten", "IW"},
	{"Ladbrokes", "LB"},
	{"Pinnacle", "PS"},
	{"Sporting Odds", "SO"},
	{"Sportingbet", "SB"},
	{"Stan James", "SJ"},
	{"Stanleybet", "SY"},
	{"VC Bet", "VC"},
	{"William Hill", "WH"},
}

// ExtractOdds returns one entry per bookmaker that quotes all of home, draw and away.
func ExtractOdds(row domain.Row) []domain.Odds {
	odds := make([]domain.Odds, 0, len(bookmakers))
	for _, b := range bookmakers {
		home := optionalFloat(row, b.prefix+"H")
		draw := optionalFloat(row, b.prefix+"D")
		away := optionalFloat(row, b.prefix+"A")
		if home == nil || draw == nil || away == nil {
			continue
		}
		odds = append(odds, domain.Odds{
			Company: b.name,
			HomeWin: *home,
			Draw:    *draw,
			AwayWin: *away,
		})
	}
	return odds
}

func optionalFloat(row domain.Row, col string) *float64 {
	v, ok := row.Field(col)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return &f
}
