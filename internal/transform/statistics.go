package transform

import (
	"strconv"
	"strings"

	"match_importer/internal/domain"
)

// ExtractStatistics reads the optional per-match counters. Absent or
// unparseable columns stay nil; nil is returned when no counter is present.
func ExtractStatistics(row domain.Row) *domain.Statistics {
	s := &domain.Statistics{
		Attendance: optionalInt(row, "Attendance"),

		HomeGoals:             optionalInt(row, "FTHG"),
		HalftimeHomeGoals:     optionalInt(row, "HTHG"),
		HomeShots:             optionalInt(row, "HS"),
		HomeShotsOnTarget:     optionalInt(row, "HST"),
		HomeHitWoodwork:       optionalInt(row, "HHW"),
		HomeCorners:           optionalInt(row, "HC"),
		HomeFoulsCommitted:    optionalInt(row, "HF"),
		HomeFreeKicksConceded: optionalInt(row, "HFKC"),
		HomeOffsides:          optionalInt(row, "HO"),
		HomeYellowCards:       optionalInt(row, "HY"),
		HomeRedCards:          optionalInt(row, "HR"),
		HomeBookingsPoints:    optionalInt(row, "HBP"),

		AwayGoals:             optionalInt(row, "FTAG"),
		HalftimeAwayGoals:     optionalInt(row, "HTAG"),
		AwayShots:             optionalInt(row, "AS"),
		AwayShotsOnTarget:     optionalInt(row, "AST"),
		AwayHitWoodwork:       optionalInt(row, "AHW"),
		AwayCorners:           optionalInt(row, "AC"),
		AwayFoulsCommitted:    optionalInt(row, "AF"),
		AwayFreeKicksConceded: optionalInt(row, "AFKC"),
		AwayOffsides:          optionalInt(row, "AO"),
		AwayYellowCards:       optionalInt(row, "AY"),
		AwayRedCards:          optionalInt(row, "AR"),
		AwayBookingsPoints:    optionalInt(row, "ABP"),
	}

	if *s == (domain.Statistics{}) {
		return nil
	}
	return s
}

func optionalInt(row domain.Row, col string) *int {
	v, ok := row.Field(col)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}
