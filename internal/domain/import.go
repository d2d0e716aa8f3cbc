package domain

import "time"

// ImportCheckpoint remembers the size of the last fully imported copy of a feed.
type ImportCheckpoint struct {
	URL               string    `db:"url"`
	LastContentLength int64     `db:"last_content_length"`
	LastModifiedAt    time.Time `db:"last_modified_at"`
}

// FeedFile is one downloaded feed.
type FeedFile struct {
	URL           string
	ContentLength int64
	Data          []byte
}

// Row maps source column names to raw values. A missing key means the column
// is absent for this row; an empty value means it was present but blank.
type Row map[string]string

// Field returns the raw value and whether the column is present.
func (r Row) Field(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

// ResultFeedRequest targets a single season/league result feed.
type ResultFeedRequest struct {
	CountryCode string `json:"countryCode" yaml:"country_code" validate:"required,alpha,max=3"`
	Division    int    `json:"division" yaml:"division" validate:"min=1"`
	Season      string `json:"season,omitempty" yaml:"season" validate:"omitempty,len=4,numeric"`
}

// ImportStats holds statistics about one import invocation.
type ImportStats struct {
	URL           string
	Type          MatchType
	ContentLength int64
	Unchanged     bool
	Rows          int
	Inserted      int
	Upgraded      int
	Skipped       int
	Failed        int
	Published     int
	Duration      time.Duration
}
