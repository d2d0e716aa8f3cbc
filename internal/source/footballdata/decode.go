package footballdata

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"match_importer/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowReader walks the data rows of a CSV feed keyed by header name.
type RowReader struct {
	csv    *csv.Reader
	header []string
	err    error
	line   int
}

// Decode prepares a reader over a feed body. Rows may be ragged: columns
// past the end of a short row are absent from its Row.
func Decode(data []byte) *RowReader {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	rr := &RowReader{csv: r}
	header, err := r.Read()
	switch {
	case errors.Is(err, io.EOF):
		rr.err = io.EOF
	case err != nil:
		rr.err = errors.Wrap(err, "read header")
	default:
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		rr.header = header
	}
	return rr
}

// Header returns the column names in feed order.
func (r *RowReader) Header() []string {
	return r.header
}

// Line is the 1-based data row number of the last row returned.
func (r *RowReader) Line() int {
	return r.line
}

// Next returns the next non-blank row, io.EOF at the end, or a *RowError for
// a line that cannot be tokenised. Reading may continue after a *RowError.
func (r *RowReader) Next() (domain.Row, error) {
	if r.err != nil {
		return nil, r.err
	}

	for {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		r.line++
		if err != nil {
			return nil, &RowError{Line: r.line, Err: err}
		}
		if blank(record) {
			continue
		}

		row := make(domain.Row, len(record))
		for i, value := range record {
			if i >= len(r.header) {
				break
			}
			row[r.header[i]] = value
		}
		return row, nil
	}
}

// RowError is a malformed CSV line.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return "line " + itoa(e.Line) + ": " + e.Err.Error()
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
