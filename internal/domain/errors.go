package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTransport    = errors.New("feed transport failure")
	ErrNoSeason     = errors.New("no current season")
	ErrCheckpoint   = errors.New("checkpoint store failure")
)

// TransportError carries the HTTP status of a failed feed download.
type TransportError struct {
	URL        string
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
