package memory

import (
	"context"
	"slices"
	"sync"

	"match_importer/internal/domain"
)

type SeasonStore struct {
	mu    sync.RWMutex
	codes []string
}

func NewSeasonStore(codes ...string) *SeasonStore {
	s := &SeasonStore{}
	_ = s.Add(context.Background(), codes...)
	return s
}

// Current returns the highest season code. Codes are fixed-width so string
// order matches chronological order.
func (r *SeasonStore) Current(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.codes) == 0 {
		return "", domain.ErrNoSeason
	}
	return r.codes[len(r.codes)-1], nil
}

func (r *SeasonStore) Add(_ context.Context, codes ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, code := range codes {
		if !slices.Contains(r.codes, code) {
			r.codes = append(r.codes, code)
		}
	}
	slices.Sort(r.codes)
	return nil
}
