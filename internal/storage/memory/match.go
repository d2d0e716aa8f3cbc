package memory

import (
	"context"
	"sync"
	"time"

	"match_importer/internal/domain"
)

type matchKey struct {
	id   string
	date int64
}

func keyOf(id string, date time.Time) matchKey {
	return matchKey{id: id, date: date.UTC().UnixNano()}
}

// MatchStore keeps matches in process. It applies the same write policy as
// the postgres store under a single lock.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[matchKey]domain.Match
}

func NewMatchStore() *MatchStore {
	return &MatchStore{matches: make(map[matchKey]domain.Match)}
}

func (r *MatchStore) Save(_ context.Context, match *domain.Match) (domain.SaveOutcome, error) {
	key := keyOf(match.ID(), match.Date)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.matches[key]
	switch {
	case !ok:
		r.matches[key] = *match
		return domain.SaveInserted, nil
	case existing.Type == domain.MatchTypeFixture && match.Type == domain.MatchTypeResult:
		r.matches[key] = *match
		return domain.SaveUpgraded, nil
	default:
		return domain.SaveSkipped, nil
	}
}

// Get returns a copy of the stored match, or nil.
func (r *MatchStore) Get(_ context.Context, id string, date time.Time) (*domain.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[keyOf(id, date)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MatchStore) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}
