package memory

import (
	"context"
	"sync"
	"time"

	"match_importer/internal/domain"
)

type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]domain.ImportCheckpoint
	now         func() time.Time
}

func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		checkpoints: make(map[string]domain.ImportCheckpoint),
		now:         time.Now,
	}
}

func (r *CheckpointStore) Get(_ context.Context, url string) (*domain.ImportCheckpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.checkpoints[url]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CheckpointStore) Put(_ context.Context, url string, contentLength int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkpoints[url] = domain.ImportCheckpoint{
		URL:               url,
		LastContentLength: contentLength,
		LastModifiedAt:    r.now().UTC(),
	}
	return nil
}
