package service

import (
	"context"

	"github.com/cockroachdb/errors"

	"match_importer/internal/domain"
)

// ChangeDetector decides whether a freshly downloaded feed needs importing.
// Only the byte length is compared; equal-length edits go unnoticed.
type ChangeDetector struct {
	checkpoints CheckpointStore
}

func NewChangeDetector(checkpoints CheckpointStore) *ChangeDetector {
	return &ChangeDetector{checkpoints: checkpoints}
}

func (d *ChangeDetector) ShouldProcess(ctx context.Context, url string, contentLength int64) (bool, error) {
	checkpoint, err := d.checkpoints.Get(ctx, url)
	if err != nil {
		return false, errors.Mark(errors.Wrapf(err, "read checkpoint for %s", url), domain.ErrCheckpoint)
	}
	if checkpoint == nil {
		return true, nil
	}
	return checkpoint.LastContentLength != contentLength, nil
}
