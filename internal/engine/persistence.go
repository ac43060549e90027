package engine

import (
	"fmt"

	"github.com/gcbaptista/movie-search/index"
	"github.com/gcbaptista/movie-search/internal/errors"
)

// SaveSnapshot writes the published index to the snapshot path.
func (e *Engine) SaveSnapshot() error {
	e.publishMu.Lock()
	defer e.publishMu.Unlock()
	return e.saveSnapshotUnsafe()
}

func (e *Engine) saveSnapshotUnsafe() error {
	if e.snapshotPath == "" {
		return errors.NewValidationError("snapshot", "no snapshot path configured")
	}
	inst := e.Current()
	err := inst.idx.Save(e.snapshotPath)
	e.metrics.SnapshotOp("save", err)
	if err != nil {
		return err
	}
	e.logger.WithField("path", e.snapshotPath).WithField("generation", inst.generation).Info("snapshot saved")
	return nil
}

// LoadSnapshot reads the snapshot path into a fresh index and publishes
// it. Any failure keeps the published index and matches
// ErrCorruptOrMissingSnapshot.
func (e *Engine) LoadSnapshot() error {
	e.publishMu.Lock()
	defer e.publishMu.Unlock()

	if e.snapshotPath == "" {
		return errors.NewSnapshotError("", "no snapshot path configured", nil)
	}
	idx := index.New(e.normalizer)
	err := idx.Load(e.snapshotPath)
	e.metrics.SnapshotOp("load", err)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	return e.publish(idx, sourceSnapshot)
}
