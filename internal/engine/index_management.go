package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/movie-search/index"
	"github.com/gcbaptista/movie-search/internal/corpus"
	"github.com/gcbaptista/movie-search/model"
)

// Build indexes docs into a fresh index and publishes it. On error the
// previously published index stays in place.
func (e *Engine) Build(docs []model.Document) error {
	e.publishMu.Lock()
	defer e.publishMu.Unlock()
	return e.buildUnsafe(docs)
}

func (e *Engine) buildUnsafe(docs []model.Document) error {
	idx := index.New(e.normalizer)
	err := idx.Build(docs)
	e.metrics.IndexBuild(err)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	return e.publish(idx, sourceBuild)
}

// Rebuild loads the corpus from loader and builds from it. Loader errors
// propagate unchanged in meaning and leave the published index alone.
func (e *Engine) Rebuild(ctx context.Context, loader corpus.Loader) error {
	docs, err := loader.Load(ctx)
	if err != nil {
		e.metrics.IndexBuild(err)
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.Build(docs)
}
