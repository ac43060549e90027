package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/movie-search/index"
	"github.com/gcbaptista/movie-search/internal/jobs"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/internal/search"
	"github.com/gcbaptista/movie-search/internal/tokenizer"
	"github.com/gcbaptista/movie-search/model"
)

// Options configure an Engine.
type Options struct {
	Normalizer   *tokenizer.Normalizer // nil uses the embedded stopwords
	SnapshotPath string
	Search       search.Options
	MaxWorkers   int
	Metrics      *metrics.Metrics
	Logger       *logrus.Entry
}

// Engine owns the published index and everything derived from it.
// It implements the services.Engine interface.
//
// Readers load the current instance without locking. Build and
// LoadSnapshot construct a new index off to the side and publish it with
// a single pointer swap; a published instance is never mutated.
type Engine struct {
	current atomic.Pointer[Instance]

	publishMu    sync.Mutex // serializes builds, loads and saves
	normalizer   *tokenizer.Normalizer
	snapshotPath string
	searchOpts   search.Options
	jobManager   *jobs.Manager
	metrics      *metrics.Metrics
	logger       *logrus.Entry
}

// New creates an engine serving an empty index and starts its job manager.
func New(opts Options) (*Engine, error) {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = tokenizer.NewNormalizer(tokenizer.DefaultStopwords())
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "engine")
	}

	searchOpts := opts.Search
	if searchOpts.Metrics == nil {
		searchOpts.Metrics = opts.Metrics
	}
	if searchOpts.Logger == nil {
		searchOpts.Logger = logger.WithField("component", "search")
	}

	e := &Engine{
		normalizer:   normalizer,
		snapshotPath: opts.SnapshotPath,
		searchOpts:   searchOpts,
		jobManager:   jobs.NewManager(opts.MaxWorkers, opts.Metrics, logger.WithField("component", "jobs")),
		metrics:      opts.Metrics,
		logger:       logger,
	}

	empty := index.New(normalizer)
	if err := empty.Build(nil); err != nil {
		return nil, err
	}
	if err := e.publish(empty, sourceEmpty); err != nil {
		return nil, err
	}

	e.jobManager.Start()
	return e, nil
}

// Close stops background jobs.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

// Normalizer returns the normalizer shared by every index the engine builds.
func (e *Engine) Normalizer() *tokenizer.Normalizer {
	return e.normalizer
}

// SnapshotPath returns the configured snapshot file.
func (e *Engine) SnapshotPath() string {
	return e.snapshotPath
}

// Current returns the published instance.
func (e *Engine) Current() *Instance {
	return e.current.Load()
}

// publish wraps idx in a new instance with a fresh generation and swaps it
// in. Callers hold publishMu, except New.
func (e *Engine) publish(idx *index.InvertedIndex, source string) error {
	generation := uuid.New().String()
	svc, err := search.NewService(idx, generation, e.searchOpts)
	if err != nil {
		return err
	}
	inst := &Instance{
		idx:         idx,
		searcher:    svc,
		generation:  generation,
		source:      source,
		publishedAt: time.Now(),
	}
	e.current.Store(inst)

	terms := len(idx.Terms())
	e.metrics.IndexPublished(idx.TotalDocuments(), terms)
	e.logger.WithFields(logrus.Fields{
		"generation": generation,
		"source":     source,
		"documents":  idx.TotalDocuments(),
		"terms":      terms,
	}).Info("index published")
	return nil
}

// Stats summarizes the published index.
func (e *Engine) Stats() (model.IndexStats, error) {
	return e.Current().Stats(), nil
}
