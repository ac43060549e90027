package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/movie-search/config"
	"github.com/gcbaptista/movie-search/internal/engine"
	"github.com/gcbaptista/movie-search/internal/logging"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/internal/search"
	"github.com/gcbaptista/movie-search/internal/tokenizer"
)

// environment is the configured process state shared by every command.
type environment struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// loadEnvironment reads the config, applies flag overrides, validates and
// sets up logging.
func loadEnvironment() (*environment, error) {
	cfg, err := config.Load(rootArgs.configPath)
	if err != nil {
		return nil, err
	}
	if rootArgs.logLevel != "" {
		cfg.Logging.Level = rootArgs.logLevel
	}
	if rootArgs.logFormat != "" {
		cfg.Logging.Format = rootArgs.logFormat
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}

	logger, err := logging.SetupWithOutput(cfg.Logging.Level, cfg.Logging.Format, rootCmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger}, nil
}

// normalizer builds the text normalizer from the configured stopword list.
func (env *environment) normalizer() (*tokenizer.Normalizer, error) {
	if env.cfg.Paths.Stopwords == "" {
		return tokenizer.NewNormalizer(tokenizer.DefaultStopwords()), nil
	}
	stopwords, err := tokenizer.LoadStopwords(env.cfg.Paths.Stopwords)
	if err != nil {
		return nil, err
	}
	return tokenizer.NewNormalizer(stopwords), nil
}

// newEngine creates an engine from the config. searchOpts carries the
// cache when serving; m may be nil.
func (env *environment) newEngine(searchOpts search.Options, m *metrics.Metrics) (*engine.Engine, error) {
	normalizer, err := env.normalizer()
	if err != nil {
		return nil, err
	}

	searchOpts.Defaults = search.Params{
		K1:    env.cfg.Search.K1,
		B:     env.cfg.Search.B,
		Limit: env.cfg.Search.DefaultLimit,
	}
	searchOpts.MaxLimit = env.cfg.Search.MaxLimit

	return engine.New(engine.Options{
		Normalizer:   normalizer,
		SnapshotPath: env.cfg.Paths.Snapshot,
		Search:       searchOpts,
		MaxWorkers:   env.cfg.Jobs.MaxWorkers,
		Metrics:      m,
		Logger:       logging.Component(env.logger, "engine"),
	})
}

// openSnapshot creates an engine serving the saved snapshot.
func openSnapshot() (*engine.Engine, error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, err
	}
	eng, err := env.newEngine(search.Options{}, nil)
	if err != nil {
		return nil, err
	}
	if err := eng.LoadSnapshot(); err != nil {
		eng.Close()
		return nil, fmt.Errorf("%w (run 'moviesearch build' first)", err)
	}
	return eng, nil
}
