// Package config provides configuration structures for the movie search
// service. Settings come from defaults, an optional YAML file and
// MOVIESEARCH_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Corpus sources.
const (
	SourceJSON     = "json"
	SourcePostgres = "postgres"
)

const envPrefix = "MOVIESEARCH_"

// Config is the top-level application configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Search  SearchConfig  `yaml:"search"`
	Corpus  CorpusConfig  `yaml:"corpus"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Redis   RedisConfig   `yaml:"redis"`
	Metrics MetricsConfig `yaml:"metrics"`
	Jobs    JobsConfig    `yaml:"jobs"`
}

// PathsConfig locates the files the service reads and writes.
type PathsConfig struct {
	Dataset   string `yaml:"dataset"`   // JSON corpus {"movies": [...]}
	Stopwords string `yaml:"stopwords"` // one word per line; empty uses the embedded list
	Snapshot  string `yaml:"snapshot"`
}

// SearchConfig holds the BM25 defaults and result limits.
type SearchConfig struct {
	K1           float64 `yaml:"k1"`
	B            float64 `yaml:"b"`
	DefaultLimit int     `yaml:"defaultLimit"`
	MaxLimit     int     `yaml:"maxLimit"`
}

// CorpusConfig selects where documents are loaded from on build.
type CorpusConfig struct {
	Source   string         `yaml:"source"` // "json" or "postgres"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds the movie table location.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	Table           string        `yaml:"table"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig controls the logrus level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// RedisConfig holds the search result cache connection.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// JobsConfig limits background work.
type JobsConfig struct {
	MaxWorkers int `yaml:"maxWorkers"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Dataset:  "data/movies.json",
			Snapshot: "data/index.snap",
		},
		Search: SearchConfig{
			K1:           1.5,
			B:            0.75,
			DefaultLimit: 5,
			MaxLimit:     100,
		},
		Corpus: CorpusConfig{
			Source: SourceJSON,
			Postgres: PostgresConfig{
				Table:           "movies",
				MaxOpenConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Jobs: JobsConfig{
			MaxWorkers: 1,
		},
	}
}

// Load reads a YAML config file (if provided) over the defaults and applies
// environment-variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is given by the operator
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides reads MOVIESEARCH_* environment variables. Malformed
// numbers are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	var problems []string

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s%s: '%s' is not an integer", envPrefix, name, v))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s%s: '%s' is not a number", envPrefix, name, v))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s%s: '%s' is not a boolean", envPrefix, name, v))
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s%s: '%s' is not a duration", envPrefix, name, v))
				return
			}
			*dst = d
		}
	}

	str("DATASET", &cfg.Paths.Dataset)
	str("STOPWORDS", &cfg.Paths.Stopwords)
	str("SNAPSHOT", &cfg.Paths.Snapshot)
	float("SEARCH_K1", &cfg.Search.K1)
	float("SEARCH_B", &cfg.Search.B)
	integer("SEARCH_DEFAULT_LIMIT", &cfg.Search.DefaultLimit)
	integer("SEARCH_MAX_LIMIT", &cfg.Search.MaxLimit)
	str("CORPUS_SOURCE", &cfg.Corpus.Source)
	str("POSTGRES_DSN", &cfg.Corpus.Postgres.DSN)
	str("POSTGRES_TABLE", &cfg.Corpus.Postgres.Table)
	integer("SERVER_PORT", &cfg.Server.Port)
	duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	boolean("REDIS_ENABLED", &cfg.Redis.Enabled)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	integer("REDIS_DB", &cfg.Redis.DB)
	duration("REDIS_CACHE_TTL", &cfg.Redis.CacheTTL)
	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	integer("JOBS_MAX_WORKERS", &cfg.Jobs.MaxWorkers)

	if len(problems) > 0 {
		return fmt.Errorf("invalid environment overrides: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Validate returns every problem found in the configuration; an empty
// result means the configuration is usable.
func (c *Config) Validate() []string {
	var problems []string

	if strings.TrimSpace(c.Paths.Snapshot) == "" {
		problems = append(problems, "paths.snapshot cannot be empty")
	}

	if c.Search.K1 < 0 {
		problems = append(problems, fmt.Sprintf("search.k1 must be non-negative, got %v", c.Search.K1))
	}
	if c.Search.B < 0 || c.Search.B > 1 {
		problems = append(problems, fmt.Sprintf("search.b must be between 0 and 1, got %v", c.Search.B))
	}
	if c.Search.DefaultLimit <= 0 {
		problems = append(problems, "search.defaultLimit must be positive")
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		problems = append(problems, fmt.Sprintf("search.maxLimit (%d) must be at least search.defaultLimit (%d)", c.Search.MaxLimit, c.Search.DefaultLimit))
	}

	switch c.Corpus.Source {
	case SourceJSON:
		if strings.TrimSpace(c.Paths.Dataset) == "" {
			problems = append(problems, "paths.dataset is required when corpus.source is 'json'")
		}
	case SourcePostgres:
		if strings.TrimSpace(c.Corpus.Postgres.DSN) == "" {
			problems = append(problems, "corpus.postgres.dsn is required when corpus.source is 'postgres'")
		}
		if !validIdentifier(c.Corpus.Postgres.Table) {
			problems = append(problems, fmt.Sprintf("corpus.postgres.table '%s' is not a valid table name", c.Corpus.Postgres.Table))
		}
	default:
		problems = append(problems, fmt.Sprintf("corpus.source '%s' must be '%s' or '%s'", c.Corpus.Source, SourceJSON, SourcePostgres))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format '%s' must be 'text' or 'json'", c.Logging.Format))
	}

	if c.Redis.Enabled {
		if strings.TrimSpace(c.Redis.Addr) == "" {
			problems = append(problems, "redis.addr is required when redis is enabled")
		}
		if c.Redis.CacheTTL <= 0 {
			problems = append(problems, "redis.cacheTTL must be positive when redis is enabled")
		}
	}

	if c.Jobs.MaxWorkers <= 0 {
		problems = append(problems, "jobs.maxWorkers must be positive")
	}

	return problems
}

// validIdentifier accepts plain or schema-qualified SQL identifiers made of
// letters, digits and underscores.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			switch {
			case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}
