package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/movie-search/api"
	"github.com/gcbaptista/movie-search/internal/cache"
	"github.com/gcbaptista/movie-search/internal/corpus"
	internalErrors "github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/internal/logging"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveCmdRun,
}

type serveFlags struct {
	port int
}

var serveArgs serveFlags

func init() {
	serveCmd.Flags().IntVar(&serveArgs.port, "port", 0,
		"Port to listen on. Zero uses the configured port.")
	rootCmd.AddCommand(serveCmd)
}

func serveCmdRun(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	cfg := env.cfg
	if serveArgs.port > 0 {
		cfg.Server.Port = serveArgs.port
	}
	log := logging.Component(env.logger, "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	searchOpts := search.Options{}
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, serving without result cache")
		} else {
			defer func() { _ = store.Close() }()
			searchOpts.Cache = cache.New(store, cfg.Redis.CacheTTL, logging.Component(env.logger, "cache"), m)
			log.WithField("addr", cfg.Redis.Addr).Info("result cache enabled")
		}
	}

	eng, err := env.newEngine(searchOpts, m)
	if err != nil {
		return err
	}
	defer eng.Close()

	loader, closeLoader, err := corpus.FromConfig(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("corpus source unavailable, rebuilds disabled")
		loader = nil
	} else {
		defer func() { _ = closeLoader() }()
	}

	if err := eng.LoadSnapshot(); err != nil {
		if !errors.Is(err, internalErrors.ErrCorruptOrMissingSnapshot) || loader == nil {
			return err
		}
		log.WithError(err).Warn("no usable snapshot, building from corpus")
		if err := eng.Rebuild(ctx, loader); err != nil {
			return err
		}
		if err := eng.SaveSnapshot(); err != nil {
			log.WithError(err).Warn("failed to save snapshot")
		}
	}

	if env.logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.CORSMiddleware())
	api.SetupRoutes(router, eng, api.Options{
		Loader:  loader,
		Metrics: m,
		Logger:  logging.Component(env.logger, "api"),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown error")
		}
	}()

	log.WithField("addr", server.Addr).Info("movie search listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("movie search stopped")
	return nil
}
