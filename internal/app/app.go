// Package app wires configuration, storage, the answer pipeline and the HTTP
// server together and owns their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/RichardoC/drivewise/internal/api"
	"github.com/RichardoC/drivewise/internal/config"
	"github.com/RichardoC/drivewise/internal/db"
	"github.com/RichardoC/drivewise/internal/llm"
	"github.com/RichardoC/drivewise/internal/metrics"
	"github.com/RichardoC/drivewise/internal/web"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   db.Store
	answers *llm.Service
	server  *http.Server
}

// NewLogger builds a production logger, or a development one when
// cfg.Development is set, at the configured level.
func NewLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := db.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create llm provider: %w", err)
	}
	if provider == nil {
		logger.Warn("OPENAI_API_KEY is not set, only canned answers will be served")
	}

	m := metrics.New()
	answers := llm.NewService(provider, cfg.LLM, logger, m)
	handler := api.NewHandler(store, answers, logger, m)
	router := api.NewRouter(handler, web.Handler(), m, logger, cfg.Server.AllowedOrigins)

	return &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		answers: answers,
		server: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			ErrorLog:     zap.NewStdLog(logger),
		},
	}, nil
}

// Handler exposes the router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Answers is the answer pipeline the server uses.
func (a *App) Answers() *llm.Service {
	return a.answers
}

// Run serves on the configured address until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.logger.Info("starting server",
		zap.String("addr", ln.Addr().String()),
		zap.String("storage", a.cfg.Storage.Driver),
		zap.Bool("model_enabled", a.answers.ModelEnabled()))

	serveErr := make(chan error, 1)
	var wg conc.WaitGroup
	wg.Go(func() {
		err := a.server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	})

	var err error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down server")
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if shutdownErr := a.server.Shutdown(shutdownCtx); shutdownErr != nil {
		err = multierr.Append(err, fmt.Errorf("shutdown: %w", shutdownErr))
	}
	wg.Wait()
	return err
}

// Close releases the store. It is safe to call after Run returns.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}
	return err
}
