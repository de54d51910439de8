package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estimatorlab/scopegen/internal/config"
	"github.com/estimatorlab/scopegen/internal/core/ports"
	"github.com/estimatorlab/scopegen/internal/core/usecase"
	"github.com/estimatorlab/scopegen/internal/infrastructure/llm/gemini"
	"github.com/estimatorlab/scopegen/internal/infrastructure/repository/postgres"
	"github.com/estimatorlab/scopegen/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics

	Estimator ports.ScopeEstimator
	Browser   ports.ScopeBrowser
	Demo      ports.DemoParser

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	scopeRepo := postgres.NewScopeRepository(db)
	if err := scopeRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	demoRepo := postgres.NewDemoHitRepository(db)

	// One model client per process; everything downstream shares it.
	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, gemini.BreakerConfig{
		MinRequests:  cfg.BreakerMinRequests,
		FailureRatio: cfg.BreakerFailureRatio,
		OpenTimeout:  cfg.BreakerOpenTimeout,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	estimatorUC := usecase.NewGenerateScopeUseCase(scopeRepo, gemini.NewEstimator(geminiClient), logger)
	browserUC := usecase.NewBrowseScopesUseCase(scopeRepo, cfg.ScopeListDefaultLimit)
	demoUC := usecase.NewDemoParseUseCase(demoRepo, gemini.NewDemoEstimator(geminiClient), logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewHTTPServerMetrics("api"),

		Estimator: estimatorUC,
		Browser:   browserUC,
		Demo:      demoUC,

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
