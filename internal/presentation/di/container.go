package di

import (
	"context"
	"fmt"
	"log/slog"

	"ai-calculator/internal/config"
	"ai-calculator/internal/modules/calculator/domain"
	calculatorHandler "ai-calculator/internal/modules/calculator/presentation/handler"
	calculatorUsecase "ai-calculator/internal/modules/calculator/usecase"
	sharedCache "ai-calculator/internal/modules/shared/infrastructure/cache"
	sharedDB "ai-calculator/internal/modules/shared/infrastructure/database"
	"ai-calculator/internal/modules/shared/infrastructure/gemini"
	httpHandler "ai-calculator/internal/presentation/http/handler"
)

// Container DIコンテナ
type Container struct {
	// Shared Infrastructure
	evaluator domain.ExpressionEvaluator
	sdkRepo   *gemini.SDKRepository
	cacheRepo *sharedCache.RedisRepository
	journal   *sharedDB.BunEvaluationJournal

	// Calculator Module
	calculatorUseCase  *calculatorUsecase.CalculatorUseCase
	webHandler         *calculatorHandler.WebHandler
	calculatorHandler  *calculatorHandler.CalculatorHandler
	diagnosticsHandler *calculatorHandler.DiagnosticsHandler

	healthHandler *httpHandler.HealthHandler
}

// NewContainer 新しいContainerを作成
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{}

	// Shared Infrastructure: Expression Evaluator
	evaluator, err := container.newEvaluator(&cfg.Gemini)
	if err != nil {
		return nil, err
	}
	container.evaluator = evaluator

	// Shared Infrastructure: Cache Repository（レート制限用）
	var limiter *calculatorUsecase.SubmissionLimiter
	if cfg.Redis.Enabled {
		cacheRepo, err := sharedCache.NewRedisRepository(&cfg.Redis)
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to initialize cache repository: %w", err)
		}
		container.cacheRepo = cacheRepo

		if cfg.RateLimit.PerMinute > 0 {
			limiter = calculatorUsecase.NewSubmissionLimiter(cacheRepo, cfg.RateLimit.PerMinute)
		}
	} else if cfg.RateLimit.PerMinute > 0 {
		slog.Warn("Rate limit is configured but redis is disabled; submissions are not limited")
	}

	// Shared Infrastructure: Evaluation Journal
	var journal domain.EvaluationJournal
	if cfg.MySQL.Enabled {
		journalRepo, err := sharedDB.NewBunEvaluationJournal(&cfg.MySQL)
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to initialize evaluation journal: %w", err)
		}
		container.journal = journalRepo
		journal = journalRepo
	}

	// Calculator Module: UseCase
	calculatorUseCase := calculatorUsecase.NewCalculatorUseCase(evaluator, limiter, journal)
	container.calculatorUseCase = calculatorUseCase

	// Calculator Module: Handlers
	webHandler, err := calculatorHandler.NewWebHandler(calculatorUseCase)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to initialize web handler: %w", err)
	}
	container.webHandler = webHandler
	container.calculatorHandler = calculatorHandler.NewCalculatorHandler(calculatorUseCase)
	container.diagnosticsHandler = calculatorHandler.NewDiagnosticsHandler(calculatorUseCase)

	container.healthHandler = httpHandler.NewHealthHandler(evaluator.ProviderName())

	return container, nil
}

// newEvaluator 設定に応じた式評価の実装を選ぶ
func (c *Container) newEvaluator(cfg *config.GeminiConfig) (domain.ExpressionEvaluator, error) {
	switch cfg.Transport {
	case "", config.TransportREST:
		return gemini.NewRESTRepository(cfg), nil
	case config.TransportSDK:
		sdkRepo, err := gemini.NewSDKRepository(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini sdk: %w", err)
		}
		c.sdkRepo = sdkRepo
		return sdkRepo, nil
	default:
		return nil, fmt.Errorf("unknown gemini transport: %q", cfg.Transport)
	}
}

// Evaluator 式評価の実装を取得
func (c *Container) Evaluator() domain.ExpressionEvaluator {
	return c.evaluator
}

// CalculatorUseCase 電卓ユースケースを取得
func (c *Container) CalculatorUseCase() *calculatorUsecase.CalculatorUseCase {
	return c.calculatorUseCase
}

// WebHandler Web UIハンドラーを取得
func (c *Container) WebHandler() *calculatorHandler.WebHandler {
	return c.webHandler
}

// CalculatorHandler 電卓APIハンドラーを取得
func (c *Container) CalculatorHandler() *calculatorHandler.CalculatorHandler {
	return c.calculatorHandler
}

// DiagnosticsHandler 評価ログハンドラーを取得
func (c *Container) DiagnosticsHandler() *calculatorHandler.DiagnosticsHandler {
	return c.diagnosticsHandler
}

// HealthHandler ヘルスチェックハンドラーを取得
func (c *Container) HealthHandler() *httpHandler.HealthHandler {
	return c.healthHandler
}

// Close リソースをクローズ
func (c *Container) Close() error {
	if c.sdkRepo != nil {
		if err := c.sdkRepo.Close(); err != nil {
			return fmt.Errorf("failed to close gemini client: %w", err)
		}
		c.sdkRepo = nil
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Close(); err != nil {
			return fmt.Errorf("failed to close cache repository: %w", err)
		}
		c.cacheRepo = nil
	}

	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			return fmt.Errorf("failed to close evaluation journal: %w", err)
		}
		c.journal = nil
	}

	return nil
}
