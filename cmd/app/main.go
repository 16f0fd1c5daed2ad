package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-calculator/internal/config"
	"ai-calculator/internal/presentation/di"
	"ai-calculator/internal/presentation/http/router"
)

// AppConfig アプリケーション設定
type AppConfig struct {
	ConfigPath string
	Port       string
}

// ServerInterface サーバーインターフェース（Seam化）
type ServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App アプリケーション構造体（Seamパターン）
type App struct {
	config     *AppConfig
	settings   *config.Config
	container  *di.Container
	server     *http.Server
	serverSeam ServerInterface // テスト用のSeam
}

// NewApp 新しいAppを作成
func NewApp(appCfg *AppConfig) (*App, error) {
	// ポートのデフォルト値設定
	if appCfg.Port == "" {
		appCfg.Port = "8080"
	}

	// 設定の読み込み
	cfg := loadConfig(appCfg.ConfigPath)
	setupLogger(cfg.Log)

	// DIコンテナの初期化
	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DI container: %w", err)
	}

	// ルーターの作成
	handler := router.NewRouter(container)

	// サーバーの設定（submit は Gemini の応答を待つため書き込みは長め）
	server := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	app := &App{
		config:    appCfg,
		settings:  cfg,
		container: container,
		server:    server,
	}
	// デフォルトでは実際のサーバーを使用
	app.serverSeam = server

	return app, nil
}

// loadConfig 設定を読み込む。読めない場合はデフォルト設定を使う
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "path", path, "error", err)
		return config.DefaultConfig()
	}
	return cfg
}

// Start サーバーを起動
func (a *App) Start() error {
	// 起動メッセージ
	a.printStartupMessage(os.Stdout)

	// サーバー起動（Seamを使用）
	return a.serverSeam.ListenAndServe()
}

// printStartupMessage 起動メッセージを出力
func (a *App) printStartupMessage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "=== AI Calculator Server ===")
	_, _ = fmt.Fprintf(w, "AI Provider: %s (%s)\n", a.container.CalculatorUseCase().GetProviderName(), a.settings.Gemini.Model)
	_, _ = fmt.Fprintf(w, "API Key: %s\n", a.settings.Gemini.MaskedAPIKey())
	_, _ = fmt.Fprintf(w, "Server listening on http://0.0.0.0:%s\n", a.config.Port)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Endpoints:")
	for _, line := range []string{
		"  GET  /                                 - Calculator UI",
		"  POST /press                            - Keypad press (form)",
		"  GET  /api/v1/calculator/state          - Current state",
		"  POST /api/v1/calculator/append         - Append token",
		"  POST /api/v1/calculator/input          - Replace input",
		"  POST /api/v1/calculator/clear          - Clear",
		"  POST /api/v1/calculator/submit         - Evaluate current input",
		"  POST /api/v1/calculator/evaluate       - Evaluate expression (stateless)",
		"  GET  /api/v1/calculator/keypad         - Keypad layout",
		"  GET  /api/v1/diagnostics/evaluations   - Evaluation journal",
		"  GET  /health                           - Health check",
	} {
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w)
}

// Shutdown サーバーをシャットダウン
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down server...")

	// サーバーのシャットダウン（Seamを使用）
	if err := a.serverSeam.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// コンテナのクローズ
	if err := a.container.Close(); err != nil {
		return fmt.Errorf("container close failed: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}

// Run アプリケーションを実行（グレースフルシャットダウン付き）
func (a *App) Run() error {
	// サーバー起動（goroutine）
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// シグナルの待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		_ = a.container.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		// グレースフルシャットダウン
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return a.Shutdown(ctx)
	}
}

// realMain 実際のmain処理（テスト可能にするため分離）
func realMain(args []string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func main() {
	if err := realMain(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
