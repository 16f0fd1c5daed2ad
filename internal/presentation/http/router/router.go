package router

import (
	"net/http"

	"ai-calculator/internal/presentation/di"
	"ai-calculator/internal/presentation/http/middleware"
)

// NewRouter 新しいルーターを作成
func NewRouter(container *di.Container) http.Handler {
	mux := http.NewServeMux()

	// Web UI ハンドラー
	webHandler := container.WebHandler()
	mux.HandleFunc("/{$}", webHandler.HandleIndex)
	mux.HandleFunc("/press", webHandler.HandlePress)

	// Calculator API ハンドラー
	calculatorHandler := container.CalculatorHandler()
	mux.HandleFunc("/api/v1/calculator/state", calculatorHandler.HandleState)
	mux.HandleFunc("/api/v1/calculator/append", calculatorHandler.HandleAppend)
	mux.HandleFunc("/api/v1/calculator/input", calculatorHandler.HandleInput)
	mux.HandleFunc("/api/v1/calculator/clear", calculatorHandler.HandleClear)
	mux.HandleFunc("/api/v1/calculator/submit", calculatorHandler.HandleSubmit)
	mux.HandleFunc("/api/v1/calculator/evaluate", calculatorHandler.HandleEvaluate)
	mux.HandleFunc("/api/v1/calculator/keypad", calculatorHandler.HandleKeypad)

	// Diagnostics ハンドラー
	mux.HandleFunc("/api/v1/diagnostics/evaluations", container.DiagnosticsHandler().HandleEvaluations)

	// Health check
	mux.Handle("/health", container.HealthHandler())

	// ミドルウェアの適用
	var h http.Handler = mux
	h = middleware.Recovery(h)
	h = middleware.LoggerWithHealthCheck(h)
	h = middleware.RequestID(h)
	h = middleware.CORS(h)

	return h
}
