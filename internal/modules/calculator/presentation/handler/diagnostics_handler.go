package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"ai-calculator/internal/modules/calculator/domain"
	"ai-calculator/internal/modules/calculator/usecase"
)

const defaultDiagnosticsLimit = 50

// DiagnosticsHandler 評価ログ参照のハンドラー
type DiagnosticsHandler struct {
	calculator CalculatorUseCaseInterface
}

// NewDiagnosticsHandler 新しいDiagnosticsHandlerを作成
func NewDiagnosticsHandler(calculator CalculatorUseCaseInterface) *DiagnosticsHandler {
	return &DiagnosticsHandler{calculator: calculator}
}

// DiagnosticsResponse 評価ログのレスポンス
type DiagnosticsResponse struct {
	Success bool                   `json:"success"`
	Entries []*domain.JournalEntry `json:"entries"`
	Error   string                 `json:"error,omitempty"`
}

// HandleEvaluations 直近の評価ログを返す
func (h *DiagnosticsHandler) HandleEvaluations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultDiagnosticsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.calculator.RecentEvaluations(r.Context(), limit)
	if err != nil {
		if errors.Is(err, usecase.ErrJournalDisabled) {
			h.sendError(w, "Evaluation journal is disabled", http.StatusServiceUnavailable)
			return
		}
		slog.Error("Failed to load evaluations", "error", err)
		h.sendError(w, "Failed to load evaluations", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*domain.JournalEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(DiagnosticsResponse{Success: true, Entries: entries})
}

// sendError エラーレスポンスを送信
func (h *DiagnosticsHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(DiagnosticsResponse{Success: false, Error: message})
}
