package domain

import (
	"context"
	"time"
)

// ExpressionEvaluator 式評価サービスのインターフェース
type ExpressionEvaluator interface {
	// Evaluate 式を評価する。失敗も Evaluation の種別として返し、エラーは返さない
	Evaluate(ctx context.Context, expression string) *Evaluation

	// ProviderName プロバイダー名を返す
	ProviderName() string
}

// JournalEntry 診断ログの1件
type JournalEntry struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id,omitempty"`
	Expression  string    `json:"expression"`
	Outcome     string    `json:"outcome"`
	Answer      string    `json:"answer,omitempty"`
	Error       string    `json:"error,omitempty"`
	RawResponse string    `json:"raw_response,omitempty"`
	Model       string    `json:"model,omitempty"`
	LatencyMS   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// EvaluationJournal 外部評価の診断ログの出力先
type EvaluationJournal interface {
	Record(ctx context.Context, requestID string, evaluation *Evaluation) error
	Recent(ctx context.Context, limit int) ([]*JournalEntry, error)
}
