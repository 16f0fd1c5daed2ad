package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	_ "github.com/go-sql-driver/mysql"

	"ai-calculator/internal/config"
	"ai-calculator/internal/modules/calculator/domain"
)

const (
	// rawResponseLimit 保存する生レスポンスの最大長
	rawResponseLimit = 4096
	// recentLimitMax Recent で返す最大件数
	recentLimitMax = 500
)

// EvaluationLog BUNモデル
type EvaluationLog struct {
	bun.BaseModel `bun:"table:evaluation_logs"`

	ID          string    `bun:"id,pk,type:varchar(36)"`
	RequestID   string    `bun:"request_id,type:varchar(36),default:''"`
	Expression  string    `bun:"expression,notnull,type:text"`
	Outcome     string    `bun:"outcome,notnull,type:varchar(20)"`
	Answer      string    `bun:"answer,type:text"`
	Error       string    `bun:"error,type:text"`
	RawResponse string    `bun:"raw_response,type:text"`
	Model       string    `bun:"model,notnull,type:varchar(100)"`
	LatencyMS   int64     `bun:"latency_ms,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// BunEvaluationJournal 評価の診断ログをMySQLに書き込むBUN実装
type BunEvaluationJournal struct {
	db *bun.DB
}

// NewBunEvaluationJournal 新しいBunEvaluationJournalを作成
func NewBunEvaluationJournal(cfg *config.MySQLConfig) (*BunEvaluationJournal, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := bun.NewDB(sqldb, mysqldialect.New())

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	journal := &BunEvaluationJournal{db: db}
	if err := journal.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return journal, nil
}

// EnsureSchema テーブルが無ければ作成
func (r *BunEvaluationJournal) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*EvaluationLog)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create evaluation_logs table: %w", err)
	}
	return nil
}

// Record 評価結果を1件記録
func (r *BunEvaluationJournal) Record(ctx context.Context, requestID string, evaluation *domain.Evaluation) error {
	model := r.toModel(requestID, evaluation)
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record evaluation: %w", err)
	}
	return nil
}

// Recent 新しい順に診断ログを取得
func (r *BunEvaluationJournal) Recent(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 || limit > recentLimitMax {
		limit = recentLimitMax
	}

	var models []EvaluationLog
	err := r.db.NewSelect().
		Model(&models).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find evaluation logs: %w", err)
	}

	entries := make([]*domain.JournalEntry, len(models))
	for i := range models {
		entries[i] = r.toEntry(&models[i])
	}
	return entries, nil
}

// Close DB接続を閉じる
func (r *BunEvaluationJournal) Close() error {
	return r.db.Close()
}

func (r *BunEvaluationJournal) toModel(requestID string, e *domain.Evaluation) *EvaluationLog {
	raw := e.RawResponse
	if len(raw) > rawResponseLimit {
		raw = raw[:rawResponseLimit]
	}
	createdAt := e.EvaluatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &EvaluationLog{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		Expression:  e.Expression,
		Outcome:     e.Kind.String(),
		Answer:      e.Answer,
		Error:       e.ErrorText(),
		RawResponse: raw,
		Model:       e.Model,
		LatencyMS:   e.Latency.Milliseconds(),
		CreatedAt:   createdAt,
	}
}

func (r *BunEvaluationJournal) toEntry(model *EvaluationLog) *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:          model.ID,
		RequestID:   model.RequestID,
		Expression:  model.Expression,
		Outcome:     model.Outcome,
		Answer:      model.Answer,
		Error:       model.Error,
		RawResponse: model.RawResponse,
		Model:       model.Model,
		LatencyMS:   model.LatencyMS,
		CreatedAt:   model.CreatedAt,
	}
}
