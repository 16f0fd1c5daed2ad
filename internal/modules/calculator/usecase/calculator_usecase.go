package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"ai-calculator/internal/modules/calculator/domain"
	"ai-calculator/internal/modules/shared/requestid"
)

var (
	// ErrEmptyExpression 式が空（空白のみ）
	ErrEmptyExpression = errors.New(domain.EmptyInputMessage)
	// ErrJournalDisabled 診断ログの保存先が設定されていない
	ErrJournalDisabled = errors.New("evaluation journal is disabled")
)

// CalculatorUseCase 電卓セッションのユースケース
//
// セッションはプロセスで1つ。状態遷移の間だけロックし、外部API呼び出し中は保持しない。
type CalculatorUseCase struct {
	evaluator domain.ExpressionEvaluator
	limiter   *SubmissionLimiter
	journal   domain.EvaluationJournal

	mu    sync.Mutex
	state domain.State
}

// NewCalculatorUseCase 新しいCalculatorUseCaseを作成。limiter と journal は nil 可
func NewCalculatorUseCase(
	evaluator domain.ExpressionEvaluator,
	limiter *SubmissionLimiter,
	journal domain.EvaluationJournal,
) *CalculatorUseCase {
	return &CalculatorUseCase{
		evaluator: evaluator,
		limiter:   limiter,
		journal:   journal,
		state:     domain.NewState(),
	}
}

// State 現在の状態を返す
func (uc *CalculatorUseCase) State() domain.State {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.state
}

// Append 入力末尾にトークンを追加
func (uc *CalculatorUseCase) Append(token string) domain.State {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state = uc.state.Append(token)
	return uc.state
}

// SetInput 入力を置き換える
func (uc *CalculatorUseCase) SetInput(input string) domain.State {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state = uc.state.WithInput(input)
	return uc.state
}

// EditInput 入力が現在と異なる場合だけ置き換える
//
// 比較と置き換えは同じロックの中で行う。置き換えたかどうかを返す。
func (uc *CalculatorUseCase) EditInput(input string) (domain.State, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.state.Input == input {
		return uc.state, false
	}
	uc.state = uc.state.WithInput(input)
	return uc.state, true
}

// Clear 入力と結果を消去
func (uc *CalculatorUseCase) Clear() domain.State {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state = uc.state.Clear()
	return uc.state
}

// Press ボタン押下を処理（C: 消去, =: 計算, その他: 入力追加）
func (uc *CalculatorUseCase) Press(ctx context.Context, label string) domain.State {
	switch label {
	case domain.ClearLabel:
		return uc.Clear()
	case domain.EqualsLabel:
		return uc.Submit(ctx)
	default:
		return uc.Append(label)
	}
}

// Submit 現在の入力を評価し、結果を反映した状態を返す
//
// 評価中に Clear や別の Submit があった場合、この応答は破棄される。
// クライアント切断で評価は中断しない。
func (uc *CalculatorUseCase) Submit(ctx context.Context) domain.State {
	uc.mu.Lock()
	next, ticket, ok := uc.state.Submit()
	uc.state = next
	uc.mu.Unlock()

	if !ok {
		return next
	}

	evaluation := uc.evaluate(context.WithoutCancel(ctx), ticket.Expression)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	done, applied := uc.state.Complete(ticket, evaluation.Text())
	if !applied {
		slog.Info("Discarding superseded evaluation",
			"generation", ticket.Generation,
			"current_generation", uc.state.Generation,
			"request_id", requestid.FromContext(ctx),
		)
		return uc.state
	}
	uc.state = done
	return done
}

// Evaluate セッション状態を変えずに式を評価
func (uc *CalculatorUseCase) Evaluate(ctx context.Context, expression string) (*domain.Evaluation, error) {
	// 入力検証
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyExpression
	}
	return uc.evaluate(ctx, expression), nil
}

// RecentEvaluations 診断ログを新しい順に取得
func (uc *CalculatorUseCase) RecentEvaluations(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	if uc.journal == nil {
		return nil, ErrJournalDisabled
	}
	return uc.journal.Recent(ctx, limit)
}

// GetProviderName プロバイダー名を取得
func (uc *CalculatorUseCase) GetProviderName() string {
	return uc.evaluator.ProviderName()
}

// evaluate レート制限・外部評価・診断ログ記録を行う
func (uc *CalculatorUseCase) evaluate(ctx context.Context, expression string) *domain.Evaluation {
	reqID := requestid.FromContext(ctx)

	var evaluation *domain.Evaluation
	if uc.limiter != nil {
		allowed, err := uc.limiter.Allow(ctx)
		if err != nil {
			slog.Warn("Rate limiter unavailable, allowing submission", "error", err)
		}
		if !allowed {
			slog.Warn("Submission rejected by rate limiter", "request_id", reqID)
			evaluation = domain.NewNetworkErrorEvaluation(expression, ErrRateLimited, "", 0)
		}
	}

	if evaluation == nil {
		evaluation = uc.evaluator.Evaluate(ctx, expression)
	}

	slog.Info("Expression evaluated",
		"outcome", evaluation.Kind.String(),
		"model", evaluation.Model,
		"duration", evaluation.Latency,
		"request_id", reqID,
	)

	if uc.journal != nil {
		if err := uc.journal.Record(ctx, reqID, evaluation); err != nil {
			slog.Warn("Failed to record evaluation", "error", err, "request_id", reqID)
		}
	}

	return evaluation
}
