package handler

import (
	"context"

	"ai-calculator/internal/modules/calculator/domain"
)

// CalculatorUseCaseInterface は電卓ユースケースのインターフェース
type CalculatorUseCaseInterface interface {
	State() domain.State
	Append(token string) domain.State
	SetInput(input string) domain.State
	EditInput(input string) (domain.State, bool)
	Clear() domain.State
	Press(ctx context.Context, label string) domain.State
	Submit(ctx context.Context) domain.State
	Evaluate(ctx context.Context, expression string) (*domain.Evaluation, error)
	RecentEvaluations(ctx context.Context, limit int) ([]*domain.JournalEntry, error)
	GetProviderName() string
}
