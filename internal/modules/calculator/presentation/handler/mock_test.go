package handler

import (
	"context"

	"ai-calculator/internal/modules/calculator/domain"
)

// MockCalculatorUseCase 電卓ユースケースのモック
type MockCalculatorUseCase struct {
	StateFunc             func() domain.State
	AppendFunc            func(token string) domain.State
	SetInputFunc          func(input string) domain.State
	EditInputFunc         func(input string) (domain.State, bool)
	ClearFunc             func() domain.State
	PressFunc             func(ctx context.Context, label string) domain.State
	SubmitFunc            func(ctx context.Context) domain.State
	EvaluateFunc          func(ctx context.Context, expression string) (*domain.Evaluation, error)
	RecentEvaluationsFunc func(ctx context.Context, limit int) ([]*domain.JournalEntry, error)
}

func (m *MockCalculatorUseCase) State() domain.State {
	if m.StateFunc != nil {
		return m.StateFunc()
	}
	return domain.NewState()
}

func (m *MockCalculatorUseCase) Append(token string) domain.State {
	if m.AppendFunc != nil {
		return m.AppendFunc(token)
	}
	return domain.NewState().Append(token)
}

func (m *MockCalculatorUseCase) SetInput(input string) domain.State {
	if m.SetInputFunc != nil {
		return m.SetInputFunc(input)
	}
	return domain.NewState().WithInput(input)
}

func (m *MockCalculatorUseCase) EditInput(input string) (domain.State, bool) {
	if m.EditInputFunc != nil {
		return m.EditInputFunc(input)
	}
	return domain.NewState().WithInput(input), true
}

func (m *MockCalculatorUseCase) Clear() domain.State {
	if m.ClearFunc != nil {
		return m.ClearFunc()
	}
	return domain.NewState()
}

func (m *MockCalculatorUseCase) Press(ctx context.Context, label string) domain.State {
	if m.PressFunc != nil {
		return m.PressFunc(ctx, label)
	}
	return domain.NewState()
}

func (m *MockCalculatorUseCase) Submit(ctx context.Context) domain.State {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx)
	}
	return domain.NewState()
}

func (m *MockCalculatorUseCase) Evaluate(ctx context.Context, expression string) (*domain.Evaluation, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, expression)
	}
	return domain.NewOKEvaluation(expression, "0", "", "mock", 0), nil
}

func (m *MockCalculatorUseCase) RecentEvaluations(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	if m.RecentEvaluationsFunc != nil {
		return m.RecentEvaluationsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockCalculatorUseCase) GetProviderName() string {
	return "Mock Provider"
}
