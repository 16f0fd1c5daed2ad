package domain

import "strings"

// Phase 電卓セッションの状態
type Phase int

const (
	// PhaseIdle 初期状態（Clear後）
	PhaseIdle Phase = iota
	// PhaseEditing 入力中
	PhaseEditing
	// PhaseSubmitting 評価待ち
	PhaseSubmitting
	// PhaseDisplaying 結果表示中
	PhaseDisplaying
)

// String 状態名を返す
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDisplaying:
		return "displaying"
	default:
		return "unknown"
	}
}

// State 電卓セッションの状態値。遷移は新しい State を返し、レシーバは変更しない
//
// Result は Submitting 中は常に空。Generation は送信とClearのたびに進み、
// 古い Ticket の応答を破棄する判定に使う。
type State struct {
	Phase      Phase
	Input      string
	Result     string
	Generation uint64
}

// Ticket 送信1回分の識別子
type Ticket struct {
	Generation uint64
	Expression string
}

// NewState 初期状態を返す
func NewState() State {
	return State{Phase: PhaseIdle}
}

// Busy 評価待ちかどうか
func (s State) Busy() bool {
	return s.Phase == PhaseSubmitting
}

// Display 結果欄に表示する文字列
func (s State) Display() string {
	if s.Busy() {
		return CalculatingMessage
	}
	return s.Result
}

// Append 入力末尾にトークンを追加
func (s State) Append(token string) State {
	s.Input += token
	if s.Phase != PhaseSubmitting {
		s.Phase = PhaseEditing
	}
	return s
}

// WithInput 入力を直接置き換える（テキスト欄での編集）
func (s State) WithInput(input string) State {
	s.Input = input
	if s.Phase != PhaseSubmitting {
		s.Phase = PhaseEditing
	}
	return s
}

// Clear 入力と結果を消去し、評価待ちの応答を無効にする
func (s State) Clear() State {
	return State{
		Phase:      PhaseIdle,
		Generation: s.Generation + 1,
	}
}

// Submit 送信を開始する。ネットワーク呼び出しが必要なときだけ ok が true
func (s State) Submit() (next State, ticket Ticket, ok bool) {
	s.Generation++
	if strings.TrimSpace(s.Input) == "" {
		s.Phase = PhaseDisplaying
		s.Result = EmptyInputMessage
		return s, Ticket{}, false
	}

	s.Phase = PhaseSubmitting
	s.Result = ""
	return s, Ticket{Generation: s.Generation, Expression: s.Input}, true
}

// Complete 評価結果を反映する。Ticket が古ければ状態は変えず applied は false
func (s State) Complete(ticket Ticket, text string) (next State, applied bool) {
	if ticket.Generation != s.Generation || s.Phase != PhaseSubmitting {
		return s, false
	}
	s.Phase = PhaseDisplaying
	s.Result = text
	return s, true
}
