package domain

import (
	"fmt"
	"time"
)

const (
	// NoResponseMessage 応答の形が想定外だった場合の表示文字列
	NoResponseMessage = "Error: No response"
	// FetchFailedMessage 通信・ステータス・JSON解析に失敗した場合の表示文字列
	FetchFailedMessage = "Error: Unable to fetch response"
	// EmptyInputMessage 入力が空（空白のみ）の場合の表示文字列
	EmptyInputMessage = "Please enter a valid mathematical expression."
	// CalculatingMessage 計算中の表示文字列
	CalculatingMessage = "Calculating..."

	promptTemplate = "Evaluate this mathematical expression and output the result only in digits (not latex): %s"
)

// BuildPrompt 式を評価依頼の指示文に埋め込む
func BuildPrompt(expression string) string {
	return fmt.Sprintf(promptTemplate, expression)
}

// OutcomeKind 評価結果の種別
type OutcomeKind int

const (
	// OutcomeOK 回答テキストを取得できた
	OutcomeOK OutcomeKind = iota
	// OutcomeMalformed 応答は得られたが candidates[0].content.parts[0].text が無い
	OutcomeMalformed
	// OutcomeNetworkError 通信失敗・非2xx・JSON解析失敗
	OutcomeNetworkError
)

// String 種別名を返す
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Evaluation 外部サービスによる式評価の結果
type Evaluation struct {
	Expression  string
	Kind        OutcomeKind
	Answer      string // OutcomeOK のときのみ
	Err         error  // OutcomeNetworkError のときのみ
	RawResponse string
	Model       string
	Latency     time.Duration
	EvaluatedAt time.Time
}

// NewOKEvaluation 回答を取得できた評価結果を作成
func NewOKEvaluation(expression, answer, rawResponse, model string, latency time.Duration) *Evaluation {
	return &Evaluation{
		Expression:  expression,
		Kind:        OutcomeOK,
		Answer:      answer,
		RawResponse: rawResponse,
		Model:       model,
		Latency:     latency,
		EvaluatedAt: time.Now(),
	}
}

// NewMalformedEvaluation 応答の形が想定外だった評価結果を作成
func NewMalformedEvaluation(expression, rawResponse, model string, latency time.Duration) *Evaluation {
	return &Evaluation{
		Expression:  expression,
		Kind:        OutcomeMalformed,
		RawResponse: rawResponse,
		Model:       model,
		Latency:     latency,
		EvaluatedAt: time.Now(),
	}
}

// NewNetworkErrorEvaluation 取得に失敗した評価結果を作成
func NewNetworkErrorEvaluation(expression string, err error, model string, latency time.Duration) *Evaluation {
	return &Evaluation{
		Expression:  expression,
		Kind:        OutcomeNetworkError,
		Err:         err,
		Model:       model,
		Latency:     latency,
		EvaluatedAt: time.Now(),
	}
}

// Text 画面に表示する文字列を返す
func (e *Evaluation) Text() string {
	switch e.Kind {
	case OutcomeOK:
		return e.Answer
	case OutcomeMalformed:
		return NoResponseMessage
	default:
		return FetchFailedMessage
	}
}

// ErrorText エラー内容を文字列で返す（エラーが無ければ空）
func (e *Evaluation) ErrorText() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
