package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai-calculator/internal/modules/calculator/domain"
	"ai-calculator/internal/modules/calculator/usecase"
)

// CalculatorHandler 電卓JSON APIのハンドラー
type CalculatorHandler struct {
	calculator CalculatorUseCaseInterface
}

// NewCalculatorHandler 新しいCalculatorHandlerを作成
func NewCalculatorHandler(calculator CalculatorUseCaseInterface) *CalculatorHandler {
	return &CalculatorHandler{calculator: calculator}
}

// StateResponse 電卓状態のレスポンス
type StateResponse struct {
	Success bool   `json:"success"`
	Phase   string `json:"phase,omitempty"`
	Input   string `json:"input"`
	Result  string `json:"result"`
	Display string `json:"display"`
	Busy    bool   `json:"busy"`
	Error   string `json:"error,omitempty"`
}

// EvaluateResponse 単発評価のレスポンス
type EvaluateResponse struct {
	Success   bool   `json:"success"`
	Outcome   string `json:"outcome,omitempty"`
	Text      string `json:"text,omitempty"`
	Model     string `json:"model,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// KeypadResponse キー配列のレスポンス
type KeypadResponse struct {
	Success bool         `json:"success"`
	Keys    []domain.Key `json:"keys,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// HandleState 現在の状態を返す
func (h *CalculatorHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.sendState(w, h.calculator.State())
}

// HandleAppend トークンを追加
func (h *CalculatorHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.Token == "" {
		h.sendError(w, "token is required", http.StatusBadRequest)
		return
	}

	h.sendState(w, h.calculator.Append(request.Token))
}

// HandleInput 入力を置き換える
func (h *CalculatorHandler) HandleInput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Input *string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// 空文字は有効な入力
	if request.Input == nil {
		h.sendError(w, "input is required", http.StatusBadRequest)
		return
	}

	h.sendState(w, h.calculator.SetInput(*request.Input))
}

// HandleClear 入力と結果を消去
func (h *CalculatorHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.sendState(w, h.calculator.Clear())
}

// HandleSubmit 現在の入力を評価（応答が返るまでブロック）
func (h *CalculatorHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.sendState(w, h.calculator.Submit(r.Context()))
}

// HandleEvaluate セッション状態を変えずに式を評価
func (h *CalculatorHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendEvaluateError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Expression string `json:"expression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendEvaluateError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	evaluation, err := h.calculator.Evaluate(r.Context(), request.Expression)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyExpression) {
			h.sendEvaluateError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.sendEvaluateError(w, "Evaluation failed", http.StatusInternalServerError)
		return
	}

	// 外部APIの失敗も評価結果として200で返す
	response := EvaluateResponse{
		Success:   evaluation.Kind == domain.OutcomeOK,
		Outcome:   evaluation.Kind.String(),
		Text:      evaluation.Text(),
		Model:     evaluation.Model,
		LatencyMS: evaluation.Latency.Milliseconds(),
	}

	sendJSON(w, http.StatusOK, response)
}

// HandleKeypad キー配列を返す
func (h *CalculatorHandler) HandleKeypad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSON(w, http.StatusMethodNotAllowed, KeypadResponse{Success: false, Error: "Method not allowed"})
		return
	}

	sendJSON(w, http.StatusOK, KeypadResponse{Success: true, Keys: domain.Keypad()})
}

// sendState 状態レスポンスを送信
func (h *CalculatorHandler) sendState(w http.ResponseWriter, state domain.State) {
	sendJSON(w, http.StatusOK, StateResponse{
		Success: true,
		Phase:   state.Phase.String(),
		Input:   state.Input,
		Result:  state.Result,
		Display: state.Display(),
		Busy:    state.Busy(),
	})
}

// sendError 状態系エンドポイントのエラーレスポンスを送信
func (h *CalculatorHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, StateResponse{
		Success: false,
		Error:   message,
	})
}

// sendEvaluateError 単発評価のエラーレスポンスを送信
func (h *CalculatorHandler) sendEvaluateError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, EvaluateResponse{
		Success: false,
		Error:   message,
	})
}

// sendJSON レスポンスをJSONで送信
func sendJSON(w http.ResponseWriter, statusCode int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
