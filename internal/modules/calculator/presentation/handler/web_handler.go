package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"ai-calculator/internal/modules/calculator/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// WebHandler 電卓画面のハンドラー
type WebHandler struct {
	calculator CalculatorUseCaseInterface
	templates  *template.Template
}

// NewWebHandler 新しいWebHandlerを作成
func NewWebHandler(calculator CalculatorUseCaseInterface) (*WebHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &WebHandler{
		calculator: calculator,
		templates:  tmpl,
	}, nil
}

// pageData 画面描画用のデータ
type pageData struct {
	Title    string
	State    domain.State
	Keys     []domain.Key
	Provider string
}

// HandleIndex 電卓画面を表示
func (h *WebHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Title:    "AI Calculator",
		State:    h.calculator.State(),
		Keys:     domain.Keypad(),
		Provider: h.calculator.GetProviderName(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "calculator.html", data); err != nil {
		slog.Error("Failed to render template", "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// HandlePress ボタン押下を処理して電卓画面へリダイレクト
//
// フォームの input はテキスト欄の内容。変更されていれば先に反映してからキーを処理する。
func (h *WebHandler) HandlePress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	if r.PostForm.Has("input") {
		h.calculator.EditInput(r.PostForm.Get("input"))
	}

	if key := r.PostForm.Get("key"); key != "" {
		h.calculator.Press(r.Context(), key)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
