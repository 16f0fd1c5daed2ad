package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ai-calculator/internal/config"
	"ai-calculator/internal/modules/calculator/domain"
)

const testAPIKey = "test-api-key-secret"

func newTestRepository(serverURL string, client *http.Client) *RESTRepository {
	cfg := &config.GeminiConfig{
		APIKey:         testAPIKey,
		Model:          "gemini-2.0-flash",
		Endpoint:       serverURL,
		TimeoutSeconds: 5,
	}
	repo := NewRESTRepository(cfg)
	if client != nil {
		repo.SetHTTPClient(client)
	}
	return repo
}

// captureLogs テスト中のslog出力をバッファに差し替える
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRESTRepository_Evaluate_Request(t *testing.T) {
	var gotPath, gotKey, gotMethod, gotContentType string
	var gotBody generateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"42"}]}}]}`))
	}))
	defer server.Close()

	repo := newTestRepository(server.URL, server.Client())
	_ = repo.Evaluate(context.Background(), "6*7")

	if gotMethod != http.MethodPost {
		t.Errorf("method = %v, want POST", gotMethod)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("path = %v", gotPath)
	}
	if gotKey != testAPIKey {
		t.Errorf("key = %v, want %v", gotKey, testAPIKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %v", gotContentType)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected body shape: %+v", gotBody)
	}
	if gotBody.Contents[0].Role != "user" {
		t.Errorf("role = %v, want user", gotBody.Contents[0].Role)
	}
	if gotBody.Contents[0].Parts[0].Text != domain.BuildPrompt("6*7") {
		t.Errorf("text = %q", gotBody.Contents[0].Parts[0].Text)
	}
}

func TestRESTRepository_Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind domain.OutcomeKind
		wantText string
	}{
		{
			name:     "正常系: 回答あり",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":"42"}]}}]}`,
			wantKind: domain.OutcomeOK,
			wantText: "42",
		},
		{
			name:     "正常系: 2番目以降の候補は無視",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":"3"},{"text":"x"}]}},{"content":{"parts":[{"text":"4"}]}}]}`,
			wantKind: domain.OutcomeOK,
			wantText: "3",
		},
		{
			name:     "異常系: candidatesが無い",
			status:   http.StatusOK,
			body:     `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: candidatesが空",
			status:   http.StatusOK,
			body:     `{"candidates":[]}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: contentが無い",
			status:   http.StatusOK,
			body:     `{"candidates":[{"finishReason":"SAFETY"}]}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: partsが空",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[]}}]}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: textが空文字",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: トップレベルが配列",
			status:   http.StatusOK,
			body:     `[]`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: トップレベルが文字列",
			status:   http.StatusOK,
			body:     `"hello"`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: トップレベルがnull",
			status:   http.StatusOK,
			body:     `null`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: candidatesが文字列",
			status:   http.StatusOK,
			body:     `{"candidates":"x"}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: partsが文字列",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":"oops"}}]}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "異常系: textが数値",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":5}]}}]}`,
			wantKind: domain.OutcomeMalformed,
			wantText: domain.NoResponseMessage,
		},
		{
			name:     "正常系: 後続候補の型不一致は無視",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":"42"}]}},{"content":"x"}]}`,
			wantKind: domain.OutcomeOK,
			wantText: "42",
		},
		{
			name:     "異常系: 200以外のステータス",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"API key not valid"}}`,
			wantKind: domain.OutcomeNetworkError,
			wantText: domain.FetchFailedMessage,
		},
		{
			name:     "異常系: 500エラー",
			status:   http.StatusInternalServerError,
			body:     `internal`,
			wantKind: domain.OutcomeNetworkError,
			wantText: domain.FetchFailedMessage,
		},
		{
			name:     "異常系: 不正なJSON",
			status:   http.StatusOK,
			body:     `{"candidates":[`,
			wantKind: domain.OutcomeNetworkError,
			wantText: domain.FetchFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			repo := newTestRepository(server.URL, server.Client())
			result := repo.Evaluate(context.Background(), "6*7")

			if result == nil {
				t.Fatal("result is nil")
			}
			if result.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", result.Kind, tt.wantKind)
			}
			if result.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", result.Text(), tt.wantText)
			}
			if result.Expression != "6*7" {
				t.Errorf("Expression = %q", result.Expression)
			}
			if result.Model != "gemini-2.0-flash" {
				t.Errorf("Model = %q", result.Model)
			}
		})
	}
}

func TestRESTRepository_Evaluate_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		padding := strings.Repeat(" ", maxResponseBytes)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"42"}]}}]}`+padding)
	}))
	defer server.Close()

	repo := newTestRepository(server.URL, server.Client())
	result := repo.Evaluate(context.Background(), "6*7")

	if result.Kind != domain.OutcomeNetworkError {
		t.Fatalf("Kind = %v, want %v", result.Kind, domain.OutcomeNetworkError)
	}
	if !strings.Contains(result.ErrorText(), "response too large") {
		t.Errorf("ErrorText() = %q, want response too large", result.ErrorText())
	}
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	_, err := parseResponse([]byte(`{"candidates":[`))
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if errors.Is(err, errMalformed) {
		t.Error("invalid JSON must not be reported as malformed")
	}
}

func TestRESTRepository_Evaluate_ConnectionReset(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("response writer does not support hijacking")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("Hijack() error = %v", err)
			return
		}
		_ = conn.Close()
	}))
	defer server.Close()

	repo := newTestRepository(server.URL, server.Client())
	result := repo.Evaluate(context.Background(), "1+1")

	if result.Kind != domain.OutcomeNetworkError {
		t.Errorf("Kind = %v, want %v", result.Kind, domain.OutcomeNetworkError)
	}
	if result.Text() != domain.FetchFailedMessage {
		t.Errorf("Text() = %q, want %q", result.Text(), domain.FetchFailedMessage)
	}
	if result.Err == nil {
		t.Error("Err is nil")
	}
	if atomic.LoadInt32(&calls) == 0 {
		t.Error("server was not called")
	}
}

func TestRESTRepository_Evaluate_DoesNotLeakAPIKey(t *testing.T) {
	logs := captureLogs(t)

	// 停止済みサーバーに接続して通信エラーを発生させる
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	repo := newTestRepository(serverURL, nil)
	result := repo.Evaluate(context.Background(), "1+1")

	if result.Kind != domain.OutcomeNetworkError {
		t.Fatalf("Kind = %v, want %v", result.Kind, domain.OutcomeNetworkError)
	}
	if strings.Contains(result.ErrorText(), testAPIKey) {
		t.Errorf("error text leaked API key: %s", result.ErrorText())
	}
	if !strings.Contains(result.ErrorText(), "REDACTED") {
		t.Errorf("error text should contain redacted URL: %s", result.ErrorText())
	}
	if strings.Contains(logs.String(), testAPIKey) {
		t.Errorf("logs leaked API key: %s", logs.String())
	}
}

func TestRESTRepository_Evaluate_LogsRawResponse(t *testing.T) {
	logs := captureLogs(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"7"}]}}]}`)
	}))
	defer server.Close()

	repo := newTestRepository(server.URL, server.Client())
	result := repo.Evaluate(context.Background(), "3+4")

	if result.RawResponse == "" {
		t.Error("RawResponse is empty")
	}
	if !strings.Contains(logs.String(), "Gemini API response") {
		t.Errorf("raw response was not logged: %s", logs.String())
	}
}

func TestRESTRepository_ProviderName(t *testing.T) {
	repo := NewRESTRepository(&config.GeminiConfig{Model: "gemini-2.0-flash"})
	if name := repo.ProviderName(); name != "Google Gemini (REST)" {
		t.Errorf("ProviderName() = %v", name)
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "keyあり",
			raw:  "https://example.com/v1beta/models/m:generateContent?key=secret",
			want: "https://example.com/v1beta/models/m:generateContent?key=REDACTED",
		},
		{
			name: "keyなし",
			raw:  "https://example.com/path?alt=json",
			want: "https://example.com/path?alt=json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactURL(tt.raw); got != tt.want {
				t.Errorf("redactURL() = %v, want %v", got, tt.want)
			}
		})
	}
}
