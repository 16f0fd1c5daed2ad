package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-calculator/internal/config"
	"ai-calculator/internal/modules/calculator/domain"
)

// maxResponseBytes 応答ボディの読み込み上限
const maxResponseBytes = 1 << 20

// RESTRepository generateContent を素のHTTPで呼び出す式評価の実装
type RESTRepository struct {
	apiKey      string
	model       string
	httpClient  *http.Client
	apiEndpoint string // テスト用にエンドポイントを差し替え可能に
}

// NewRESTRepository 新しいRESTRepositoryを作成
func NewRESTRepository(cfg *config.GeminiConfig) *RESTRepository {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTRepository{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       strings.TrimSpace(cfg.Model),
		httpClient:  &http.Client{Timeout: timeout},
		apiEndpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}
}

// SetHTTPClient テスト用にHTTPクライアントを設定（テストコードからのみ使用）
func (r *RESTRepository) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// Evaluate 式を評価する
func (r *RESTRepository) Evaluate(ctx context.Context, expression string) *domain.Evaluation {
	start := time.Now()

	raw, err := r.generate(ctx, domain.BuildPrompt(expression))
	latency := time.Since(start)
	if err != nil {
		slog.Error("Gemini API error",
			"model", r.model,
			"error", err,
			"duration", latency,
		)
		return domain.NewNetworkErrorEvaluation(expression, err, r.model, latency)
	}

	slog.Debug("Gemini API response",
		"model", r.model,
		"body", string(raw),
		"duration", latency,
	)

	text, err := parseResponse(raw)
	if errors.Is(err, errMalformed) {
		return domain.NewMalformedEvaluation(expression, string(raw), r.model, latency)
	}
	if err != nil {
		slog.Error("Gemini API returned invalid JSON",
			"model", r.model,
			"error", err,
		)
		return domain.NewNetworkErrorEvaluation(expression, fmt.Errorf("failed to decode response: %w", err), r.model, latency)
	}

	return domain.NewOKEvaluation(expression, text, string(raw), r.model, latency)
}

// generate リクエストを送信し、2xxの応答ボディを返す
func (r *RESTRepository) generate(ctx context.Context, prompt string) ([]byte, error) {
	jsonData, err := json.Marshal(newRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.requestURL(), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", redactError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", redactError(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response too large: exceeds %d bytes", maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// requestURL generateContent のURL（APIキーはクエリパラメータ）
func (r *RESTRepository) requestURL() string {
	q := url.Values{}
	q.Set("key", r.apiKey)
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s", r.apiEndpoint, url.PathEscape(r.model), q.Encode())
}

// ProviderName プロバイダー名を返す
func (r *RESTRepository) ProviderName() string {
	return "Google Gemini (REST)"
}
