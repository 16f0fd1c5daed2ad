package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ai-calculator/internal/config"
	"ai-calculator/internal/modules/calculator/domain"
)

// SDKRepository generative-ai-go SDK 経由の式評価の実装
type SDKRepository struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewSDKRepository 新しいSDKRepositoryを作成
//
// クライアントは一度だけ生成し、Close で解放する。
func NewSDKRepository(ctx context.Context, cfg *config.GeminiConfig) (*SDKRepository, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.ClientOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if endpoint := strings.TrimRight(cfg.Endpoint, "/"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", redactError(err))
	}

	return &SDKRepository{
		client:  client,
		model:   strings.TrimSpace(cfg.Model),
		timeout: timeout,
	}, nil
}

// Close クライアントを解放
func (r *SDKRepository) Close() error {
	return r.client.Close()
}

// Evaluate 式を評価する
func (r *SDKRepository) Evaluate(ctx context.Context, expression string) *domain.Evaluation {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.generate(ctx, domain.BuildPrompt(expression))
	latency := time.Since(start)
	if err != nil {
		slog.Error("Gemini SDK error",
			"model", r.model,
			"error", err,
			"duration", latency,
		)
		return domain.NewNetworkErrorEvaluation(expression, err, r.model, latency)
	}

	text, ok := firstText(resp)
	if !ok {
		slog.Debug("Gemini SDK response without text", "model", r.model)
		return domain.NewMalformedEvaluation(expression, "", r.model, latency)
	}

	slog.Debug("Gemini SDK response",
		"model", r.model,
		"text", text,
		"duration", latency,
	)
	return domain.NewOKEvaluation(expression, text, text, r.model, latency)
}

func (r *SDKRepository) generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	resp, err := r.client.GenerativeModel(r.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", redactError(err))
	}
	return resp, nil
}

// firstText 先頭候補の先頭partがテキストならそれを返す
func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		return "", false
	}
	t, ok := c.Content.Parts[0].(genai.Text)
	if !ok || t == "" {
		return "", false
	}
	return string(t), true
}

// ProviderName プロバイダー名を返す
func (r *SDKRepository) ProviderName() string {
	return "Google Gemini (SDK)"
}
