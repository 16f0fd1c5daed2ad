package requestid

import "context"

type contextKey struct{}

// HeaderName リクエストIDを受け渡すHTTPヘッダー
const HeaderName = "X-Request-ID"

// WithRequestID コンテキストにリクエストIDを設定
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext コンテキストからリクエストIDを取得（未設定なら空）
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
