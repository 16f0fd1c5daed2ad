package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"ai-calculator/internal/modules/shared/requestid"
)

const maxRequestIDLength = 128

// RequestID リクエストIDを付与するミドルウェア
//
// クライアントが X-Request-ID を送っていればそれを引き継ぐ。
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.HeaderName)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		w.Header().Set(requestid.HeaderName, id)
		next.ServeHTTP(w, r.WithContext(requestid.WithRequestID(r.Context(), id)))
	})
}
