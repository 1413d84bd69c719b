package middleware

import (
	"context"
	"net/http"

	"github.com/architeacher/catalog/pkg/logger"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-Id"

	maxRequestIDLength = 128
)

// RequestID propagates the caller's request id or assigns a new one. The id
// is stored where the logger picks it up.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.NewString()
			}

			ctx := logger.ContextWithRequestID(r.Context(), requestID)

			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}
