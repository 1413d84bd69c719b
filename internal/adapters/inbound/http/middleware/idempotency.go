package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/idempotency"
	"github.com/architeacher/catalog/pkg/logger"
)

// Idempotency replays the first successful response to a POST carrying an
// idempotency key. A key reused with a different body is rejected, and a
// key whose first request is still running answers 409.
func Idempotency(
	cache ports.IdempotencyCache,
	cfg config.Idempotency,
	maxBodyBytes int64,
	log logger.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cache == nil || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)

				return
			}

			idempotencyKey := r.Header.Get(cfg.HeaderName)
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)

				return
			}

			if err := idempotency.Validate(idempotencyKey); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", err.Error())

				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")

				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			reqLogger := log.WithContext(ctx).With().Str("idempotency_key", idempotencyKey).Logger()
			cacheKey := idempotency.BuildCacheKey(r.Method, r.URL.Path, idempotencyKey)
			fingerprint := idempotency.Fingerprint(body)

			cached, err := cache.Get(ctx, cacheKey)
			if err != nil {
				reqLogger.Warn().Err(err).Msg("idempotency cache get failed")
				degrade(w, r, next, cfg)

				return
			}

			if cached != nil {
				if cached.Fingerprint != fingerprint {
					writeError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_MISMATCH",
						"idempotency key was already used with a different request body")

					return
				}

				writeCachedResponse(w, cfg, cached)

				return
			}

			acquired, err := cache.SetLock(ctx, cacheKey, cfg.LockTTL)
			if err != nil {
				reqLogger.Warn().Err(err).Msg("idempotency cache lock failed")
				degrade(w, r, next, cfg)

				return
			}

			if !acquired {
				writeError(w, http.StatusConflict, "REQUEST_IN_PROGRESS",
					"a request with this idempotency key is already being processed")

				return
			}

			defer func() {
				if err := cache.ReleaseLock(ctx, cacheKey); err != nil {
					reqLogger.Warn().Err(err).Msg("failed to release idempotency lock")
				}
			}()

			rec := NewCapturingResponseRecorder(w)
			next.ServeHTTP(rec, r.WithContext(idempotency.WithKey(ctx, idempotencyKey)))

			if rec.StatusCode() < http.StatusOK || rec.StatusCode() >= http.StatusMultipleChoices {
				return
			}

			response := &ports.CachedResponse{
				StatusCode:  rec.StatusCode(),
				Fingerprint: fingerprint,
				Headers:     capturedHeaders(rec.Header()),
				Body:        bytes.Clone(rec.Body()),
				CreatedAt:   time.Now().UTC(),
			}

			if err := cache.Set(ctx, cacheKey, response, cfg.CacheTTL); err != nil {
				reqLogger.Warn().Err(err).Msg("failed to cache idempotent response")
			}
		})
	}
}

func degrade(w http.ResponseWriter, r *http.Request, next http.Handler, cfg config.Idempotency) {
	if cfg.GracefulDegraded {
		next.ServeHTTP(w, r)

		return
	}

	writeError(w, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "idempotency service temporarily unavailable")
}

func writeCachedResponse(w http.ResponseWriter, cfg config.Idempotency, cached *ports.CachedResponse) {
	for key, value := range cached.Headers {
		w.Header().Set(key, value)
	}

	w.Header().Set(cfg.ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

// capturedHeaders keeps the representation headers of a response. Per
// request headers such as the request id are left out of the replay.
func capturedHeaders(header http.Header) map[string]string {
	headers := make(map[string]string, 2)

	for _, key := range []string{"Content-Type", "Location"} {
		if value := header.Get(key); value != "" {
			headers[key] = value
		}
	}

	return headers
}
