package middleware

import (
	"bytes"
	"net/http"
)

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

// bufferedResponseWriter holds back the response so that an ETag can be
// computed over the complete body.
type bufferedResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	if w.statusCode == 0 {
		w.statusCode = code
	}
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}

	return w.body.Write(b)
}

func (w *bufferedResponseWriter) status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}

	return w.statusCode
}

// ConditionalGET tags successful GET and HEAD responses with an ETag and
// answers 304 Not Modified when the client already holds the representation.
// A tag set by the handler wins over the hash of the body.
func ConditionalGET() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)

				return
			}

			buffered := &bufferedResponseWriter{ResponseWriter: w}
			next.ServeHTTP(buffered, r)

			status := buffered.status()
			if status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = w.Write(buffered.body.Bytes())

				return
			}

			etag := w.Header().Get(headerETag)
			if etag == "" {
				etag = ETag(buffered.body.Bytes())
				w.Header().Set(headerETag, etag)
			}

			if ifNoneMatch := r.Header.Get(headerIfNoneMatch); ifNoneMatch != "" && ETagMatches(ifNoneMatch, etag) {
				w.Header().Del("Content-Length")
				w.WriteHeader(http.StatusNotModified)

				return
			}

			w.WriteHeader(status)
			_, _ = w.Write(buffered.body.Bytes())
		})
	}
}
