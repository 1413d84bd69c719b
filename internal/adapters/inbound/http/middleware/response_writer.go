package middleware

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
)

// ResponseRecorder observes the status code and size of a response while
// passing it through. A capturing recorder also keeps a copy of the body.
type ResponseRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten uint64
	wroteHeader  bool
	body         *bytes.Buffer
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func NewCapturingResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	rec := NewResponseRecorder(w)
	rec.body = &bytes.Buffer{}

	return rec
}

func (w *ResponseRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.statusCode = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += uint64(n)

	if w.body != nil {
		w.body.Write(b[:n])
	}

	return n, err
}

func (w *ResponseRecorder) StatusCode() int {
	return w.statusCode
}

func (w *ResponseRecorder) BytesWritten() uint64 {
	return w.bytesWritten
}

// Body returns the captured body, nil unless the recorder captures.
func (w *ResponseRecorder) Body() []byte {
	if w.body == nil {
		return nil
	}

	return w.body.Bytes()
}

func (w *ResponseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}

	return nil, nil, http.ErrNotSupported
}

func (w *ResponseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
