package middleware

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	encodingGzip    = "gzip"
	encodingBrotli  = "br"
	encodingDeflate = "deflate"

	compressionAlgorithmKey  = "compression.algorithm"
	compressionSkipReasonKey = "compression.skip_reason"

	httpCompressionTotal           = "http_compression_total"
	httpCompressionOriginalBytes   = "http_compression_original_bytes"
	httpCompressionCompressedBytes = "http_compression_compressed_bytes"
	httpCompressionSkippedTotal    = "http_compression_skipped_total"

	skipReasonBelowMinSize    = "below_min_size"
	skipReasonNonCompressible = "non_compressible_type"
	skipReasonNoEncoding      = "no_accept_encoding"
)

// serverPreference breaks ties between equally weighted encodings.
var serverPreference = []string{encodingGzip, encodingBrotli, encodingDeflate}

type acceptedEncoding struct {
	name    string
	quality float64
}

// Compression encodes response bodies with gzip, brotli or deflate, chosen
// from Accept-Encoding. Bodies below the minimum size, bodies of other
// content types and responses that are already encoded pass through.
func Compression(cfg config.Compression, metricsClient metrics.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || slices.Contains(cfg.SkipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Add("Vary", "Accept-Encoding")

			encoding := selectEncoding(parseAcceptEncoding(r.Header.Get("Accept-Encoding")))
			if encoding == "" {
				recordCompressionSkipped(r.Context(), metricsClient, skipReasonNoEncoding)
				next.ServeHTTP(w, r)

				return
			}

			buffered := &bufferedResponseWriter{ResponseWriter: w}
			next.ServeHTTP(buffered, r)

			body := buffered.body.Bytes()
			status := buffered.status()

			switch {
			case w.Header().Get("Content-Encoding") != "" || status == http.StatusNoContent || status == http.StatusNotModified:
				writeBuffered(w, status, body)

				return
			case !isCompressible(w.Header().Get("Content-Type"), cfg.ContentTypes):
				recordCompressionSkipped(r.Context(), metricsClient, skipReasonNonCompressible)
				writeBuffered(w, status, body)

				return
			case len(body) < cfg.MinSize:
				recordCompressionSkipped(r.Context(), metricsClient, skipReasonBelowMinSize)
				writeBuffered(w, status, body)

				return
			}

			compressed, err := compress(encoding, cfg.Level, body)
			if err != nil {
				writeBuffered(w, status, body)

				return
			}

			w.Header().Set("Content-Encoding", encoding)
			w.Header().Set("Content-Length", strconv.Itoa(len(compressed)))
			writeBuffered(w, status, compressed)

			recordCompression(r.Context(), metricsClient, encoding, len(body), len(compressed))
		})
	}
}

func writeBuffered(w http.ResponseWriter, status int, body []byte) {
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func compress(encoding string, level int, body []byte) ([]byte, error) {
	var (
		buf    bytes.Buffer
		writer io.WriteCloser
		err    error
	)

	switch encoding {
	case encodingGzip:
		writer, err = gzip.NewWriterLevel(&buf, level)
	case encodingDeflate:
		writer, err = flate.NewWriter(&buf, level)
	default:
		writer = brotli.NewWriterLevel(&buf, min(level, brotli.BestCompression))
	}

	if err != nil {
		return nil, err
	}

	if _, err := writer.Write(body); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func parseAcceptEncoding(header string) []acceptedEncoding {
	var encodings []acceptedEncoding

	for part := range strings.SplitSeq(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if name == "" {
			continue
		}

		quality := 1.0

		if value, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}

			quality = parsed
		}

		encodings = append(encodings, acceptedEncoding{name: strings.ToLower(name), quality: quality})
	}

	return encodings
}

// selectEncoding picks the supported encoding with the highest quality.
// "*" stands for any encoding not listed explicitly.
func selectEncoding(encodings []acceptedEncoding) string {
	best, bestQuality := "", 0.0

	for _, candidate := range serverPreference {
		quality, listed := 0.0, false

		for _, encoding := range encodings {
			if encoding.name == candidate {
				quality, listed = encoding.quality, true
			}
		}

		if !listed {
			for _, encoding := range encodings {
				if encoding.name == "*" {
					quality = encoding.quality
				}
			}
		}

		if quality > bestQuality {
			best, bestQuality = candidate, quality
		}
	}

	return best
}

func isCompressible(contentType string, allowed []string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return slices.Contains(allowed, mediaType)
}

func recordCompressionSkipped(ctx context.Context, metricsClient metrics.Client, reason string) {
	if metricsClient == nil {
		return
	}

	metricsClient.Inc(ctx, httpCompressionSkippedTotal, int64(1), attribute.String(compressionSkipReasonKey, reason))
}

func recordCompression(ctx context.Context, metricsClient metrics.Client, encoding string, original, compressed int) {
	if metricsClient == nil {
		return
	}

	attr := attribute.String(compressionAlgorithmKey, encoding)

	metricsClient.Inc(ctx, httpCompressionTotal, int64(1), attr)
	metricsClient.Inc(ctx, httpCompressionOriginalBytes, int64(original), attr)
	metricsClient.Inc(ctx, httpCompressionCompressedBytes, int64(compressed), attr)
}
