package middleware

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ETag derives a strong, quoted entity tag from a response body.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// ETagMatches reports whether an If-None-Match header value names etag.
// Weak comparison is used, as required for GET.
func ETagMatches(ifNoneMatch, etag string) bool {
	if strings.TrimSpace(ifNoneMatch) == "*" {
		return true
	}

	for candidate := range strings.SplitSeq(ifNoneMatch, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}

	return false
}
