package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/middleware"
	"github.com/stretchr/testify/require"
)

func TestETagMatches(t *testing.T) {
	t.Parallel()

	etag := middleware.ETag([]byte(`{"name":"Apple"}`))

	cases := []struct {
		name        string
		ifNoneMatch string
		expected    bool
	}{
		{name: "exact", ifNoneMatch: etag, expected: true},
		{name: "weak", ifNoneMatch: "W/" + etag, expected: true},
		{name: "wildcard", ifNoneMatch: "*", expected: true},
		{name: "in list", ifNoneMatch: `"abc", ` + etag, expected: true},
		{name: "different", ifNoneMatch: `"abc"`, expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, middleware.ETagMatches(tc.ifNoneMatch, etag))
		})
	}
}

func TestETag_IsStableAndQuoted(t *testing.T) {
	t.Parallel()

	first := middleware.ETag([]byte("body"))

	require.Equal(t, first, middleware.ETag([]byte("body")))
	require.NotEqual(t, first, middleware.ETag([]byte("other")))
	require.Equal(t, byte('"'), first[0])
	require.Equal(t, byte('"'), first[len(first)-1])
}

func TestConditionalGET(t *testing.T) {
	t.Parallel()

	body := `{"data":[]}`
	etag := middleware.ETag([]byte(body))

	cases := []struct {
		name           string
		method         string
		ifNoneMatch    string
		status         int
		handlerETag    string
		expectedStatus int
		expectedETag   string
		expectedBody   string
	}{
		{
			name:           "tags a fresh response",
			method:         http.MethodGet,
			status:         http.StatusOK,
			expectedStatus: http.StatusOK,
			expectedETag:   etag,
			expectedBody:   body,
		},
		{
			name:           "answers not modified",
			method:         http.MethodGet,
			ifNoneMatch:    etag,
			status:         http.StatusOK,
			expectedStatus: http.StatusNotModified,
			expectedETag:   etag,
		},
		{
			name:           "keeps the tag chosen by the handler",
			method:         http.MethodGet,
			status:         http.StatusOK,
			handlerETag:    `"stable"`,
			expectedStatus: http.StatusOK,
			expectedETag:   `"stable"`,
			expectedBody:   body,
		},
		{
			name:           "matches against the tag chosen by the handler",
			method:         http.MethodGet,
			ifNoneMatch:    `"stable"`,
			status:         http.StatusOK,
			handlerETag:    `"stable"`,
			expectedStatus: http.StatusNotModified,
			expectedETag:   `"stable"`,
		},
		{
			name:           "passes errors through untagged",
			method:         http.MethodGet,
			ifNoneMatch:    etag,
			status:         http.StatusNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   body,
		},
		{
			name:           "ignores writes",
			method:         http.MethodPost,
			ifNoneMatch:    etag,
			status:         http.StatusCreated,
			expectedStatus: http.StatusCreated,
			expectedBody:   body,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tc.handlerETag != "" {
					w.Header().Set("ETag", tc.handlerETag)
				}

				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(body))
			})

			req := httptest.NewRequest(tc.method, "/v1/products", nil)
			if tc.ifNoneMatch != "" {
				req.Header.Set("If-None-Match", tc.ifNoneMatch)
			}

			rec := httptest.NewRecorder()
			middleware.ConditionalGET()(next).ServeHTTP(rec, req)

			require.Equal(t, tc.expectedStatus, rec.Code)
			require.Equal(t, tc.expectedBody, rec.Body.String())

			require.Equal(t, tc.expectedETag, rec.Header().Get("ETag"))
		})
	}
}
