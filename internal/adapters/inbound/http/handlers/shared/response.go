package shared

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/middleware"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderContentType = "Content-Type"
	HeaderLocation    = "Location"
	HeaderETag        = "ETag"
	HeaderCacheStatus = "Cache-Status"

	ApplicationJSON = "application/json"
)

type (
	PaginationData struct {
		Page           uint   `json:"page"`
		Size           uint   `json:"size"`
		TotalItems     uint   `json:"totalItems"`
		TotalPages     uint   `json:"totalPages"`
		HasNext        bool   `json:"hasNext"`
		HasPrevious    bool   `json:"hasPrevious"`
		NextCursor     string `json:"nextCursor,omitempty"`
		PreviousCursor string `json:"previousCursor,omitempty"`
	}

	// ResponseMeta contains response metadata for tracing and API versioning.
	ResponseMeta struct {
		RequestID  string `json:"requestId,omitempty"`
		TraceID    string `json:"traceId,omitempty"`
		APIVersion string `json:"apiVersion"`
	}

	// EnvelopedResponse wraps response data with metadata and optional pagination.
	EnvelopedResponse struct {
		Data       any             `json:"data"`
		Meta       ResponseMeta    `json:"meta"`
		Pagination *PaginationData `json:"pagination,omitempty"`
	}

	ErrorResponse struct {
		Code      string        `json:"code"`
		Message   string        `json:"message"`
		Details   []ErrorDetail `json:"details,omitempty"`
		Timestamp time.Time     `json:"timestamp"`
	}

	ErrorDetail struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

// NewMeta collects the request id and the id of the trace serving r.
func NewMeta(r *http.Request, apiVersion string) ResponseMeta {
	meta := ResponseMeta{
		RequestID:  middleware.GetRequestID(r.Context()),
		APIVersion: apiVersion,
	}

	if spanCtx := trace.SpanContextFromContext(r.Context()); spanCtx.HasTraceID() {
		meta.TraceID = spanCtx.TraceID().String()
	}

	return meta
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(HeaderContentType, ApplicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteEnveloped writes response tagged with an ETag computed over its data
// and pagination. Meta differs on every request and is left out of the tag.
func WriteEnveloped(w http.ResponseWriter, status int, response EnvelopedResponse) {
	representation, err := json.Marshal(struct {
		Data       any             `json:"data"`
		Pagination *PaginationData `json:"pagination,omitempty"`
	}{
		Data:       response.Data,
		Pagination: response.Pagination,
	})
	if err == nil {
		w.Header().Set(HeaderETag, middleware.ETag(representation))
	}

	WriteJSON(w, status, response)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details ...ErrorDetail) {
	WriteJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
