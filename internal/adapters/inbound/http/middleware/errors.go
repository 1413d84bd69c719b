package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

type errorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}
