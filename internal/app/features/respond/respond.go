// internal/app/features/respond/respond.go

// Package respond writes JSON API responses with a consistent envelope.
package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status. Encoding failures are logged;
// headers are already gone by then.
func JSON(w http.ResponseWriter, log *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response", zap.Error(err))
	}
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, log *zap.Logger, status int, msg string) {
	JSON(w, log, status, errorBody{Error: msg})
}

// ServerError logs err and writes a generic 500 so internals don't leak.
func ServerError(w http.ResponseWriter, log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	Error(w, log, http.StatusInternalServerError, "internal error")
}
