package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// errorResponse is the JSON body of every failed API request.
type errorResponse struct {
	Error string          `json:"error"`
	Kind  model.ErrorKind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode json response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, kind model.ErrorKind) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
