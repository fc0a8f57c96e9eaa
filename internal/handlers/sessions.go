package handlers

import (
	"encoding/json"
	"net/http"

	"anomserver/internal/logger"
	"anomserver/internal/services"
)

// GetSessionHandler returns the stored result of a past session.
func GetSessionHandler(processor *services.Processor, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "Missing session id", http.StatusBadRequest)
			return
		}

		result, err := processor.Result(id)
		if err != nil {
			logger.Error("Fetching session %s: %v", id, err)
			http.Error(w, "Failed to fetch session", http.StatusInternalServerError)
			return
		}
		if result == nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
