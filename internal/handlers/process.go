package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"anomserver/internal/logger"
	"anomserver/internal/model"
	"anomserver/internal/services"
)

// maxUploadBytes caps multipart parsing memory; larger uploads spill to disk.
const maxUploadBytes = 64 << 20

// ProcessVideoHandler accepts one uploaded video under the "video" form
// field, runs the full analysis and returns the session result as JSON.
func ProcessVideoHandler(processor *services.Processor, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("video")
		if err != nil {
			http.Error(w, "Missing 'video' form field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		filename := filepath.Base(header.Filename)
		if filename == "" || filename == "." {
			http.Error(w, "Invalid filename", http.StatusBadRequest)
			return
		}

		result, err := processor.Process(filename, file)
		if err != nil {
			logger.Error("Processing %s: %v", filename, err)
			if errors.Is(err, model.ErrDecode) {
				http.Error(w, "Uploaded file is not a decodable video", http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, "Processing failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
