package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"anomserver/internal/model"
	"anomserver/internal/services/storage"
)

// servableCategories are the artifact kinds exposed over HTTP.
var servableCategories = map[string]bool{
	model.CategoryOriginal:    true,
	model.CategoryClip:        true,
	model.CategoryGroundTruth: true,
	model.CategorySummary:     true,
	model.CategoryCombined:    true,
	model.CategoryProcessed:   true,
}

// ServeArtifactHandler streams a stored artifact. http.ServeFile provides
// byte-range support, which video players rely on for seeking.
func ServeArtifactHandler(store *storage.ArtifactStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.PathValue("category")
		filename := filepath.Base(r.PathValue("filename"))

		if !servableCategories[category] || filename == "" || filename == "." {
			http.NotFound(w, r)
			return
		}

		path := store.PathFor(category, filename)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, path)
	}
}
