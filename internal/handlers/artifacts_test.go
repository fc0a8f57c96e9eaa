package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"anomserver/internal/config"
	"anomserver/internal/logger"
	"anomserver/internal/model"
	"anomserver/internal/repository/sqlite"
	"anomserver/internal/services/storage"
)

// ========================================
// Artifact Serving Tests
// ========================================

func newTestStore(t *testing.T) *storage.ArtifactStore {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
	store, err := storage.NewArtifactStore(t.TempDir(), sqlite.NewSessionRepository(db), sqlite.NewArtifactRepository(db), log)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func newArtifactMux(store *storage.ArtifactStore) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/artifacts/{category}/{filename}", ServeArtifactHandler(store))
	return mux
}

func TestServeArtifact(t *testing.T) {
	store := newTestStore(t)
	payload := []byte("clip bytes")
	if err := os.WriteFile(store.PathFor(model.CategoryClip, "clip_abc_000030.mp4"), payload, 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/artifacts/clips/clip_abc_000030.mp4", nil)
	newArtifactMux(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != string(payload) {
		t.Errorf("Body mismatch: %q", rec.Body.String())
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Errorf("Expected byte-range support for video seeking")
	}
}

func TestServeArtifact_RangeRequest(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.PathFor(model.CategoryClip, "clip.mp4"), []byte("0123456789"), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/artifacts/clips/clip.mp4", nil)
	req.Header.Set("Range", "bytes=2-5")
	newArtifactMux(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("Expected 206, got %d", rec.Code)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("Expected range body 2345, got %q", rec.Body.String())
	}
}

func TestServeArtifact_NotFound(t *testing.T) {
	store := newTestStore(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/artifacts/clips/missing.mp4", nil)
	newArtifactMux(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing file, got %d", rec.Code)
	}
}

func TestServeArtifact_UnknownCategory(t *testing.T) {
	store := newTestStore(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/artifacts/secrets/passwd", nil)
	newArtifactMux(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown category, got %d", rec.Code)
	}
}
