package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anomserver/internal/model"
)

// ========================================
// Summarization Client Tests
// ========================================

var testEvents = []model.Event{
	{Start: 30, End: 59, Peak: 0.93},
	{Start: 300, End: 420, Peak: 0.81},
}

func TestClient_Summarize(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Two brief altercations."}},
				}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-2.0-flash", "test-key", 5*time.Second)
	text, err := client.Summarize(context.Background(), testEvents, 30.0)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if text != "Two brief altercations." {
		t.Errorf("Unexpected summary text: %q", text)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("Unexpected request path: %s", gotPath)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("Unexpected request shape: %+v", gotBody)
	}
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "00:00:01 - 00:00:01") {
		t.Errorf("Prompt must carry event timecodes, got: %s", prompt)
	}
}

func TestClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-2.0-flash", "test-key", 5*time.Second)
	_, err := client.Summarize(context.Background(), testEvents, 30.0)
	if !errors.Is(err, model.ErrSummary) {
		t.Fatalf("Expected ErrSummary, got %v", err)
	}
}

func TestClient_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-2.0-flash", "test-key", 5*time.Second)
	_, err := client.Summarize(context.Background(), testEvents, 30.0)
	if !errors.Is(err, model.ErrSummary) {
		t.Fatalf("Expected ErrSummary, got %v", err)
	}
}

func TestClient_NoEventsSkipsRemoteCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-2.0-flash", "test-key", 5*time.Second)
	text, err := client.Summarize(context.Background(), nil, 30.0)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if text != "No abnormal events were detected." {
		t.Errorf("Unexpected text for zero events: %q", text)
	}
	if called {
		t.Error("No remote call expected when there are no events")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testEvents, 30.0)

	if !strings.Contains(prompt, "1. [00:00:01 - 00:00:01]") {
		t.Errorf("Missing first interval: %s", prompt)
	}
	if !strings.Contains(prompt, "2. [00:00:10 - 00:00:14]") {
		t.Errorf("Missing second interval: %s", prompt)
	}
	if !strings.Contains(prompt, "peak anomaly score 0.93") {
		t.Errorf("Missing peak score: %s", prompt)
	}
}
