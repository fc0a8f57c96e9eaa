package model

import "time"

// Artifact categories. Category + filename identify an artifact within a session.
const (
	CategoryOriginal    = "originals"
	CategoryClip        = "clips"
	CategoryGroundTruth = "groundtruth"
	CategorySummary     = "summaries"
	CategoryCombined    = "combined"
	CategoryProcessed   = "processed"
)

// Session statuses.
const (
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Session represents one video-processing request and owns the artifacts
// it produced.
type Session struct {
	ID        string    `json:"id"`
	Original  string    `json:"original"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortID returns the first 8 characters of the session UUID, used in
// artifact filenames.
func (s *Session) ShortID() string {
	if len(s.ID) < 8 {
		return s.ID
	}
	return s.ID[:8]
}

// Artifact is a named output file (clip, plot, summary) addressable by
// (session id, category, filename). Never mutated after creation.
type Artifact struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Category  string    `json:"category"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"filepath"`
	FileSize  int64     `json:"filesize"`
	CreatedAt time.Time `json:"created_at"`
}
