package dto

// SessionResult is the response payload for a processed video. It always
// carries at least the original reference; an empty Clips list is the valid
// "no abnormal events detected" outcome.
type SessionResult struct {
	SessionID        string   `json:"session_id"`
	Original         string   `json:"original"`
	Clips            []string `json:"clips"`
	GroundTruthFiles []string `json:"ground_truth_files"`
	Summary          string   `json:"summary"`
}

// Progress is broadcast to websocket viewers while a session is processed.
type Progress struct {
	SessionID string `json:"session_id"`
	Stage     string `json:"stage"`
	Frame     int    `json:"frame"`
	Total     int    `json:"total"`
}
