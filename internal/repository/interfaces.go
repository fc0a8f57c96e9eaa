package repository

import "anomserver/internal/model"

// SessionRepository defines the interface for session data operations.
type SessionRepository interface {
	Insert(s *model.Session) error
	GetByID(id string) (*model.Session, error)
	UpdateStatus(id, status string) error
	UpdateSummary(id, summary string) error
}

// ArtifactRepository defines the interface for artifact data operations.
type ArtifactRepository interface {
	Insert(a *model.Artifact) (int64, error)
	GetBySession(sessionID string) ([]model.Artifact, error)
	GetBySessionAndCategory(sessionID, category string) ([]model.Artifact, error)
	Exists(sessionID, category, filename string) (bool, error)
}
