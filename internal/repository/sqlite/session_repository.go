package sqlite

import (
	"database/sql"
	"fmt"

	"anomserver/internal/model"
)

// SessionRepository implements repository.SessionRepository for SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert adds a new session record to the database.
func (r *SessionRepository) Insert(s *model.Session) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO sessions (id, original, status, summary)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.Original, s.Status, s.Summary)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its ID. Returns nil when not found.
func (r *SessionRepository) GetByID(id string) (*model.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var s model.Session
	err := r.db.Conn().QueryRow(`
		SELECT id, original, status, summary, created_at
		FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.Original, &s.Status, &s.Summary, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// UpdateStatus sets the session status.
func (r *SessionRepository) UpdateStatus(id, status string) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`UPDATE sessions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// UpdateSummary stores the summarization text on the session.
func (r *SessionRepository) UpdateSummary(id, summary string) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`UPDATE sessions SET summary = ? WHERE id = ?`, summary, id)
	if err != nil {
		return fmt.Errorf("failed to update session summary: %w", err)
	}
	return nil
}
