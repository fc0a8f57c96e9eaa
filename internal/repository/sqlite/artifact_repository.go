package sqlite

import (
	"database/sql"
	"fmt"

	"anomserver/internal/model"
)

// ArtifactRepository implements repository.ArtifactRepository for SQLite.
type ArtifactRepository struct {
	db *DB
}

// NewArtifactRepository creates a new SQLite artifact repository.
func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Insert adds a new artifact record. The UNIQUE(session_id, category, filename)
// constraint guarantees a name is never reused within a session.
func (r *ArtifactRepository) Insert(a *model.Artifact) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO artifacts (session_id, category, filename, filepath, filesize)
		VALUES (?, ?, ?, ?, ?)
	`, a.SessionID, a.Category, a.Filename, a.FilePath, a.FileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to insert artifact: %w", err)
	}

	return result.LastInsertId()
}

// GetBySession retrieves all artifacts produced by a session, oldest first.
func (r *ArtifactRepository) GetBySession(sessionID string) ([]model.Artifact, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, session_id, category, filename, filepath, filesize, created_at
		FROM artifacts WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// GetBySessionAndCategory retrieves a session's artifacts of one category.
func (r *ArtifactRepository) GetBySessionAndCategory(sessionID, category string) ([]model.Artifact, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, session_id, category, filename, filepath, filesize, created_at
		FROM artifacts WHERE session_id = ? AND category = ? ORDER BY id
	`, sessionID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// Exists reports whether an artifact with the given identity was registered.
func (r *ArtifactRepository) Exists(sessionID, category, filename string) (bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	err := r.db.Conn().QueryRow(`
		SELECT COUNT(*) FROM artifacts
		WHERE session_id = ? AND category = ? AND filename = ?
	`, sessionID, category, filename).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check artifact: %w", err)
	}
	return count > 0, nil
}

func scanArtifacts(rows *sql.Rows) ([]model.Artifact, error) {
	var artifacts []model.Artifact
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Category, &a.Filename, &a.FilePath, &a.FileSize, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}
