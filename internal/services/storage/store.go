package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"anomserver/internal/dto"
	"anomserver/internal/logger"
	"anomserver/internal/model"
	"anomserver/internal/repository"
)

// categories enumerates the artifact subdirectories kept under the data root.
var categories = []string{
	model.CategoryOriginal,
	model.CategoryClip,
	model.CategoryGroundTruth,
	model.CategorySummary,
	model.CategoryCombined,
	model.CategoryProcessed,
}

// ArtifactStore persists uploaded videos and produced artifacts on disk and
// records them in the database. Paths are laid out as <base>/<category>/<filename>.
type ArtifactStore struct {
	base      string
	sessions  repository.SessionRepository
	artifacts repository.ArtifactRepository
	logger    *logger.Logger
}

// NewArtifactStore creates the store and its category directories.
func NewArtifactStore(base string, sessions repository.SessionRepository, artifacts repository.ArtifactRepository, log *logger.Logger) (*ArtifactStore, error) {
	s := &ArtifactStore{
		base:      base,
		sessions:  sessions,
		artifacts: artifacts,
		logger:    log,
	}
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ArtifactStore) ensureDirs() error {
	for _, category := range categories {
		dir := filepath.Join(s.base, category)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating artifact directory %s: %w", dir, err)
		}
	}
	return nil
}

// CreateSession records a new session for an uploaded video.
func (s *ArtifactStore) CreateSession(originalName string) (*model.Session, error) {
	session := &model.Session{
		ID:        uuid.New().String(),
		Original:  originalName,
		Status:    model.StatusProcessing,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Insert(session); err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	s.logger.Info("Session %s created for %s", session.ID, originalName)
	return session, nil
}

// SaveOriginal streams the uploaded video to the originals directory and
// registers it. The stored name is prefixed with the short session id so
// repeated uploads of the same file never collide.
func (s *ArtifactStore) SaveOriginal(session *model.Session, r io.Reader) (string, error) {
	stored := fmt.Sprintf("%s_%s", session.ShortID(), session.Original)
	path := s.PathFor(model.CategoryOriginal, stored)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating original file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing original file: %w", err)
	}

	if _, err := s.Register(session.ID, model.CategoryOriginal, stored); err != nil {
		return "", err
	}
	return path, nil
}

// PathFor resolves the on-disk location of an artifact.
func (s *ArtifactStore) PathFor(category, filename string) string {
	return filepath.Join(s.base, category, filename)
}

// Register records an artifact that already exists on disk.
func (s *ArtifactStore) Register(sessionID, category, filename string) (*model.Artifact, error) {
	path := s.PathFor(category, filename)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("artifact %s/%s missing on disk: %w", category, filename, err)
	}

	artifact := &model.Artifact{
		SessionID: sessionID,
		Category:  category,
		Filename:  filename,
		FilePath:  path,
		FileSize:  info.Size(),
		CreatedAt: time.Now(),
	}
	id, err := s.artifacts.Insert(artifact)
	if err != nil {
		return nil, fmt.Errorf("registering artifact %s/%s: %w", category, filename, err)
	}
	artifact.ID = id
	return artifact, nil
}

// Result assembles the response payload for a session from its recorded
// artifacts.
func (s *ArtifactStore) Result(sessionID string) (*dto.SessionResult, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	result := &dto.SessionResult{
		SessionID: session.ID,
		Original:  session.Original,
		Clips:     []string{},
		Summary:   session.Summary,
	}

	clips, err := s.artifacts.GetBySessionAndCategory(sessionID, model.CategoryClip)
	if err != nil {
		return nil, err
	}
	for _, a := range clips {
		result.Clips = append(result.Clips, a.Filename)
	}

	plots, err := s.artifacts.GetBySessionAndCategory(sessionID, model.CategoryGroundTruth)
	if err != nil {
		return nil, err
	}
	for _, a := range plots {
		result.GroundTruthFiles = append(result.GroundTruthFiles, a.Filename)
	}

	return result, nil
}
