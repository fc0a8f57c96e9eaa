package services

import (
	"context"
	"io"
	"time"

	"anomserver/internal/dto"
	"anomserver/internal/logger"
	"anomserver/internal/model"
	"anomserver/internal/repository"
	"anomserver/internal/services/pipeline"
	"anomserver/internal/services/storage"
	"anomserver/internal/services/websocket"
)

// Processor coordinates one video upload end to end: intake, analysis,
// artifact registration and session bookkeeping.
type Processor struct {
	store    *storage.ArtifactStore
	pipeline *pipeline.Pipeline
	hub      *websocket.HubService
	sessions repository.SessionRepository
	logger   *logger.Logger
	timeout  time.Duration
}

// NewProcessor wires the processing coordinator. A zero timeout disables the
// per-session deadline.
func NewProcessor(
	store *storage.ArtifactStore,
	pl *pipeline.Pipeline,
	hub *websocket.HubService,
	sessions repository.SessionRepository,
	log *logger.Logger,
	timeout time.Duration,
) *Processor {
	return &Processor{
		store:    store,
		pipeline: pl,
		hub:      hub,
		sessions: sessions,
		logger:   log,
		timeout:  timeout,
	}
}

// Process ingests one uploaded video and runs the full analysis. The upload
// is processed synchronously; the returned result is final.
func (p *Processor) Process(filename string, upload io.Reader) (*dto.SessionResult, error) {
	session, err := p.store.CreateSession(filename)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Session %s: processing %s", session.ID, filename)

	videoPath, err := p.store.SaveOriginal(session, upload)
	if err != nil {
		p.fail(session.ID, err)
		return nil, err
	}

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	progress := func(stage string, frame, total int) {
		p.hub.BroadcastProgress(dto.Progress{
			SessionID: session.ID,
			Stage:     stage,
			Frame:     frame,
			Total:     total,
		})
	}

	result, err := p.pipeline.Process(ctx, session, videoPath, progress)
	if err != nil {
		p.fail(session.ID, err)
		return nil, err
	}

	if err := p.sessions.UpdateSummary(session.ID, result.Summary); err != nil {
		p.logger.Error("Session %s: storing summary: %v", session.ID, err)
	}
	if err := p.sessions.UpdateStatus(session.ID, model.StatusDone); err != nil {
		p.logger.Error("Session %s: updating status: %v", session.ID, err)
	}
	p.logger.Info("Session %s: done, %d events, %d clips", session.ID, len(result.Events), len(result.Clips))

	return p.store.Result(session.ID)
}

// Result returns the stored outcome of an earlier session, nil when unknown.
func (p *Processor) Result(sessionID string) (*dto.SessionResult, error) {
	return p.store.Result(sessionID)
}

func (p *Processor) fail(sessionID string, cause error) {
	p.logger.Error("Session %s: failed: %v", sessionID, cause)
	if err := p.sessions.UpdateStatus(sessionID, model.StatusFailed); err != nil {
		p.logger.Error("Session %s: updating status: %v", sessionID, err)
	}
}
