package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"anomserver/internal/config"
	"anomserver/internal/logger"
	"anomserver/internal/repository/sqlite"
	"anomserver/internal/routes"
	"anomserver/internal/services"
	"anomserver/internal/services/ai"
	"anomserver/internal/services/groundtruth"
	"anomserver/internal/services/pipeline"
	"anomserver/internal/services/scoring"
	"anomserver/internal/services/storage"
	"anomserver/internal/services/summary"
	"anomserver/internal/services/video"
	"anomserver/internal/services/websocket"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	store      *storage.ArtifactStore
	hubService *websocket.HubService
	processor  *services.Processor
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sessions := sqlite.NewSessionRepository(db)
	artifacts := sqlite.NewArtifactRepository(db)

	store, err := storage.NewArtifactStore(cfg.DataDirectory, sessions, artifacts, log)
	if err != nil {
		return nil, err
	}

	// One detector per worker: the loaded network is not safe to share.
	detectors := make([]pipeline.Detector, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		d, err := ai.NewDetector(cfg.ModelPath, cfg.ModelConfig, cfg.Confidence, log)
		if err != nil {
			return nil, fmt.Errorf("loading detector %d: %w", i, err)
		}
		detectors = append(detectors, d)
	}

	hub := websocket.NewHubService(log)

	pl := pipeline.New(
		video.Opener{Width: cfg.FrameWidth, Height: cfg.FrameHeight},
		detectors,
		ai.FlowEstimator{},
		video.AnnotatorFactory{Width: cfg.FrameWidth, Height: cfg.FrameHeight},
		video.Exporter{Width: cfg.FrameWidth, Height: cfg.FrameHeight},
		groundtruth.Renderer{DatasetDir: cfg.DatasetDir},
		summary.NewClient(cfg.SummaryURL, cfg.SummaryModel, cfg.SummaryKey, time.Duration(cfg.SummaryTimeout)*time.Second),
		store,
		pipeline.Config{
			Workers:        cfg.Workers,
			ReorderBuffer:  cfg.ReorderBuffer,
			PaddingSeconds: cfg.PaddingSeconds,
			Scorer: scoring.ScorerConfig{
				MotionFloor:    cfg.MotionFloor,
				BaselineWindow: cfg.BaselineWindow,
				DensityNorm:    cfg.DensityNorm,
				PresenceFloor:  cfg.PresenceFloor,
				TLow:           cfg.TLow,
			},
			Segmenter: scoring.SegmenterConfig{
				THigh:          cfg.THigh,
				TLow:           cfg.TLow,
				MinEventFrames: cfg.MinEventFrames,
				Cooldown:       cfg.Cooldown,
			},
		},
		log,
	)

	processor := services.NewProcessor(store, pl, hub, sessions, log, time.Duration(cfg.SessionTimeout)*time.Second)

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		store:      store,
		hubService: hub,
		processor:  processor,
	}, nil
}

func (a *App) Run() error {
	go a.hubService.Run()

	router := routes.SetupRoutes(a.processor, a.store, a.hubService, a.config, a.logger)

	fmt.Printf("🚀 Video Anomaly Server\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("📁 Data: %s\n", a.config.DataDirectory)
	fmt.Printf("🤖 AI Model: %s\n", a.config.ModelPath)
	fmt.Printf("👷 Workers: %d\n", a.config.Workers)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), router)
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.db.Close()
}
