package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DataDirectory  string // root for originals/, clips/, groundtruth/, summaries/, processed/
	DatasetDir     string // labeled reference timelines, <key>.json per video
	DatabasePath   string
	LogDirectory   string
	ModelPath      string
	ModelConfig    string
	FrameWidth     int // frames are resized to this before inference and export
	FrameHeight    int
	Confidence     float64 // detection confidence threshold
	Workers        int     // inference worker pool size
	ReorderBuffer  int     // max out-of-order frame results held back
	THigh          float64 // score threshold opening an event
	TLow           float64 // score threshold (with cooldown) closing an event
	MinEventFrames int     // events shorter than this are noise
	Cooldown       int     // frames below TLow required to close an event
	PaddingSeconds float64 // clip lead-in/lead-out margin
	MotionFloor    float64 // minimum motion reference (pixels of displacement)
	BaselineWindow int     // calm frames kept for the rolling motion baseline
	DensityNorm    float64 // summed confidence treated as "full" presence
	PresenceFloor  float64 // score weight when no persons are detected
	SummaryURL     string
	SummaryModel   string
	SummaryKey     string
	SummaryTimeout int // seconds
	SessionTimeout int // seconds; 0 disables the per-session deadline
}

func Load() *Config {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnvAsInt("PORT", 8080),
		DataDirectory:  getEnv("DATA_DIR", filepath.Join(".", "data")),
		DatasetDir:     getEnv("DATASET_DIR", filepath.Join(".", "datasets", "labels")),
		DatabasePath:   getEnv("DB_PATH", filepath.Join(".", "data", "sessions.db")),
		LogDirectory:   getEnv("LOG_DIR", filepath.Join(".", "logs")),
		ModelPath:      getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ModelConfig:    getEnv("MODEL_CONFIG", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		FrameWidth:     getEnvAsInt("FRAME_WIDTH", 1280),
		FrameHeight:    getEnvAsInt("FRAME_HEIGHT", 720),
		Confidence:     getEnvAsFloat("CONFIDENCE", 0.5),
		Workers:        getEnvAsInt("WORKERS", 3),
		ReorderBuffer:  getEnvAsInt("REORDER_BUFFER", 16),
		THigh:          getEnvAsFloat("SCORE_T_HIGH", 0.7),
		TLow:           getEnvAsFloat("SCORE_T_LOW", 0.3),
		MinEventFrames: getEnvAsInt("MIN_EVENT_FRAMES", 5),
		Cooldown:       getEnvAsInt("COOLDOWN_FRAMES", 3),
		PaddingSeconds: getEnvAsFloat("CLIP_PADDING_S", 5.0),
		MotionFloor:    getEnvAsFloat("MOTION_FLOOR", 2.0),
		BaselineWindow: getEnvAsInt("BASELINE_WINDOW", 90),
		DensityNorm:    getEnvAsFloat("DENSITY_NORM", 3.0),
		PresenceFloor:  getEnvAsFloat("PRESENCE_FLOOR", 0.4),
		SummaryURL:     getEnv("SUMMARY_URL", "https://generativelanguage.googleapis.com"),
		SummaryModel:   getEnv("SUMMARY_MODEL", "gemini-2.0-flash"),
		SummaryKey:     getEnv("SUMMARY_API_KEY", ""),
		SummaryTimeout: getEnvAsInt("SUMMARY_TIMEOUT", 60),
		SessionTimeout: getEnvAsInt("SESSION_TIMEOUT", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
