package pipeline

import (
	"context"

	"anomserver/internal/model"
)

// Frame is one decoded raster frame, JPEG-encoded, owned by the stage
// currently holding it.
type Frame struct {
	Index     int
	Timestamp float64 // seconds, derived from index and source frame rate
	Data      []byte
}

// FrameSource decodes a video container into an ordered frame sequence.
// Indices are monotonic from 0; Next returns io.EOF at end of stream.
type FrameSource interface {
	Next() (*Frame, error)
	FPS() float64
	Total() int // total frame count from container metadata, 0 if unknown
	Close() error
}

// SourceOpener opens a video file as a FrameSource. Open fails with an
// error wrapping model.ErrDecode when the container is unreadable.
type SourceOpener interface {
	Open(path string) (FrameSource, error)
}

// Detector returns person bounding boxes for a single frame. Implementations
// hold a loaded model that is read-only during inference; one instance is
// created per worker.
type Detector interface {
	Detect(frame []byte) ([]model.Detection, error)
}

// MotionEstimator reduces the optical flow between two consecutive frames
// to aggregate magnitude statistics. Must be safe for concurrent use.
type MotionEstimator interface {
	Estimate(prev, cur []byte, boxes []model.Detection) (model.MotionStats, error)
}

// Annotator writes the full annotated video: detection boxes and a burned-in
// timestamp on every frame, red boxes while an event is active.
type Annotator interface {
	Write(frame []byte, timestamp float64, dets []model.Detection, abnormal bool) error
	Close() error
}

// AnnotatorFactory creates an Annotator writing to the given path.
type AnnotatorFactory interface {
	Create(path string, fps float64) (Annotator, error)
}

// ClipExporter re-encodes frame ranges of the annotated video into
// standalone clips, and stitches clips with timestamp title cards into one
// combined video.
type ClipExporter interface {
	Export(src string, startFrame, endFrame int, dst string) error
	Stitch(src string, events []model.Event, padding int, lastFrame int, fps float64, dst string) error
}

// GroundTruthRenderer plots the predicted score timeline against a labeled
// reference, when one exists for the input.
type GroundTruthRenderer interface {
	// Lookup returns the per-frame label timeline for a video key, or
	// (nil, nil) when no reference exists — absence is not an error.
	Lookup(key string) ([]float64, error)
	Render(key string, scores, labels []float64, dst string) error
}

// Summarizer turns the final event list into a plain-text description via
// an external language model.
type Summarizer interface {
	Summarize(ctx context.Context, events []model.Event, fps float64) (string, error)
}

// ArtifactSink resolves artifact paths and records produced artifacts.
// Filenames are unique within (session, category) and never reused.
type ArtifactSink interface {
	PathFor(category, filename string) string
	Register(sessionID, category, filename string) (*model.Artifact, error)
}

// ProgressFunc receives per-stage progress while a session is processed.
type ProgressFunc func(stage string, frame, total int)
