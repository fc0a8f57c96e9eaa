package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"anomserver/internal/logger"
	"anomserver/internal/model"
	"anomserver/internal/services/scoring"
)

// PlaceholderSummary is stored when the summarization service fails; the
// anomaly-detection result stays usable without it.
const PlaceholderSummary = "Summary unavailable."

// Config holds the per-pipeline tuning knobs.
type Config struct {
	Workers        int
	ReorderBuffer  int
	PaddingSeconds float64
	Scorer         scoring.ScorerConfig
	Segmenter      scoring.SegmenterConfig
}

// Result is everything one processed video produced.
type Result struct {
	Events           []model.Event
	Scores           []float64
	Clips            []string
	GroundTruthFiles []string
	Summary          string
	FPS              float64
}

// Pipeline runs the full anomaly analysis for one video: concurrent
// detection and motion estimation, ordered scoring and segmentation,
// clip export, optional ground-truth plot, and summarization.
type Pipeline struct {
	opener     SourceOpener
	detectors  []Detector // one per worker, models loaded separately
	motion     MotionEstimator
	annotators AnnotatorFactory
	exporter   ClipExporter
	gt         GroundTruthRenderer
	summarizer Summarizer
	sink       ArtifactSink
	logger     *logger.Logger
	cfg        Config
}

// New wires a pipeline. len(detectors) bounds the worker pool.
func New(
	opener SourceOpener,
	detectors []Detector,
	motion MotionEstimator,
	annotators AnnotatorFactory,
	exporter ClipExporter,
	gt GroundTruthRenderer,
	summarizer Summarizer,
	sink ArtifactSink,
	cfg Config,
	log *logger.Logger,
) *Pipeline {
	if cfg.Workers <= 0 || cfg.Workers > len(detectors) {
		cfg.Workers = len(detectors)
	}
	if cfg.ReorderBuffer < 1 {
		cfg.ReorderBuffer = 2 * cfg.Workers
	}
	return &Pipeline{
		opener:     opener,
		detectors:  detectors,
		motion:     motion,
		annotators: annotators,
		exporter:   exporter,
		gt:         gt,
		summarizer: summarizer,
		sink:       sink,
		logger:     log,
		cfg:        cfg,
	}
}

// workerTask is one frame pair queued for inference. prev is nil for frame 0.
type workerTask struct {
	frame *Frame
	prev  []byte
}

// Process analyzes one video and registers every produced artifact under the
// session. Only a source decode failure is fatal; frame, event and summary
// failures are contained at their own scope, so a session that passed intake
// always returns a result.
func (p *Pipeline) Process(ctx context.Context, session *model.Session, videoPath string, progress ProgressFunc) (*Result, error) {
	src, err := p.opener.Open(videoPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	fps := src.FPS()
	if fps <= 0 {
		fps = 30.0
	}
	total := src.Total()
	key := session.ShortID()

	annotatedName := fmt.Sprintf("processed_%s.mp4", key)
	annotatedPath := p.sink.PathFor(model.CategoryProcessed, annotatedName)
	annotator, annErr := p.annotators.Create(annotatedPath, fps)
	if annErr != nil {
		// Without the annotated video no clips can be cut, but scoring and
		// segmentation still run to completion.
		p.logger.Error("Session %s: annotated video unavailable: %v", session.ID, annErr)
		annotator = nil
	}

	scores, events, lastIndex := p.analyze(ctx, session.ID, src, annotator, fps, total, progress)

	if annotator != nil {
		if err := annotator.Close(); err != nil {
			p.logger.Error("Session %s: closing annotated video: %v", session.ID, err)
			annotator = nil
		}
	}

	result := &Result{
		Events: events,
		Scores: scores,
		FPS:    fps,
	}

	if annotator != nil {
		result.Clips = p.exportClips(session, annotatedPath, events, lastIndex, fps, progress)
	}
	result.GroundTruthFiles = p.renderGroundTruth(session, scores)
	result.Summary = p.summarize(ctx, session, events, fps)

	return result, nil
}

// analyze runs the concurrent inference stage and the ordered
// score/segment/annotate consumer. Returns the per-frame score series, the
// final event list, and the last frame index seen.
func (p *Pipeline) analyze(ctx context.Context, sessionID string, src FrameSource, annotator Annotator, fps float64, total int, progress ProgressFunc) ([]float64, []model.Event, int) {
	tasks := make(chan workerTask, p.cfg.Workers*2)
	buffer := newReorderBuffer(p.cfg.ReorderBuffer)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go p.inferenceWorker(i, tasks, buffer, &wg)
	}

	// Producer: decode frames in order and pair each with its predecessor.
	go func() {
		defer close(tasks)
		var prev []byte
		for {
			select {
			case <-ctx.Done():
				p.logger.Warning("Session %s: deadline reached, finalizing early", sessionID)
				return
			default:
			}

			frame, err := src.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				p.logger.Error("Session %s: frame read failed, stopping stream: %v", sessionID, err)
				return
			}
			tasks <- workerTask{frame: frame, prev: prev}
			prev = frame.Data
		}
	}()

	go func() {
		wg.Wait()
		buffer.Close()
	}()

	scorer := scoring.NewScorer(p.cfg.Scorer)
	segmenter := scoring.NewSegmenter(p.cfg.Segmenter)

	var scores []float64
	lastIndex := -1
	var first *frameResult // frame 0 held back until frame 1's score exists

	consume := func(r *frameResult, score float64) {
		segmenter.Push(r.frame.Index, score)
		scores = append(scores, score)
		lastIndex = r.frame.Index
		if annotator != nil {
			abnormal := score >= p.cfg.Segmenter.THigh
			if err := annotator.Write(r.frame.Data, r.frame.Timestamp, r.detections, abnormal); err != nil {
				p.logger.Error("Session %s: annotating frame %d: %v", sessionID, r.frame.Index, err)
			}
		}
		if progress != nil {
			progress("analyzing", r.frame.Index+1, total)
		}
	}

	for {
		r := buffer.Next()
		if r == nil {
			break
		}
		if r.frame.Index == 0 {
			// Frame 0 has no preceding frame for motion; its score duplicates
			// frame 1's once that is known.
			first = r
			continue
		}
		score := scorer.Score(r.motion, r.detections)
		if first != nil {
			consume(first, score)
			first = nil
		}
		consume(r, score)
	}
	if first != nil {
		// Single-frame stream: no motion signal at all, score zero.
		consume(first, 0)
	}

	return scores, segmenter.Finish(), lastIndex
}

// inferenceWorker runs detection and motion estimation for queued frames.
// A single frame's inference failure degrades to an empty result rather
// than aborting the video.
func (p *Pipeline) inferenceWorker(id int, tasks <-chan workerTask, buffer *reorderBuffer, wg *sync.WaitGroup) {
	defer wg.Done()
	detector := p.detectors[id]

	for task := range tasks {
		result := &frameResult{frame: task.frame}

		dets, err := detector.Detect(task.frame.Data)
		if err != nil {
			p.logger.Warning("Frame %d: %v: %v", task.frame.Index, model.ErrInference, err)
		} else {
			result.detections = dets
		}

		if task.prev != nil {
			motion, err := p.motion.Estimate(task.prev, task.frame.Data, result.detections)
			if err != nil {
				p.logger.Warning("Frame %d: %v: %v", task.frame.Index, model.ErrInference, err)
			} else {
				result.motion = motion
			}
		}

		buffer.Put(result)
	}
}

// exportClips cuts one padded clip per event from the annotated video and a
// combined reel when any clip succeeded. An encode failure drops only that
// event's clip.
func (p *Pipeline) exportClips(session *model.Session, annotatedPath string, events []model.Event, lastIndex int, fps float64, progress ProgressFunc) []string {
	padding := int(p.cfg.PaddingSeconds * fps)
	var clips []string

	for i, ev := range events {
		start := ev.Start - padding
		if start < 0 {
			start = 0
		}
		end := ev.End + padding
		if end > lastIndex {
			end = lastIndex
		}

		name := fmt.Sprintf("clip_%s_%06d.mp4", session.ShortID(), ev.Start)
		dst := p.sink.PathFor(model.CategoryClip, name)
		if err := p.exporter.Export(annotatedPath, start, end, dst); err != nil {
			p.logger.Error("Session %s: %v for event [%d,%d]: %v", session.ID, model.ErrExport, ev.Start, ev.End, err)
			continue
		}
		if _, err := p.sink.Register(session.ID, model.CategoryClip, name); err != nil {
			p.logger.Error("Session %s: registering clip %s: %v", session.ID, name, err)
			continue
		}
		clips = append(clips, name)
		if progress != nil {
			progress("exporting", i+1, len(events))
		}
	}

	if len(clips) > 0 {
		name := fmt.Sprintf("combined_%s.mp4", session.ShortID())
		dst := p.sink.PathFor(model.CategoryCombined, name)
		if err := p.exporter.Stitch(annotatedPath, events, padding, lastIndex, fps, dst); err != nil {
			p.logger.Error("Session %s: stitching combined video: %v", session.ID, err)
		} else if _, err := p.sink.Register(session.ID, model.CategoryCombined, name); err != nil {
			p.logger.Error("Session %s: registering combined video: %v", session.ID, err)
		}
	}

	return clips
}

// renderGroundTruth plots predicted scores against a labeled reference when
// one exists for this input. Absence of a reference skips the stage.
func (p *Pipeline) renderGroundTruth(session *model.Session, scores []float64) []string {
	key := videoKey(session.Original)

	labels, err := p.gt.Lookup(key)
	if err != nil {
		p.logger.Warning("Session %s: ground truth lookup: %v", session.ID, err)
		return nil
	}
	if labels == nil {
		return nil
	}

	name := fmt.Sprintf("%s_groundtruth.png", key)
	dst := p.sink.PathFor(model.CategoryGroundTruth, name)
	if err := p.gt.Render(key, scores, labels, dst); err != nil {
		p.logger.Error("Session %s: rendering ground truth plot: %v", session.ID, err)
		return nil
	}
	if _, err := p.sink.Register(session.ID, model.CategoryGroundTruth, name); err != nil {
		p.logger.Error("Session %s: registering ground truth plot: %v", session.ID, err)
		return nil
	}
	return []string{name}
}

// summarize requests the plain-language event summary and stores it as an
// artifact. Any failure degrades to the placeholder text.
func (p *Pipeline) summarize(ctx context.Context, session *model.Session, events []model.Event, fps float64) string {
	text, err := p.summarizer.Summarize(ctx, events, fps)
	if err != nil {
		p.logger.Warning("Session %s: %v: %v", session.ID, model.ErrSummary, err)
		text = PlaceholderSummary
	}

	name := fmt.Sprintf("summary_%s.json", session.ShortID())
	dst := p.sink.PathFor(model.CategorySummary, name)
	payload, _ := json.MarshalIndent(map[string]string{"response": text}, "", "  ")
	if err := os.WriteFile(dst, payload, 0644); err != nil {
		p.logger.Error("Session %s: writing summary artifact: %v", session.ID, err)
		return text
	}
	if _, err := p.sink.Register(session.ID, model.CategorySummary, name); err != nil {
		p.logger.Error("Session %s: registering summary artifact: %v", session.ID, err)
	}
	return text
}

// videoKey strips the extension from the uploaded filename; ground-truth
// references are looked up by this key.
func videoKey(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
