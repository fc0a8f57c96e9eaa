package scoring

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"anomserver/internal/model"
)

// ScorerConfig holds the calibration constants for the fusion formula.
type ScorerConfig struct {
	MotionFloor    float64 // minimum motion reference, keeps near-static scenes from saturating
	BaselineWindow int     // number of calm-frame magnitudes kept as the rolling baseline
	DensityNorm    float64 // summed detection confidence treated as "full" presence
	PresenceFloor  float64 // weight applied when no persons are present, in (0,1]
	TLow           float64 // frames scored below this feed the calm baseline
}

// Scorer fuses a motion-magnitude statistic with a detection-density term
// into one scalar per frame in [0,1]. Motion is normalized against a rolling
// baseline of calm frames so that "fast for this scene" rather than an
// absolute speed drives the score; presence of people scales it up because
// motion co-occurring with person detections is the operative definition of
// abnormal crowd behavior here.
type Scorer struct {
	cfg  ScorerConfig
	calm []float64 // ring of recent calm-frame magnitudes
	pos  int
}

// NewScorer creates a scorer with the given calibration.
func NewScorer(cfg ScorerConfig) *Scorer {
	if cfg.BaselineWindow <= 0 {
		cfg.BaselineWindow = 90
	}
	if cfg.DensityNorm <= 0 {
		cfg.DensityNorm = 3.0
	}
	if cfg.PresenceFloor <= 0 || cfg.PresenceFloor > 1 {
		cfg.PresenceFloor = 0.4
	}
	return &Scorer{
		cfg:  cfg,
		calm: make([]float64, 0, cfg.BaselineWindow),
	}
}

// Score computes the anomaly score for one frame from its motion statistics
// and detections. Scores are deterministic for a given input sequence: the
// rolling baseline only depends on previously scored frames.
func (s *Scorer) Score(motion model.MotionStats, detections []model.Detection) float64 {
	// With people in frame the person-region magnitude is the signal;
	// otherwise fall back to the global field.
	mag := motion.GlobalMean
	if motion.Persons > 0 {
		mag = motion.PersonMean
	}

	norm := mag / s.reference()
	if norm > 1 {
		norm = 1
	}
	if norm < 0 {
		norm = 0
	}

	var density float64
	for _, d := range detections {
		density += d.Confidence
	}
	density /= s.cfg.DensityNorm
	if density > 1 {
		density = 1
	}

	score := norm * (s.cfg.PresenceFloor + (1-s.cfg.PresenceFloor)*density)

	if score < s.cfg.TLow {
		s.observeCalm(mag)
	}

	return score
}

// reference is the magnitude treated as "definitely abnormal": three standard
// deviations above the calm mean, floored by the configured minimum.
func (s *Scorer) reference() float64 {
	ref := s.cfg.MotionFloor
	if ref <= 0 {
		ref = 1
	}
	if len(s.calm) >= 10 {
		mean, std := stat.MeanStdDev(s.calm, nil)
		if r := mean + 3*std; r > ref && !math.IsNaN(r) {
			ref = r
		}
	}
	return ref
}

// observeCalm records a calm-frame magnitude in the rolling window.
func (s *Scorer) observeCalm(mag float64) {
	if len(s.calm) < cap(s.calm) {
		s.calm = append(s.calm, mag)
		return
	}
	s.calm[s.pos] = mag
	s.pos = (s.pos + 1) % len(s.calm)
}
