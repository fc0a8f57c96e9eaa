package scoring

import (
	"testing"

	"anomserver/internal/model"
)

// ========================================
// Anomaly Scoring Tests
// ========================================

func defaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		MotionFloor:    2.0,
		BaselineWindow: 90,
		DensityNorm:    3.0,
		PresenceFloor:  0.4,
		TLow:           0.3,
	}
}

func person(confidence float64) model.Detection {
	return model.Detection{Label: "person", Confidence: confidence, Width: 50, Height: 100}
}

func TestScorer_ZeroMotionScoresZero(t *testing.T) {
	s := NewScorer(defaultScorerConfig())

	score := s.Score(model.MotionStats{}, nil)
	if score != 0 {
		t.Errorf("Zero motion must score 0, got %f", score)
	}

	score = s.Score(model.MotionStats{}, []model.Detection{person(0.9)})
	if score != 0 {
		t.Errorf("Zero motion must score 0 even with persons present, got %f", score)
	}
}

func TestScorer_GlobalFallbackWhenNoPersons(t *testing.T) {
	s := NewScorer(defaultScorerConfig())

	// Persons == 0: the global field drives the score, PersonMean is ignored.
	withGlobal := s.Score(model.MotionStats{GlobalMean: 2.0, PersonMean: 100.0, Persons: 0}, nil)
	expected := 1.0 * 0.4 // saturated motion, no presence
	if withGlobal != expected {
		t.Errorf("Expected score %f from global motion, got %f", expected, withGlobal)
	}
}

func TestScorer_PersonRegionsDriveScore(t *testing.T) {
	s := NewScorer(defaultScorerConfig())

	stats := model.MotionStats{GlobalMean: 0.1, PersonMean: 100.0, Persons: 1}
	score := s.Score(stats, []model.Detection{person(3.0)})
	if score != 1.0 {
		t.Errorf("Saturated person motion with full density must score 1.0, got %f", score)
	}
}

func TestScorer_BoundedOutput(t *testing.T) {
	s := NewScorer(defaultScorerConfig())

	tests := []struct {
		stats model.Detection
		mag   float64
		count int
	}{
		{person(0.99), 0, 0},
		{person(0.99), 1e6, 10},
		{person(0.5), 2.0, 1},
		{person(0.01), 0.001, 3},
	}

	for _, tt := range tests {
		dets := make([]model.Detection, tt.count)
		for i := range dets {
			dets[i] = tt.stats
		}
		score := s.Score(model.MotionStats{GlobalMean: tt.mag, PersonMean: tt.mag, Persons: tt.count}, dets)
		if score < 0 || score > 1 {
			t.Errorf("Score out of [0,1]: %f (mag=%f, persons=%d)", score, tt.mag, tt.count)
		}
	}
}

func TestScorer_DensityIncreasesScore(t *testing.T) {
	stats := model.MotionStats{GlobalMean: 2.0, PersonMean: 2.0, Persons: 1}

	one := NewScorer(defaultScorerConfig()).Score(stats, []model.Detection{person(0.6)})
	three := NewScorer(defaultScorerConfig()).Score(stats, []model.Detection{person(0.6), person(0.6), person(0.6)})

	if three <= one {
		t.Errorf("More detected persons at equal motion must raise the score: 1 person %f, 3 persons %f", one, three)
	}
}

func TestScorer_Deterministic(t *testing.T) {
	sequence := []model.MotionStats{
		{GlobalMean: 0.1},
		{GlobalMean: 0.2},
		{GlobalMean: 5.0, PersonMean: 6.0, Persons: 2},
		{GlobalMean: 0.15},
		{GlobalMean: 4.0, PersonMean: 4.5, Persons: 1},
	}
	dets := [][]model.Detection{
		nil,
		nil,
		{person(0.8), person(0.7)},
		nil,
		{person(0.9)},
	}

	run := func() []float64 {
		s := NewScorer(defaultScorerConfig())
		var scores []float64
		for i, stats := range sequence {
			scores = append(scores, s.Score(stats, dets[i]))
		}
		return scores
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Scores must be deterministic: run 1 %v, run 2 %v", first, second)
		}
	}
}

func TestScorer_CalmBaselineRaisesReference(t *testing.T) {
	s := NewScorer(defaultScorerConfig())

	// A busy but calm scene: fluctuating magnitudes below the noise band
	// push the baseline above the configured floor.
	for i := 0; i < 90; i++ {
		mag := 0.5
		if i%2 == 0 {
			mag = 1.45
		}
		s.Score(model.MotionStats{GlobalMean: mag}, nil)
	}

	adapted := s.Score(model.MotionStats{GlobalMean: 2.0}, nil)
	fresh := NewScorer(defaultScorerConfig()).Score(model.MotionStats{GlobalMean: 2.0}, nil)

	if adapted >= fresh {
		t.Errorf("An adapted baseline must score the same motion lower: adapted %f, fresh %f", adapted, fresh)
	}
}
