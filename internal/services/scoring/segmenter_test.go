package scoring

import (
	"testing"

	"anomserver/internal/model"
)

// ========================================
// Event Segmentation Tests
// ========================================

func defaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		THigh:          0.7,
		TLow:           0.3,
		MinEventFrames: 5,
		Cooldown:       3,
	}
}

func runSegmenter(t *testing.T, cfg SegmenterConfig, scores []float64) []model.Event {
	t.Helper()
	sg := NewSegmenter(cfg)
	for i, score := range scores {
		sg.Push(i, score)
	}
	return sg.Finish()
}

func constantScores(value float64, n int) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = value
	}
	return scores
}

func TestSegmenter_CalmAbnormalCalm(t *testing.T) {
	var scores []float64
	scores = append(scores, constantScores(0.1, 30)...)
	scores = append(scores, constantScores(0.9, 30)...)
	scores = append(scores, constantScores(0.1, 30)...)

	events := runSegmenter(t, defaultSegmenterConfig(), scores)

	if len(events) != 1 {
		t.Fatalf("Expected exactly 1 event, got %d: %v", len(events), events)
	}
	ev := events[0]
	if ev.Start != 30 || ev.End != 59 {
		t.Errorf("Expected event [30,59], got [%d,%d]", ev.Start, ev.End)
	}
	if ev.Peak != 0.9 {
		t.Errorf("Expected peak 0.9, got %f", ev.Peak)
	}
}

func TestSegmenter_OscillationBelowTHigh(t *testing.T) {
	scores := make([]float64, 100)
	for i := range scores {
		if i%2 == 0 {
			scores[i] = 0.65
		} else {
			scores[i] = 0.2
		}
	}

	events := runSegmenter(t, defaultSegmenterConfig(), scores)

	if len(events) != 0 {
		t.Errorf("Scores never reaching THigh must produce 0 events, got %d", len(events))
	}
}

func TestSegmenter_MinDurationDiscard(t *testing.T) {
	var scores []float64
	scores = append(scores, constantScores(0.1, 10)...)
	scores = append(scores, constantScores(0.9, 3)...) // 3 frames < MinEventFrames
	scores = append(scores, constantScores(0.1, 10)...)

	events := runSegmenter(t, defaultSegmenterConfig(), scores)

	if len(events) != 0 {
		t.Errorf("Event shorter than minimum duration must be discarded, got %v", events)
	}
}

func TestSegmenter_OpenEventClosedAtEnd(t *testing.T) {
	var scores []float64
	scores = append(scores, constantScores(0.1, 20)...)
	scores = append(scores, constantScores(0.9, 10)...) // stream ends abnormal

	events := runSegmenter(t, defaultSegmenterConfig(), scores)

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Start != 20 || events[0].End != 29 {
		t.Errorf("Expected event [20,29], got [%d,%d]", events[0].Start, events[0].End)
	}
}

func TestSegmenter_BriefDipWithinCooldown(t *testing.T) {
	var scores []float64
	scores = append(scores, constantScores(0.9, 5)...) // frames 0-4
	scores = append(scores, 0.1)                       // frame 5, dip shorter than cooldown
	scores = append(scores, constantScores(0.9, 4)...) // frames 6-9
	scores = append(scores, constantScores(0.1, 10)...)

	events := runSegmenter(t, defaultSegmenterConfig(), scores)

	if len(events) != 1 {
		t.Fatalf("A dip shorter than the cooldown must not split the event, got %d events", len(events))
	}
	if events[0].Start != 0 || events[0].End != 9 {
		t.Errorf("Expected event [0,9], got [%d,%d]", events[0].Start, events[0].End)
	}
}

func TestSegmenter_EndExcludesCooldownTail(t *testing.T) {
	var scores []float64
	scores = append(scores, constantScores(0.9, 10)...) // frames 0-9
	scores = append(scores, constantScores(0.1, 20)...) // cooldown frames must not extend the event

	events := runSegmenter(t, defaultSegmenterConfig(), scores)

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].End != 9 {
		t.Errorf("Event end must be the last frame scored >= TLow, got %d", events[0].End)
	}
}

func TestSegmenter_MultipleEventsDisjointAndOrdered(t *testing.T) {
	var scores []float64
	scores = append(scores, constantScores(0.9, 10)...) // frames 0-9
	scores = append(scores, constantScores(0.05, 20)...)
	scores = append(scores, constantScores(0.9, 10)...) // frames 30-39
	scores = append(scores, constantScores(0.05, 20)...)

	events := runSegmenter(t, defaultSegmenterConfig(), scores)

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d: %v", len(events), events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Start <= events[i-1].End {
			t.Errorf("Events must be disjoint and ordered: %v", events)
		}
	}
	if events[0].Start != 0 || events[0].End != 9 {
		t.Errorf("Expected first event [0,9], got [%d,%d]", events[0].Start, events[0].End)
	}
	if events[1].Start != 30 || events[1].End != 39 {
		t.Errorf("Expected second event [30,39], got [%d,%d]", events[1].Start, events[1].End)
	}
}

func TestSegmenter_EmptyStream(t *testing.T) {
	events := runSegmenter(t, defaultSegmenterConfig(), nil)
	if len(events) != 0 {
		t.Errorf("Empty stream must produce no events, got %v", events)
	}
}
