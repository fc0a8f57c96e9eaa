package scoring

import "anomserver/internal/model"

// SegmenterConfig holds the hysteresis thresholds and duration limits.
type SegmenterConfig struct {
	THigh          float64 // score opening an event
	TLow           float64 // score below which the cooldown counts down
	MinEventFrames int     // shorter intervals are discarded as noise
	Cooldown       int     // consecutive sub-TLow frames required to close
}

type segmenterState int

const (
	stateIdle segmenterState = iota
	stateInEvent
)

// Segmenter converts the per-frame score stream into disjoint event
// intervals. Two thresholds with a cooldown run-length form a hysteresis
// band: raw scores are noisy and a single cutoff would flicker events on
// and off at the boundary.
type Segmenter struct {
	cfg    SegmenterConfig
	state  segmenterState
	start  int     // start index of the open event
	end    int     // last index scored >= TLow inside the open event
	peak   float64 // peak score inside the open event
	below  int     // consecutive frames below TLow
	last   int     // last index pushed
	pushed bool
	events []model.Event
}

// NewSegmenter creates a segmenter in the Idle state.
func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	if cfg.MinEventFrames <= 0 {
		cfg.MinEventFrames = 1
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 1
	}
	return &Segmenter{cfg: cfg}
}

// Push feeds the next frame's score. Indices must be fed in strictly
// increasing order.
func (sg *Segmenter) Push(index int, score float64) {
	sg.last = index
	sg.pushed = true

	switch sg.state {
	case stateIdle:
		if score >= sg.cfg.THigh {
			sg.state = stateInEvent
			sg.start = index
			sg.end = index
			sg.peak = score
			sg.below = 0
		}

	case stateInEvent:
		if score > sg.peak {
			sg.peak = score
		}
		if score >= sg.cfg.TLow {
			sg.end = index
			sg.below = 0
			return
		}
		sg.below++
		if sg.below >= sg.cfg.Cooldown {
			sg.close(sg.end)
		}
	}
}

// Finish closes any open event at the last available frame index and
// returns all retained events, disjoint and ordered by start index.
func (sg *Segmenter) Finish() []model.Event {
	if sg.state == stateInEvent && sg.pushed {
		sg.close(sg.last)
	}
	return sg.events
}

// close emits the open interval if it meets the minimum duration and
// returns to Idle.
func (sg *Segmenter) close(end int) {
	sg.state = stateIdle
	sg.below = 0

	ev := model.Event{Start: sg.start, End: end, Peak: sg.peak}
	if ev.Frames() < sg.cfg.MinEventFrames {
		return
	}
	sg.events = append(sg.events, ev)
}
