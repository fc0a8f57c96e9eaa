package model

import "fmt"

// Detection represents a single detected person on a frame.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// MotionStats is the aggregate of a dense optical-flow field between two
// consecutive frames. The raw field is never kept.
type MotionStats struct {
	GlobalMean float64 // mean displacement magnitude over the whole frame
	PersonMean float64 // mean displacement magnitude inside person boxes
	Persons    int     // number of boxes PersonMean was computed over
}

// Event is a contiguous frame interval flagged as abnormal.
// Events are pairwise disjoint and ordered by start index.
type Event struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Peak  float64 `json:"peak"`
}

// Frames returns the number of frames covered by the event.
func (e Event) Frames() int { return e.End - e.Start + 1 }

// StartSeconds converts the start index to seconds using the source frame rate.
func (e Event) StartSeconds(fps float64) float64 { return float64(e.Start) / fps }

// EndSeconds converts the end index to seconds using the source frame rate.
func (e Event) EndSeconds(fps float64) float64 { return float64(e.End) / fps }

// Timecode formats a position in seconds as HH:MM:SS for prompts and overlays.
func Timecode(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
