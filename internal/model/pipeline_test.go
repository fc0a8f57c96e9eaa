package model

import "testing"

// ========================================
// Model Tests
// ========================================

func TestEvent_Frames(t *testing.T) {
	tests := []struct {
		event    Event
		expected int
	}{
		{Event{Start: 30, End: 59}, 30},
		{Event{Start: 0, End: 0}, 1},
		{Event{Start: 10, End: 14}, 5},
	}

	for _, tt := range tests {
		if got := tt.event.Frames(); got != tt.expected {
			t.Errorf("Event [%d,%d]: expected %d frames, got %d", tt.event.Start, tt.event.End, tt.expected, got)
		}
	}
}

func TestEvent_Seconds(t *testing.T) {
	ev := Event{Start: 60, End: 150}

	if got := ev.StartSeconds(30.0); got != 2.0 {
		t.Errorf("Expected start 2.0s, got %f", got)
	}
	if got := ev.EndSeconds(30.0); got != 5.0 {
		t.Errorf("Expected end 5.0s, got %f", got)
	}
}

func TestTimecode(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00:00"},
		{59.9, "00:00:59"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
		{7325.4, "02:02:05"},
	}

	for _, tt := range tests {
		if got := Timecode(tt.seconds); got != tt.expected {
			t.Errorf("Timecode(%f) = %q, expected %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestSession_ShortID(t *testing.T) {
	s := Session{ID: "0123456789abcdef"}
	if s.ShortID() != "01234567" {
		t.Errorf("Expected 01234567, got %s", s.ShortID())
	}

	short := Session{ID: "abc"}
	if short.ShortID() != "abc" {
		t.Errorf("Short ids pass through unchanged, got %s", short.ShortID())
	}
}
