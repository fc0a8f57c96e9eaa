package model

import "errors"

// Error taxonomy for the processing pipeline. Only ErrDecode is fatal to a
// session; everything else is contained at frame or event scope.
var (
	// ErrDecode means the source container is unreadable. Fatal, raised
	// before any artifacts are produced.
	ErrDecode = errors.New("video decode failed")

	// ErrInference means a single frame's model inference failed. The frame
	// degrades to an empty result and processing continues.
	ErrInference = errors.New("inference failed")

	// ErrExport means one event's clip could not be encoded. That clip is
	// dropped from the session result; other events still export.
	ErrExport = errors.New("clip export failed")

	// ErrSummary means the external summarization call failed. The session
	// gets a placeholder summary instead.
	ErrSummary = errors.New("summary request failed")
)
