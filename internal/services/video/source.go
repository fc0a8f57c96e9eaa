package video

import (
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"

	"anomserver/internal/model"
	"anomserver/internal/services/pipeline"
)

// Opener opens video files as frame sources, resizing every frame to the
// target size so detection thresholds and export dimensions stay stable.
type Opener struct {
	Width  int
	Height int
}

// Open opens the container and validates it is decodable.
func (o Opener) Open(path string) (pipeline.FrameSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrDecode, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s: container not readable", model.ErrDecode, path)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	total := int(capture.Get(gocv.VideoCaptureFrameCount))

	return &Source{
		capture: capture,
		mat:     gocv.NewMat(),
		fps:     fps,
		total:   total,
		width:   o.Width,
		height:  o.Height,
	}, nil
}

// Source is a forward-only frame stream over one open decoder handle.
// Close releases the handle; callers must do so on all exit paths.
type Source struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	index   int
	fps     float64
	total   int
	width   int
	height  int
}

// Next decodes the next frame, resized and JPEG-encoded. Returns io.EOF at
// end of stream.
func (s *Source) Next() (*pipeline.Frame, error) {
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, io.EOF
	}

	if s.width > 0 && s.height > 0 && (s.mat.Cols() != s.width || s.mat.Rows() != s.height) {
		gocv.Resize(s.mat, &s.mat, image.Pt(s.width, s.height), 0, 0, gocv.InterpolationArea)
	}

	buf, err := gocv.IMEncode(".jpg", s.mat)
	if err != nil {
		return nil, fmt.Errorf("encoding frame %d: %w", s.index, err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	fps := s.fps
	if fps <= 0 {
		fps = 30.0
	}
	frame := &pipeline.Frame{
		Index:     s.index,
		Timestamp: float64(s.index) / fps,
		Data:      data,
	}
	s.index++
	return frame, nil
}

// FPS returns the container's frame rate metadata.
func (s *Source) FPS() float64 { return s.fps }

// Total returns the container's frame count metadata, 0 if unknown.
func (s *Source) Total() int {
	if s.total < 0 {
		return 0
	}
	return s.total
}

// Close releases the decoder handle and the reused frame buffer.
func (s *Source) Close() error {
	s.mat.Close()
	return s.capture.Close()
}
