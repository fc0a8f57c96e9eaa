package video

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"anomserver/internal/model"
	"anomserver/internal/services/pipeline"
)

var (
	calmBoxColor     = color.RGBA{G: 255, A: 0}
	abnormalBoxColor = color.RGBA{R: 255, A: 0}
	overlayTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// AnnotatorFactory creates annotated-video writers at a fixed frame size.
type AnnotatorFactory struct {
	Width  int
	Height int
}

// Create opens an MP4 writer for the annotated full video.
func (f AnnotatorFactory) Create(path string, fps float64) (pipeline.Annotator, error) {
	writer, err := gocv.VideoWriterFile(path, "mp4v", fps, f.Width, f.Height, true)
	if err != nil {
		return nil, fmt.Errorf("opening annotated video writer: %w", err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("annotated video writer not opened: %s", path)
	}
	return &Annotator{writer: writer, width: f.Width, height: f.Height}, nil
}

// Annotator burns detection boxes and the frame timestamp into every frame
// of the full processed video. Boxes turn red while an event is active.
type Annotator struct {
	writer *gocv.VideoWriter
	width  int
	height int
}

// Write decodes one frame, draws overlays and appends it to the output.
func (a *Annotator) Write(frame []byte, timestamp float64, dets []model.Detection, abnormal bool) error {
	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return fmt.Errorf("decoded frame is empty")
	}
	if mat.Cols() != a.width || mat.Rows() != a.height {
		gocv.Resize(mat, &mat, image.Pt(a.width, a.height), 0, 0, gocv.InterpolationArea)
	}

	boxColor := calmBoxColor
	if abnormal {
		boxColor = abnormalBoxColor
	}
	for _, d := range dets {
		rect := image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
		gocv.Rectangle(&mat, rect, boxColor, 2)
		label := fmt.Sprintf("%s (%.2f)", d.Label, d.Confidence)
		gocv.PutText(&mat, label, image.Pt(d.X, d.Y-5), gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}

	stamp := model.Timecode(timestamp)
	gocv.PutText(&mat, stamp, image.Pt(10, a.height-15), gocv.FontHersheySimplex, 0.8, overlayTextColor, 2)

	return a.writer.Write(mat)
}

// Close finalizes the annotated video file.
func (a *Annotator) Close() error {
	return a.writer.Close()
}
