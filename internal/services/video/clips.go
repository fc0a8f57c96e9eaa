package video

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"anomserver/internal/model"
)

// Exporter materializes event intervals of the annotated video as
// standalone playable MP4 files.
type Exporter struct {
	Width  int
	Height int
}

// Export re-encodes frames [startFrame, endFrame] of src into dst.
func (e Exporter) Export(src string, startFrame, endFrame int, dst string) error {
	capture, err := gocv.VideoCaptureFile(src)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", model.ErrExport, src, err)
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = 30.0
	}
	capture.Set(gocv.VideoCapturePosFrames, float64(startFrame))

	writer, err := gocv.VideoWriterFile(dst, "mp4v", fps, e.Width, e.Height, true)
	if err != nil {
		return fmt.Errorf("%w: opening writer %s: %v", model.ErrExport, dst, err)
	}
	defer writer.Close()
	if !writer.IsOpened() {
		return fmt.Errorf("%w: writer not opened: %s", model.ErrExport, dst)
	}

	mat := gocv.NewMat()
	defer mat.Close()

	written := 0
	for index := startFrame; index <= endFrame; index++ {
		if ok := capture.Read(&mat); !ok || mat.Empty() {
			break
		}
		if err := writer.Write(mat); err != nil {
			return fmt.Errorf("%w: writing frame %d: %v", model.ErrExport, index, err)
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("%w: no frames in range [%d,%d]", model.ErrExport, startFrame, endFrame)
	}
	return nil
}

// Stitch concatenates all padded event intervals into one combined video,
// each preceded by a two-second timestamp title card.
func (e Exporter) Stitch(src string, events []model.Event, padding int, lastFrame int, fps float64, dst string) error {
	if fps <= 0 {
		fps = 30.0
	}

	writer, err := gocv.VideoWriterFile(dst, "mp4v", fps, e.Width, e.Height, true)
	if err != nil {
		return fmt.Errorf("%w: opening writer %s: %v", model.ErrExport, dst, err)
	}
	defer writer.Close()
	if !writer.IsOpened() {
		return fmt.Errorf("%w: writer not opened: %s", model.ErrExport, dst)
	}

	capture, err := gocv.VideoCaptureFile(src)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", model.ErrExport, src, err)
	}
	defer capture.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	for _, ev := range events {
		title := fmt.Sprintf("%.1fs to %.1fs", ev.StartSeconds(fps), ev.EndSeconds(fps))
		if err := e.writeTitleCard(writer, title, fps); err != nil {
			return err
		}

		start := ev.Start - padding
		if start < 0 {
			start = 0
		}
		end := ev.End + padding
		if end > lastFrame {
			end = lastFrame
		}

		capture.Set(gocv.VideoCapturePosFrames, float64(start))
		for index := start; index <= end; index++ {
			if ok := capture.Read(&mat); !ok || mat.Empty() {
				break
			}
			if err := writer.Write(mat); err != nil {
				return fmt.Errorf("%w: writing frame %d: %v", model.ErrExport, index, err)
			}
		}
	}
	return nil
}

// writeTitleCard renders centered white text on black for two seconds.
func (e Exporter) writeTitleCard(writer *gocv.VideoWriter, text string, fps float64) error {
	card := gocv.NewMatWithSize(e.Height, e.Width, gocv.MatTypeCV8UC3)
	defer card.Close()

	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, 1.2, 2)
	origin := image.Pt((e.Width-size.X)/2, (e.Height+size.Y)/2)
	gocv.PutText(&card, text, origin, gocv.FontHersheySimplex, 1.2, overlayTextColor, 2)

	for i := 0; i < int(2*fps); i++ {
		if err := writer.Write(card); err != nil {
			return fmt.Errorf("%w: writing title card: %v", model.ErrExport, err)
		}
	}
	return nil
}
