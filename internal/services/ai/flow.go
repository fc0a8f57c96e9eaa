package ai

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"anomserver/internal/model"
)

// FlowEstimator computes dense Farneback optical flow between consecutive
// frames and reduces it to aggregate magnitude statistics. It keeps no
// state between calls and is safe for concurrent use.
type FlowEstimator struct{}

// Estimate computes the mean displacement magnitude over the whole frame
// and, when boxes are present, over the detected person regions.
func (FlowEstimator) Estimate(prev, cur []byte, boxes []model.Detection) (model.MotionStats, error) {
	var stats model.MotionStats

	prevGray, err := decodeGray(prev)
	if err != nil {
		return stats, err
	}
	defer prevGray.Close()

	curGray, err := decodeGray(cur)
	if err != nil {
		return stats, err
	}
	defer curGray.Close()

	if prevGray.Cols() != curGray.Cols() || prevGray.Rows() != curGray.Rows() {
		resized := gocv.NewMat()
		gocv.Resize(prevGray, &resized, image.Pt(curGray.Cols(), curGray.Rows()), 0, 0, gocv.InterpolationArea)
		prevGray.Close()
		prevGray = resized
	}

	flow := gocv.NewMat()
	defer flow.Close()
	gocv.CalcOpticalFlowFarneback(prevGray, curGray, &flow, 0.5, 3, 15, 3, 5, 1.2, 0)

	components := gocv.Split(flow)
	if len(components) != 2 {
		for i := range components {
			components[i].Close()
		}
		return stats, fmt.Errorf("%w: unexpected flow field shape", model.ErrInference)
	}
	defer components[0].Close()
	defer components[1].Close()

	magnitude := gocv.NewMat()
	defer magnitude.Close()
	gocv.Magnitude(components[0], components[1], &magnitude)

	stats.GlobalMean = magnitude.Mean().Val1

	bounds := image.Rect(0, 0, magnitude.Cols(), magnitude.Rows())
	var sum float64
	for _, b := range boxes {
		rect := image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height).Intersect(bounds)
		if rect.Empty() {
			continue
		}
		region := magnitude.Region(rect)
		sum += region.Mean().Val1
		region.Close()
		stats.Persons++
	}
	if stats.Persons > 0 {
		stats.PersonMean = sum / float64(stats.Persons)
	}

	return stats, nil
}

// decodeGray decodes an encoded frame straight to grayscale.
func decodeGray(data []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: failed to decode frame: %v", model.ErrInference, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: decoded frame is empty", model.ErrInference)
	}
	return mat, nil
}
