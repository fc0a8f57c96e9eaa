package groundtruth

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Renderer plots predicted anomaly scores against labeled reference
// timelines. References live as <key>.json files holding a per-frame
// float array.
type Renderer struct {
	DatasetDir string
}

// Lookup loads the label timeline for a video key. A missing reference is
// the normal case for uploads and returns (nil, nil).
func (r Renderer) Lookup(key string) ([]float64, error) {
	path := filepath.Join(r.DatasetDir, key+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading labels %s: %w", path, err)
	}

	var labels []float64
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parsing labels %s: %w", path, err)
	}
	return labels, nil
}

// Render writes a PNG comparing the two timelines frame by frame.
func (r Renderer) Render(key string, scores, labels []float64, dst string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Ground Truth Anomalies - %s", key)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Anomaly Label"
	p.Y.Min = 0
	p.Y.Max = 1.05
	p.Add(plotter.NewGrid())

	labelLine, err := plotter.NewLine(timeline(labels))
	if err != nil {
		return fmt.Errorf("plotting labels: %w", err)
	}
	labelLine.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}

	scoreLine, err := plotter.NewLine(timeline(scores))
	if err != nil {
		return fmt.Errorf("plotting scores: %w", err)
	}
	scoreLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	scoreLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(labelLine, scoreLine)
	p.Legend.Add("ground truth", labelLine)
	p.Legend.Add("predicted score", scoreLine)
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 4*vg.Inch, dst); err != nil {
		return fmt.Errorf("saving plot %s: %w", dst, err)
	}
	return nil
}

func timeline(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}
