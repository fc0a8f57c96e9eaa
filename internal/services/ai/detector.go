package ai

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"anomserver/internal/logger"
	"anomserver/internal/model"
)

// personClassID is the COCO class index for "person" in MobileNet SSD.
const personClassID = 1

// Detector wraps a DNN object-detection model, filtered to the person
// class. The loaded network is read-only during inference; create one
// Detector per worker.
type Detector struct {
	net        gocv.Net
	modelPath  string
	configPath string
	confidence float64
	logger     *logger.Logger
}

// NewDetector loads the detection network from the model and config files.
func NewDetector(modelPath, configPath string, confidence float64, logger *logger.Logger) (*Detector, error) {
	d := &Detector{
		modelPath:  modelPath,
		configPath: configPath,
		confidence: confidence,
		logger:     logger,
	}

	if err := d.initializeNet(); err != nil {
		return nil, err
	}
	return d, nil
}

// initializeNet loads the network and pins it to the CPU backend.
func (d *Detector) initializeNet() error {
	if _, err := os.Stat(d.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", d.modelPath)
	}
	if _, err := os.Stat(d.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", d.configPath)
	}

	net := gocv.ReadNet(d.modelPath, d.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	d.net = net
	d.logger.Info("Detection network initialized successfully")
	return nil
}

// Detect returns person bounding boxes with confidence for one frame.
// An empty result is valid: no persons present.
func (d *Detector) Detect(frame []byte) ([]model.Detection, error) {
	if d.net.Empty() {
		return nil, fmt.Errorf("%w: detection network not initialized", model.ErrInference)
	}

	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode frame: %v", model.ErrInference, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("%w: decoded frame is empty", model.ErrInference)
	}

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	var results []model.Detection

	outputReshaped := output.Reshape(1, output.Total()/7)
	defer outputReshaped.Close()
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := float64(outputReshaped.GetFloatAt(i, 2))
		if confidence <= d.confidence {
			continue
		}
		if int(outputReshaped.GetFloatAt(i, 1)) != personClassID {
			continue
		}

		x := int(outputReshaped.GetFloatAt(i, 3) * float32(mat.Cols()))
		y := int(outputReshaped.GetFloatAt(i, 4) * float32(mat.Rows()))
		width := int(outputReshaped.GetFloatAt(i, 5)*float32(mat.Cols())) - x
		height := int(outputReshaped.GetFloatAt(i, 6)*float32(mat.Rows())) - y

		results = append(results, model.Detection{
			Label:      "person",
			Confidence: confidence,
			X:          x,
			Y:          y,
			Width:      width,
			Height:     height,
		})
	}

	return results, nil
}

// Close releases the loaded network.
func (d *Detector) Close() error {
	return d.net.Close()
}
