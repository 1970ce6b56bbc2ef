package detect

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// ONNXConfig holds settings for the bundled ONNX detector backend.
type ONNXConfig struct {
	ModelPath        string
	Classes          []string // index -> class name for the model head
	ConfidenceThresh float32
	NMSThresh        float32
	InputWidth       int
	InputHeight      int
}

// DefaultONNXConfig returns defaults for a YOLOv8-style model.
func DefaultONNXConfig(modelPath string, classes []string) ONNXConfig {
	return ONNXConfig{
		ModelPath:        modelPath,
		Classes:          classes,
		ConfidenceThresh: 0.5,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
	}
}

// ONNXDetector runs a local YOLOv8-style ONNX model through the OpenCV DNN
// backend. It is an alternative to the HTTP client for setups where the
// model runs in-process.
type ONNXDetector struct {
	net       gocv.Net
	config    ONNXConfig
	mu        sync.Mutex
	inputSize image.Point
}

// NewONNX loads the model and creates a local detector.
func NewONNX(cfg ONNXConfig) (*ONNXDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, WrapError("onnx", fmt.Errorf("%w: model file not found: %s", ErrUnavailable, cfg.ModelPath))
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, WrapError("onnx", fmt.Errorf("%w: failed to load model %s", ErrUnavailable, cfg.ModelPath))
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &ONNXDetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Detect implements Detector.
func (d *ONNXDetector) Detect(ctx context.Context, jpeg []byte, max int) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, WrapError("onnx", fmt.Errorf("%w: %v", ErrEmptyFrame, err))
	}
	defer img.Close()

	if img.Empty() {
		return nil, WrapError("onnx", ErrEmptyFrame)
	}

	imgW := float32(img.Cols())
	imgH := float32(img.Rows())

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	dets := d.parseOutput(output, imgW, imgH)

	// Highest score first so the cap keeps the strongest results
	sort.SliceStable(dets, func(i, j int) bool { return dets[i].Score > dets[j].Score })
	if max > 0 && len(dets) > max {
		dets = dets[:max]
	}
	return dets, nil
}

// parseOutput parses a YOLOv8 output tensor.
// Shape is [1, 4+C, N]: 4 bbox components then C class scores, N anchors.
func (d *ONNXDetector) parseOutput(output gocv.Mat, imgW, imgH float32) []Detection {
	var boxes []image.Rectangle
	var confidences []float32
	var classIDs []int

	rows := output.Cols() // anchors
	cols := output.Rows() // 4 + classes

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil
	}

	for i := 0; i < rows; i++ {
		maxScore := float32(0)
		maxClassID := 0
		for c := 4; c < cols; c++ {
			if score := data[c*rows+i]; score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}
		if maxScore < d.config.ConfidenceThresh {
			continue
		}

		// Center format in model-input scale
		cx := data[0*rows+i]
		cy := data[1*rows+i]
		w := data[2*rows+i]
		h := data[3*rows+i]

		x1 := int((cx - w/2) * imgW / float32(d.config.InputWidth))
		y1 := int((cy - h/2) * imgH / float32(d.config.InputHeight))
		x2 := int((cx + w/2) * imgW / float32(d.config.InputWidth))
		y2 := int((cy + h/2) * imgH / float32(d.config.InputHeight))

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		confidences = append(confidences, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(boxes) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(boxes, confidences, d.config.ConfidenceThresh, d.config.NMSThresh)

	dets := make([]Detection, 0, len(indices))
	for _, idx := range indices {
		box := boxes[idx]
		dets = append(dets, Detection{
			Class: d.className(classIDs[idx]),
			Score: float64(confidences[idx]),
			Box: geom.Rect{
				X: float64(box.Min.X),
				Y: float64(box.Min.Y),
				W: float64(box.Dx()),
				H: float64(box.Dy()),
			},
		})
	}
	return dets
}

func (d *ONNXDetector) className(id int) string {
	if id >= 0 && id < len(d.config.Classes) {
		return d.config.Classes[id]
	}
	return fmt.Sprintf("class%d", id)
}

// Close releases the detector resources.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
