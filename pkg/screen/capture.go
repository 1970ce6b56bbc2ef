package screen

import (
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// CaptureConfig holds settings for the OpenCV capture source.
type CaptureConfig struct {
	// Device is the capture device index (e.g. a capture card).
	Device int `json:"device"`

	// Downscale divides both frame dimensions before detection.
	// 1 disables downscaling; 2 halves width and height.
	Downscale float64 `json:"downscale"`

	// Quality is the JPEG encode quality (1-100).
	Quality int `json:"quality"`
}

// DefaultCaptureConfig returns production defaults for the capture source.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Device:    0,
		Downscale: 2,
		Quality:   80,
	}
}

// CaptureSource grabs frames from an OpenCV video capture device and
// downscales them for detection. Safe for use from one goroutine at a
// time per the scheduler contract; the mutex guards Close racing a grab.
type CaptureSource struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	img    gocv.Mat
	small  gocv.Mat
	config CaptureConfig
	closed bool
}

// NewCaptureSource opens the capture device.
func NewCaptureSource(cfg CaptureConfig) (*CaptureSource, error) {
	if cfg.Downscale < 1 {
		cfg.Downscale = 1
	}
	cap, err := gocv.VideoCaptureDevice(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrSourceUnavailable, cfg.Device, err)
	}
	return &CaptureSource{
		cap:    cap,
		img:    gocv.NewMat(),
		small:  gocv.NewMat(),
		config: cfg,
	}, nil
}

// Available implements FrameSource.
func (s *CaptureSource) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.cap.IsOpened()
}

// Frame implements FrameSource.
func (s *CaptureSource) Frame() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.cap.IsOpened() {
		return nil, ErrSourceUnavailable
	}

	if ok := s.cap.Read(&s.img); !ok || s.img.Empty() {
		return nil, fmt.Errorf("%w: read failed", ErrSourceUnavailable)
	}

	native := geom.Size{W: float64(s.img.Cols()), H: float64(s.img.Rows())}
	if !native.Valid() {
		return nil, ErrBadDimensions
	}

	src := s.img
	size := native
	if s.config.Downscale > 1 {
		gocv.Resize(s.img, &s.small,
			image.Pt(int(native.W/s.config.Downscale), int(native.H/s.config.Downscale)),
			0, 0, gocv.InterpolationArea)
		src = s.small
		size = geom.Size{W: float64(s.small.Cols()), H: float64(s.small.Rows())}
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, src,
		[]int{gocv.IMWriteJpegQuality, s.config.Quality})
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrSourceUnavailable, err)
	}
	defer buf.Close()

	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())

	return &Frame{
		JPEG:     jpeg,
		Size:     size,
		Native:   native,
		Captured: time.Now(),
	}, nil
}

// Close releases the capture device.
func (s *CaptureSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.img.Close()
	s.small.Close()
	return s.cap.Close()
}
