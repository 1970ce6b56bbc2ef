package detect

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// HTTPConfig holds settings for the HTTP detector client.
type HTTPConfig struct {
	// BaseURL of the detection service, e.g. "http://127.0.0.1:8200".
	BaseURL string

	// Timeout for one detection round trip.
	Timeout time.Duration

	// RetryCount for transient transport failures within one cycle.
	RetryCount int
}

// DefaultHTTPConfig returns production defaults for the HTTP client.
func DefaultHTTPConfig(baseURL string) HTTPConfig {
	return HTTPConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		RetryCount: 0,
	}
}

// HTTPClient talks to a remote detection service over HTTP.
// The service accepts a JPEG body on POST /detect and answers with a JSON
// array of detections in detector-space pixels.
type HTTPClient struct {
	rc *resty.Client
}

// NewHTTPClient creates a detector client for the given service.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount)
	return &HTTPClient{rc: rc}
}

// wireDetection is the service's response element.
type wireDetection struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

// Detect implements Detector.
func (c *HTTPClient) Detect(ctx context.Context, jpeg []byte, max int) ([]Detection, error) {
	if len(jpeg) == 0 {
		return nil, WrapError("http", ErrEmptyFrame)
	}

	var wire []wireDetection
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "image/jpeg").
		SetQueryParam("max", strconv.Itoa(max)).
		SetBody(jpeg).
		SetResult(&wire).
		Post("/detect")
	if err != nil {
		return nil, WrapError("http", fmt.Errorf("%w: %v", ErrCycleFailed, err))
	}

	switch {
	case resp.StatusCode() == 404 || resp.StatusCode() == 410:
		// Endpoint is gone, retrying every cycle will not help
		return nil, WrapError("http", fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode()))
	case resp.IsError():
		return nil, WrapError("http", fmt.Errorf("%w: HTTP %d", ErrCycleFailed, resp.StatusCode()))
	}

	dets := make([]Detection, 0, len(wire))
	for _, w := range wire {
		dets = append(dets, Detection{
			Class: w.Class,
			Score: w.Score,
			Box:   geom.Rect{X: w.X, Y: w.Y, W: w.W, H: w.H},
		})
		if max > 0 && len(dets) >= max {
			break
		}
	}
	return dets, nil
}

// Close implements Detector.
func (c *HTTPClient) Close() error {
	return nil
}
