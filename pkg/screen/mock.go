package screen

import (
	"sync"
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// MockSource implements FrameSource for testing.
type MockSource struct {
	// FrameFunc is called when Frame is invoked. If nil, a 1x1 frame is
	// returned.
	FrameFunc func() (*Frame, error)

	// Paused makes Available return false.
	Paused bool

	mu     sync.Mutex
	frames int
}

// Frame implements FrameSource.
func (m *MockSource) Frame() (*Frame, error) {
	m.mu.Lock()
	m.frames++
	m.mu.Unlock()

	if m.FrameFunc != nil {
		return m.FrameFunc()
	}
	return &Frame{
		JPEG:     []byte{0xff, 0xd8, 0xff, 0xd9},
		Size:     geom.Size{W: 1, H: 1},
		Native:   geom.Size{W: 1, H: 1},
		Captured: time.Now(),
	}, nil
}

// Available implements FrameSource.
func (m *MockSource) Available() bool {
	return !m.Paused
}

// Frames returns how many times Frame was invoked.
func (m *MockSource) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
