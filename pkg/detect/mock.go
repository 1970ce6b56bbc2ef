package detect

import (
	"context"
	"sync"
	"time"
)

// Mock implements Detector for testing.
// Behavior can be customized via function fields; by default Detect
// returns no detections.
type Mock struct {
	// DetectFunc is called when Detect is invoked.
	DetectFunc func(ctx context.Context, jpeg []byte, max int) ([]Detection, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	// Block, when non-nil, is received from before Detect returns.
	// Lets tests hold a cycle in flight.
	Block chan struct{}

	mu    sync.Mutex
	calls int
}

// NewMock creates a mock detector that finds nothing.
func NewMock() *Mock {
	return &Mock{}
}

// Detect implements Detector.
func (m *Mock) Detect(ctx context.Context, jpeg []byte, max int) ([]Detection, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, jpeg, max)
	}
	return nil, nil
}

// Close implements Detector.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns how many times Detect was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// WaitCalls blocks until Detect has been invoked at least n times or the
// timeout expires. Returns the observed count.
func (m *Mock) WaitCalls(n int, timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	for {
		if c := m.Calls(); c >= n || time.Now().After(deadline) {
			return c
		}
		time.Sleep(time.Millisecond)
	}
}
