package input

import (
	"sync"
)

// Command records one actuator invocation for verification.
type Command struct {
	Kind   string // "move", "down", "up", "click"
	DX, DY float64
	Button Button
}

// Mock implements Actuator for testing. It records every command and can
// inject failures via Fail.
type Mock struct {
	mu       sync.Mutex
	commands []Command

	// Fail, when non-nil, is returned by every command method.
	Fail error
}

// NewMock creates a mock actuator.
func NewMock() *Mock {
	return &Mock{}
}

// MoveRelative implements Actuator.
func (m *Mock) MoveRelative(dx, dy float64) error {
	return m.record(Command{Kind: "move", DX: dx, DY: dy})
}

// ButtonDown implements Actuator.
func (m *Mock) ButtonDown(b Button) error {
	return m.record(Command{Kind: "down", Button: b})
}

// ButtonUp implements Actuator.
func (m *Mock) ButtonUp(b Button) error {
	return m.record(Command{Kind: "up", Button: b})
}

// Click implements Actuator.
func (m *Mock) Click(b Button) error {
	return m.record(Command{Kind: "click", Button: b})
}

// Close implements Actuator.
func (m *Mock) Close() error {
	return nil
}

func (m *Mock) record(c Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.commands = append(m.commands, c)
	return nil
}

// Commands returns a copy of all recorded commands.
func (m *Mock) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.commands))
	copy(out, m.commands)
	return out
}

// Count returns how many commands of the given kind were recorded.
// An empty kind counts everything.
func (m *Mock) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == "" {
		return len(m.commands)
	}
	n := 0
	for _, c := range m.commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Reset clears recorded commands.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = nil
}
