// Package protocol defines the WebSocket message types exchanged with the
// input bridge: the companion process that synthesizes pointer events and
// reports the video surface geometry back to the core.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Core → Bridge messages
	TypeMove  MessageType = "move"  // Relative pointer move
	TypeDown  MessageType = "down"  // Button press
	TypeUp    MessageType = "up"    // Button release
	TypeClick MessageType = "click" // Press and release

	// Bridge → Core messages
	TypeGeometry MessageType = "geometry" // Video surface rect update
	TypeActive   MessageType = "active"   // Aim-active input condition
	TypeAck      MessageType = "ack"      // Command result

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// MoveData is a relative pointer delta in display pixels.
type MoveData struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ButtonData names the button for down/up/click commands.
type ButtonData struct {
	Button string `json:"button"` // "left", "right"
}

// GeometryData is the on-screen rect of the video surface, reported by
// the bridge whenever the element moves or resizes.
type GeometryData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ActiveData carries the aim-active input condition (e.g. a held key).
type ActiveData struct {
	Active bool `json:"active"`
}

// AckData reports whether a command was applied.
type AckData struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PingData is a health check request.
type PingData struct {
	ID string `json:"id"`
}

// PongData is a health check response.
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
