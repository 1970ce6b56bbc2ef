package protocol

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
	}{
		{
			name:    "move message",
			msgType: TypeMove,
			data:    MoveData{DX: 3.5, DY: -1.25},
		},
		{
			name:    "geometry message",
			msgType: TypeGeometry,
			data:    GeometryData{X: 100, Y: 50, W: 1280, H: 720},
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if err != nil {
				t.Fatalf("NewMessage() error = %v", err)
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestMessageRoundTrip(t *testing.T) {
	msg, err := NewMoveMessage(12.5, -4)
	if err != nil {
		t.Fatalf("NewMoveMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeMove {
		t.Errorf("type = %v, want %v", parsed.Type, TypeMove)
	}

	move, err := parsed.GetMoveData()
	if err != nil {
		t.Fatalf("GetMoveData() error = %v", err)
	}
	if move.DX != 12.5 || move.DY != -4 {
		t.Errorf("delta = (%v,%v), want (12.5,-4)", move.DX, move.DY)
	}
}

func TestButtonMessages(t *testing.T) {
	for _, msgType := range []MessageType{TypeDown, TypeUp, TypeClick} {
		msg, err := NewButtonMessage(msgType, "left")
		if err != nil {
			t.Fatalf("NewButtonMessage(%v) error = %v", msgType, err)
		}
		data, err := msg.GetButtonData()
		if err != nil {
			t.Fatalf("GetButtonData() error = %v", err)
		}
		if data.Button != "left" {
			t.Errorf("button = %q, want left", data.Button)
		}
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	if _, err := ParseMessage([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	msg, err := NewGeometryMessage(10, 20, 640, 360)
	if err != nil {
		t.Fatalf("NewGeometryMessage() error = %v", err)
	}
	g, err := msg.GetGeometryData()
	if err != nil {
		t.Fatalf("GetGeometryData() error = %v", err)
	}
	if g.W != 640 || g.H != 360 {
		t.Errorf("rect = %+v", g)
	}
}
