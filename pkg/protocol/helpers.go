package protocol

// Helper constructors and accessors for the message types.

// NewMoveMessage creates a relative pointer move command.
func NewMoveMessage(dx, dy float64) (*Message, error) {
	return NewMessage(TypeMove, MoveData{DX: dx, DY: dy})
}

// NewButtonMessage creates a down/up/click command for the given button.
func NewButtonMessage(msgType MessageType, button string) (*Message, error) {
	return NewMessage(msgType, ButtonData{Button: button})
}

// NewGeometryMessage creates a surface geometry update.
func NewGeometryMessage(x, y, w, h float64) (*Message, error) {
	return NewMessage(TypeGeometry, GeometryData{X: x, Y: y, W: w, H: h})
}

// NewActiveMessage creates an aim-active state update.
func NewActiveMessage(active bool) (*Message, error) {
	return NewMessage(TypeActive, ActiveData{Active: active})
}

// NewAckMessage creates a command acknowledgement.
func NewAckMessage(ok bool, errMsg string) (*Message, error) {
	return NewMessage(TypeAck, AckData{OK: ok, Error: errMsg})
}

// NewPingMessage creates a ping message.
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message.
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// GetMoveData extracts a pointer delta from a message.
func (m *Message) GetMoveData() (*MoveData, error) {
	var data MoveData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetButtonData extracts button info from a message.
func (m *Message) GetButtonData() (*ButtonData, error) {
	var data ButtonData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetGeometryData extracts a surface rect update from a message.
func (m *Message) GetGeometryData() (*GeometryData, error) {
	var data GeometryData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetActiveData extracts the aim-active state from a message.
func (m *Message) GetActiveData() (*ActiveData, error) {
	var data ActiveData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAckData extracts a command acknowledgement from a message.
func (m *Message) GetAckData() (*AckData, error) {
	var data AckData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
