package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/drixpyyy/aimcore/internal/log"
	"github.com/drixpyyy/aimcore/pkg/geom"
	"github.com/drixpyyy/aimcore/pkg/protocol"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// WSConfig holds settings for the WebSocket actuator client.
type WSConfig struct {
	// URL of the input bridge, e.g. "ws://127.0.0.1:8766/input".
	URL string

	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
}

// DefaultWSConfig returns production defaults for the bridge client.
func DefaultWSConfig(url string) WSConfig {
	return WSConfig{
		URL:              url,
		HandshakeTimeout: 5 * time.Second,
	}
}

// WSActuator delivers pointer commands to the input bridge over a
// WebSocket and routes geometry and aim-active reports coming back.
type WSActuator struct {
	conn *websocket.Conn

	// write serializes outbound frames; gorilla allows one writer at a time
	write sync.Mutex

	// handlers guards the report callbacks; the read pump starts at dial
	// time, before the callbacks are wired
	handlers   sync.RWMutex
	onGeometry func(r geom.Rect)
	onActive   func(active bool)

	closeOnce sync.Once
	done      chan struct{}
}

// DialWS connects to the input bridge and starts the read pump.
func DialWS(cfg WSConfig) (*WSActuator, error) {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.Dial(cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, cfg.URL, err)
	}

	a := &WSActuator{
		conn: conn,
		done: make(chan struct{}),
	}
	go a.readPump()
	go a.pingLoop()
	return a, nil
}

// OnGeometry installs the callback invoked when the bridge reports the
// video surface rect.
func (a *WSActuator) OnGeometry(fn func(r geom.Rect)) {
	a.handlers.Lock()
	defer a.handlers.Unlock()
	a.onGeometry = fn
}

// OnActive installs the callback invoked when the aim-active input
// condition changes.
func (a *WSActuator) OnActive(fn func(active bool)) {
	a.handlers.Lock()
	defer a.handlers.Unlock()
	a.onActive = fn
}

// MoveRelative implements Actuator.
func (a *WSActuator) MoveRelative(dx, dy float64) error {
	msg, err := protocol.NewMoveMessage(dx, dy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return a.send(msg)
}

// ButtonDown implements Actuator.
func (a *WSActuator) ButtonDown(b Button) error {
	return a.sendButton(protocol.TypeDown, b)
}

// ButtonUp implements Actuator.
func (a *WSActuator) ButtonUp(b Button) error {
	return a.sendButton(protocol.TypeUp, b)
}

// Click implements Actuator.
func (a *WSActuator) Click(b Button) error {
	return a.sendButton(protocol.TypeClick, b)
}

func (a *WSActuator) sendButton(msgType protocol.MessageType, b Button) error {
	msg, err := protocol.NewButtonMessage(msgType, string(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return a.send(msg)
}

func (a *WSActuator) send(msg *protocol.Message) error {
	select {
	case <-a.done:
		return ErrUnavailable
	default:
	}

	data, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	a.write.Lock()
	defer a.write.Unlock()
	a.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := a.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// readPump consumes bridge reports until the connection drops.
func (a *WSActuator) readPump() {
	defer a.Close()

	a.conn.SetReadLimit(maxMessageSize)
	a.conn.SetReadDeadline(time.Now().Add(pongWait))
	a.conn.SetPongHandler(func(string) error {
		a.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := a.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("input bridge connection lost", "error", err)
			}
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Debug("input bridge sent invalid message", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeGeometry:
			g, err := msg.GetGeometryData()
			if err != nil {
				continue
			}
			a.handlers.RLock()
			fn := a.onGeometry
			a.handlers.RUnlock()
			if fn != nil {
				fn(geom.Rect{X: g.X, Y: g.Y, W: g.W, H: g.H})
			}

		case protocol.TypeActive:
			act, err := msg.GetActiveData()
			if err != nil {
				continue
			}
			a.handlers.RLock()
			fn := a.onActive
			a.handlers.RUnlock()
			if fn != nil {
				fn(act.Active)
			}

		case protocol.TypeAck:
			ack, err := msg.GetAckData()
			if err == nil && !ack.OK {
				log.Warn("input bridge rejected command", "error", ack.Error)
			}
		}
	}
}

// pingLoop keeps the connection alive.
func (a *WSActuator) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.write.Lock()
			a.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := a.conn.WriteMessage(websocket.PingMessage, nil)
			a.write.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Close implements Actuator.
func (a *WSActuator) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.done)
		err = a.conn.Close()
	})
	return err
}
