package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mutagen-io/meshsync/pkg/logging"
)

const (
	// monitorWriteTimeout is the time allowed to write a message to a viewer.
	monitorWriteTimeout = 10 * time.Second
	// monitorPongTimeout is the time allowed to read the next pong from a
	// viewer.
	monitorPongTimeout = 60 * time.Second
	// monitorPingInterval is the interval at which viewers are pinged. It must
	// be less than monitorPongTimeout.
	monitorPingInterval = (monitorPongTimeout * 9) / 10
	// monitorReadLimit is the maximum size of messages accepted from viewers.
	// Viewers aren't expected to send anything but control frames.
	monitorReadLimit = 512
	// monitorSendBufferSize is the number of events buffered per viewer before
	// the viewer is considered too slow and dropped.
	monitorSendBufferSize = 64
)

// EventType identifies a monitor event.
type EventType string

const (
	// EventTypeBatch indicates that the host processed a batch of messages.
	EventTypeBatch EventType = "batch"
	// EventTypeText indicates that a client sent a text message.
	EventTypeText EventType = "text"
)

// Event is a notification broadcast to monitor viewers as JSON.
type Event struct {
	// Type is the event type.
	Type EventType `json:"type"`
	// Time is the time at which the event occurred.
	Time time.Time `json:"time"`
	// Index is the server state index after the event.
	Index uint64 `json:"index,omitempty"`
	// Messages is the number of messages in a batch.
	Messages int `json:"messages,omitempty"`
	// Entities is the number of entities in the replica after a batch.
	Entities int `json:"entities,omitempty"`
	// Session is the session that sent a text message.
	Session string `json:"session,omitempty"`
	// Severity is the severity of a text message.
	Severity string `json:"severity,omitempty"`
	// Text is the content of a text message.
	Text string `json:"text,omitempty"`
}

// viewer is a single websocket connection.
type viewer struct {
	// connection is the underlying websocket connection.
	connection *websocket.Conn
	// send carries encoded events to the write pump.
	send chan []byte
}

// Monitor is an HTTP handler that upgrades connections to websockets and
// broadcasts events to them. Its hub runs on a background goroutine that must
// be terminated with Close.
type Monitor struct {
	// logger is the monitor logger.
	logger *logging.Logger
	// upgrader upgrades HTTP connections.
	upgrader websocket.Upgrader
	// register carries new viewers to the hub.
	register chan *viewer
	// unregister carries departing viewers to the hub.
	unregister chan *viewer
	// broadcast carries encoded events to the hub.
	broadcast chan []byte
	// cancel signals termination to the hub.
	cancel context.CancelFunc
	// done is closed when the hub exits.
	done chan struct{}
	// viewers is the number of connected viewers.
	viewers int32
}

// NewMonitor creates a new monitor and starts its hub.
func NewMonitor(logger *logging.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	monitor := &Monitor{
		logger:     logger,
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan []byte, monitorSendBufferSize),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go monitor.run(ctx)
	return monitor
}

// run implements the hub loop. It owns the viewer set.
func (m *Monitor) run(ctx context.Context) {
	viewers := make(map[*viewer]bool)
	drop := func(v *viewer) {
		if viewers[v] {
			delete(viewers, v)
			close(v.send)
			atomic.StoreInt32(&m.viewers, int32(len(viewers)))
		}
	}
	defer func() {
		for v := range viewers {
			drop(v)
		}
		close(m.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-m.register:
			viewers[v] = true
			atomic.StoreInt32(&m.viewers, int32(len(viewers)))
		case v := <-m.unregister:
			drop(v)
		case data := <-m.broadcast:
			for v := range viewers {
				select {
				case v.send <- data:
				default:
					m.logger.Debug("Dropping slow monitor viewer")
					drop(v)
				}
			}
		}
	}
}

// Viewers returns the number of connected viewers.
func (m *Monitor) Viewers() int {
	return int(atomic.LoadInt32(&m.viewers))
}

// Broadcast sends an event to all connected viewers. It doesn't block on slow
// viewers. A nil monitor discards the event.
func (m *Monitor) Broadcast(event Event) {
	if m == nil {
		return
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Warn(err)
		return
	}
	select {
	case m.broadcast <- data:
	case <-m.done:
	}
}

// ServeHTTP implements http.Handler.ServeHTTP.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade the connection. The upgrader reports failures to the client.
	connection, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Debugf("Monitor upgrade failed: %v", err)
		return
	}

	// Register the viewer.
	v := &viewer{connection: connection, send: make(chan []byte, monitorSendBufferSize)}
	select {
	case m.register <- v:
	case <-m.done:
		connection.Close()
		return
	}
	m.logger.Debugf("Monitor viewer connected from %s", r.RemoteAddr)

	// Run the pumps. The read pump exits when the viewer disconnects.
	go v.write()
	v.read()
	select {
	case m.unregister <- v:
	case <-m.done:
	}
	m.logger.Debugf("Monitor viewer from %s disconnected", r.RemoteAddr)
}

// read consumes incoming frames until the connection fails, which is how
// departures and missing pongs are detected.
func (v *viewer) read() {
	v.connection.SetReadLimit(monitorReadLimit)
	v.connection.SetReadDeadline(time.Now().Add(monitorPongTimeout))
	v.connection.SetPongHandler(func(string) error {
		return v.connection.SetReadDeadline(time.Now().Add(monitorPongTimeout))
	})
	for {
		if _, _, err := v.connection.ReadMessage(); err != nil {
			return
		}
	}
}

// write delivers events and pings until the send channel is closed or a write
// fails.
func (v *viewer) write() {
	ticker := time.NewTicker(monitorPingInterval)
	defer func() {
		ticker.Stop()
		v.connection.Close()
	}()
	for {
		select {
		case data, ok := <-v.send:
			v.connection.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if !ok {
				v.connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			v.connection.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if err := v.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close terminates the hub and disconnects all viewers. It is idempotent.
func (m *Monitor) Close() {
	m.cancel()
	<-m.done
}
