package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// TestMonitorBroadcast tests that events reach connected viewers.
func TestMonitorBroadcast(t *testing.T) {
	// Create the monitor and serve it.
	monitor := NewMonitor(nil)
	defer monitor.Close()
	server := httptest.NewServer(monitor)
	defer server.Close()

	// Connect a viewer and wait for registration.
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	connection, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal("unable to connect viewer:", err)
	}
	defer connection.Close()
	deadline := time.Now().Add(testWaitTimeout)
	for monitor.Viewers() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if monitor.Viewers() != 1 {
		t.Fatal("viewer not registered")
	}

	// Broadcast an event and read it back.
	monitor.Broadcast(Event{Type: EventTypeText, Session: testSessionA, Text: "hello"})
	connection.SetReadDeadline(time.Now().Add(testWaitTimeout))
	var event Event
	if err := connection.ReadJSON(&event); err != nil {
		t.Fatal("unable to read event:", err)
	}
	if event.Type != EventTypeText || event.Text != "hello" || event.Session != testSessionA {
		t.Error("event mismatch:", event)
	} else if event.Time.IsZero() {
		t.Error("event time not set")
	}

	// Closing the monitor disconnects the viewer.
	monitor.Close()
	if _, _, err := connection.ReadMessage(); err == nil {
		t.Error("viewer still connected after monitor closure")
	}
}

// TestNilMonitorBroadcast tests that broadcasting to a nil monitor is a no-op.
func TestNilMonitorBroadcast(t *testing.T) {
	var monitor *Monitor
	monitor.Broadcast(Event{Type: EventTypeBatch})
}
