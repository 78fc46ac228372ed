package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dugout/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// dialTestViewer spins up a test server that attaches connections to the
// hub's room for the given game and dials it.
func dialTestViewer(t *testing.T, hub *Hub, accountID, gameID string) *websocket.Conn {
	t.Helper()

	handler := NewHandler(hub)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.Serve(w, r, accountID, gameID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForViewers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ViewerCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d viewers, got %d", want, hub.ViewerCount())
}

func TestHub_DeliverReachesRoomViewers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := dialTestViewer(t, hub, "acct", "game1")
	waitForViewers(t, hub, 1)

	hub.Deliver(context.Background(), "acct", "game1", map[string]any{
		"server_id": "s1",
		"sequence":  1,
		"synced":    true,
	})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got["server_id"] != "s1" || got["synced"] != true {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestHub_DeliverIsScopedToTheGameRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn1 := dialTestViewer(t, hub, "acct", "game1")
	conn2 := dialTestViewer(t, hub, "acct", "game2")
	waitForViewers(t, hub, 2)

	hub.Deliver(context.Background(), "acct", "game1", map[string]any{"server_id": "s1"})

	_ = conn1.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn1.ReadMessage(); err != nil {
		t.Fatalf("game1 viewer should receive the event: %v", err)
	}

	// The game2 viewer must not see game1 traffic
	_ = conn2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := conn2.ReadMessage(); err == nil {
		t.Error("game2 viewer received an event for game1")
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := dialTestViewer(t, hub, "acct", "game1")
	waitForViewers(t, hub, 1)

	_ = conn.Close()
	waitForViewers(t, hub, 0)
}

func TestHub_DeliverToEmptyRoomIsANoop(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	// No viewers registered; must not panic or block
	hub.Deliver(context.Background(), "acct", "nobody-watching", map[string]any{"server_id": "s1"})
}

func TestHub_CloseDisconnectsViewers(t *testing.T) {
	hub := NewHub()

	conn := dialTestViewer(t, hub, "acct", "game1")
	waitForViewers(t, hub, 1)

	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read to fail after hub close")
	}
	if hub.ViewerCount() != 0 {
		t.Errorf("expected 0 viewers after close, got %d", hub.ViewerCount())
	}
}
