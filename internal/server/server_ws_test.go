package server

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readWSEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) wsEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var envelope wsEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestWebsocketInitialSnapshot(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, playerID := createRoom(t, ts, "Ada")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + code

	conn := dialWS(t, wsURL+"?player_id="+playerID)
	envelope := readWSEnvelope(t, conn, 5*time.Second)
	if envelope.Type != "roomUpdated" {
		t.Fatalf("expected first message roomUpdated, got %s", envelope.Type)
	}
}

func TestWebsocketRejectsUnknownPlayer(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, _ := createRoom(t, ts, "Ada")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + code

	if _, _, err := websocket.DefaultDialer.Dial(wsURL+"?player_id=nope", nil); err == nil {
		t.Fatalf("expected dial to fail for an unknown player id")
	}
	if _, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/rooms/ZZZZ", nil); err == nil {
		t.Fatalf("expected dial to fail for an unknown room")
	}
}

func TestDisplayConnectionsCountMainScreens(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, _ := createRoom(t, ts, "Ada")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + code

	display := dialWS(t, wsURL+"?role=display")
	readWSEnvelope(t, display, 5*time.Second)

	waitFor(t, 2*time.Second, func() bool {
		room, _ := srv.store.GetRoom(code)
		return room.MainScreens == 1
	})

	_ = display.Close()
	waitFor(t, 2*time.Second, func() bool {
		room, _ := srv.store.GetRoom(code)
		return room.MainScreens == 0
	})
}

func TestBroadcastReachesViewers(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, _ := createRoom(t, ts, "Ada")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + code

	viewer := dialWS(t, wsURL+"?role=viewer")
	readWSEnvelope(t, viewer, 5*time.Second)

	joinPlayer(t, ts, code, "Ben")
	envelope := readWSEnvelope(t, viewer, 5*time.Second)
	if envelope.Type != "roomUpdated" {
		t.Fatalf("expected roomUpdated broadcast, got %s", envelope.Type)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %s", timeout)
}
