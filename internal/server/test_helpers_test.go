package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"sound-clash/internal/config"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MinPlayers = 3
	return cfg
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func createRoom(t *testing.T, ts *httptest.Server, name string) (code string, playerID string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]any{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["code"].(string), body["player_id"].(string)
}

func joinPlayer(t *testing.T, ts *httptest.Server, code, name string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/join", map[string]any{"name": name})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["player_id"].(string)
}

// startedRoom drives a fresh room of three players through /start and
// returns its code plus the ids in join order. The creator is the first
// judge.
func startedRoom(t *testing.T, srv *Server, ts *httptest.Server) (code string, ids []string) {
	t.Helper()
	code, vipID := createRoom(t, ts, "Ada")
	benID := joinPlayer(t, ts, code, "Ben")
	calID := joinPlayer(t, ts, code, "Cal")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/start", map[string]any{"player_id": vipID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	room, ok := srv.store.GetRoom(code)
	if !ok {
		t.Fatalf("room not found after start")
	}
	if room.Phase != phasePromptSelection {
		t.Fatalf("expected phase %s, got %s", phasePromptSelection, room.Phase)
	}
	return code, []string{vipID, benID, calID}
}

// selectFirstPrompt has the current judge commit to the first offered
// prompt, landing the room in SOUND_SELECTION.
func selectFirstPrompt(t *testing.T, srv *Server, ts *httptest.Server, code string) {
	t.Helper()
	room, ok := srv.store.GetRoom(code)
	if !ok {
		t.Fatalf("room not found")
	}
	if len(room.AvailablePrompts) == 0 {
		t.Fatalf("no prompt candidates offered")
	}
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/prompt", map[string]any{
		"player_id": room.CurrentJudgeID,
		"prompt_id": room.AvailablePrompts[0].ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

// submitFromSet submits the first n sounds of the player's dealt set.
func submitFromSet(t *testing.T, srv *Server, ts *httptest.Server, code, playerID string, n int) *http.Response {
	t.Helper()
	room, ok := srv.store.GetRoom(code)
	if !ok {
		t.Fatalf("room not found")
	}
	player := room.FindPlayer(playerID)
	if player == nil {
		t.Fatalf("player not found")
	}
	if len(player.SoundSet) < n {
		t.Fatalf("player has %d sounds, need %d", len(player.SoundSet), n)
	}
	return doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/submissions", map[string]any{
		"player_id": playerID,
		"sound_ids": player.SoundSet[:n],
	})
}
