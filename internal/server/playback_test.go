package server

import (
	"net/http"
	"testing"
)

func TestPlaybackPullSequence(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, ids := startedRoom(t, srv, ts)
	benID, calID := ids[1], ids[2]
	selectFirstPrompt(t, srv, ts, code)
	submitFromSet(t, srv, ts, code, benID, 2)
	submitFromSet(t, srv, ts, code, calID, 2)

	play, room, err := srv.NextSubmission(code)
	if err != nil {
		t.Fatalf("next submission: %v", err)
	}
	if play.Submission == nil || play.Index != 0 || play.Remaining != 1 {
		t.Fatalf("unexpected first pull: %+v", play)
	}
	if play.Submission.PlayerID != "" || play.Submission.PlayerName != "" {
		t.Fatalf("authorship must be hidden during playback")
	}
	if room.PlaybackCursor != 1 {
		t.Fatalf("expected cursor 1, got %d", room.PlaybackCursor)
	}

	play, _, err = srv.NextSubmission(code)
	if err != nil {
		t.Fatalf("next submission: %v", err)
	}
	if play.Submission == nil || play.Index != 1 || play.Remaining != 0 {
		t.Fatalf("unexpected second pull: %+v", play)
	}

	play, room, err = srv.NextSubmission(code)
	if err != nil {
		t.Fatalf("next submission: %v", err)
	}
	if play.Submission != nil {
		t.Fatalf("expected nil submission once exhausted")
	}
	if room.Phase != phaseJudging {
		t.Fatalf("expected phase %s, got %s", phaseJudging, room.Phase)
	}

	if _, _, err := srv.NextSubmission(code); err == nil {
		t.Fatalf("expected rejection once playback is over")
	}
}

func TestJudgingPlaybackFallsBackWithoutMainScreen(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, ids := startedRoom(t, srv, ts)
	adaID, benID, calID := ids[0], ids[1], ids[2]
	selectFirstPrompt(t, srv, ts, code)
	submitFromSet(t, srv, ts, code, benID, 2)
	submitFromSet(t, srv, ts, code, calID, 2)
	for i := 0; i < 3; i++ {
		srv.NextSubmission(code)
	}

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/playback/judging", map[string]any{
		"player_id":        benID,
		"submission_index": 0,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected %d for non-judge replay, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/playback/judging", map[string]any{
		"player_id":        adaID,
		"submission_index": 0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != false {
		t.Fatalf("expected success=false with no main screen connected")
	}

	// With a main screen registered, the request is taken.
	_, err := srv.store.UpdateRoom(code, func(room *Room) error {
		room.MainScreens = 1
		return nil
	})
	if err != nil {
		t.Fatalf("update room: %v", err)
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/playback/judging", map[string]any{
		"player_id":        adaID,
		"submission_index": 0,
	})
	body = decodeBody(t, resp)
	if body["success"] != true {
		t.Fatalf("expected success=true with a main screen connected")
	}
}

func TestNuclearOptionEndsRound(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, ids := startedRoom(t, srv, ts)
	adaID, benID := ids[0], ids[1]
	selectFirstPrompt(t, srv, ts, code)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/nuclear", map[string]any{"player_id": benID})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected %d for non-judge nuclear, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/nuclear", map[string]any{"player_id": adaID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	room, _ := srv.store.GetRoom(code)
	if room.Phase != phaseRoundResults {
		t.Fatalf("expected phase %s, got %s", phaseRoundResults, room.Phase)
	}
	if room.LastWinnerID != "" {
		t.Fatalf("expected no winner after the nuclear option")
	}
	for i := range room.Players {
		if room.Players[i].Score != 0 {
			t.Fatalf("nobody scores in a nuked round")
		}
	}
}

func TestPowerupSingleUse(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	code, ids := startedRoom(t, srv, ts)
	benID := ids[1]
	selectFirstPrompt(t, srv, ts, code)

	room, _ := srv.store.GetRoom(code)
	before := append([]string(nil), room.FindPlayer(benID).SoundSet...)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/refresh-sounds", map[string]any{"player_id": benID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	room, _ = srv.store.GetRoom(code)
	after := room.FindPlayer(benID).SoundSet
	if len(after) != len(before) {
		t.Fatalf("refresh must deal a full set, got %d", len(after))
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/refresh-sounds", map[string]any{"player_id": benID})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for second refresh, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/triple-sound", map[string]any{"player_id": benID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/triple-sound", map[string]any{"player_id": benID})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for second triple, got %d", http.StatusConflict, resp.StatusCode)
	}

	// The raised cap applies immediately.
	if resp := submitFromSet(t, srv, ts, code, benID, 3); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected triple submission accepted, got %d", resp.StatusCode)
	}
}
