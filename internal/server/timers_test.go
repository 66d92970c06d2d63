package server

import (
	"testing"
	"time"
)

func TestCountdownExpires(t *testing.T) {
	srv := New(nil, testConfig())
	expired := make(chan struct{})
	srv.startCountdown("TIMR", timerPromptSelect, 1, nil, func() { close(expired) })

	select {
	case <-expired:
	case <-time.After(3 * time.Second):
		t.Fatalf("countdown did not expire")
	}
	if _, _, ok := srv.cancelCountdown("TIMR"); ok {
		t.Fatalf("expired countdown should have been removed")
	}
}

func TestCancelCountdownReportsRemaining(t *testing.T) {
	srv := New(nil, testConfig())
	srv.startCountdown("TIMR", timerSoundSelect, 60, nil, func() {
		t.Errorf("cancelled countdown must not expire")
	})

	kind, remaining, ok := srv.cancelCountdown("TIMR")
	if !ok {
		t.Fatalf("expected a countdown to cancel")
	}
	if kind != timerSoundSelect {
		t.Fatalf("expected kind %s, got %s", timerSoundSelect, kind)
	}
	if remaining < 55 || remaining > 60 {
		t.Fatalf("unexpected remaining %d", remaining)
	}
	if _, _, ok := srv.cancelCountdown("TIMR"); ok {
		t.Fatalf("second cancel should find nothing")
	}
}

func TestShortenCountdownClamps(t *testing.T) {
	srv := New(nil, testConfig())
	srv.startCountdown("TIMR", timerSoundSelect, 60, nil, func() {})
	srv.shortenCountdown("TIMR", 20, nil, func() {})

	kind, remaining, ok := srv.cancelCountdown("TIMR")
	if !ok {
		t.Fatalf("expected a countdown")
	}
	if kind != timerSoundSelect {
		t.Fatalf("shorten must keep the timer kind, got %s", kind)
	}
	if remaining > 20 {
		t.Fatalf("expected clamp to 20s, got %d", remaining)
	}

	// Shortening below the clamp is a no-op.
	srv.startCountdown("TIMR", timerSoundSelect, 10, nil, func() {})
	srv.shortenCountdown("TIMR", 20, nil, func() {})
	_, remaining, _ = srv.cancelCountdown("TIMR")
	if remaining > 10 {
		t.Fatalf("expected remaining under 10s, got %d", remaining)
	}

	// No countdown running: nothing happens.
	srv.shortenCountdown("NONE", 5, nil, func() {})
}

func TestReplacingCountdownStopsThePrevious(t *testing.T) {
	srv := New(nil, testConfig())
	srv.startCountdown("TIMR", timerPromptSelect, 1, nil, func() {
		t.Errorf("replaced countdown must not expire")
	})
	expired := make(chan struct{})
	srv.startCountdown("TIMR", timerSoundSelect, 1, nil, func() { close(expired) })

	select {
	case <-expired:
	case <-time.After(3 * time.Second):
		t.Fatalf("replacement countdown did not expire")
	}
}
