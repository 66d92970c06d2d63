package server

import (
	"time"
)

const (
	timerPromptSelect  = "prompt_select"
	timerSoundSelect   = "sound_select"
	timerResultsSettle = "results_settle"
	timerReconnectWait = "reconnect_wait"
	timerReconnectVote = "reconnect_vote"
)

type roomTimer struct {
	kind     string
	deadline time.Time
	stop     chan struct{}
}

// startCountdown runs a phase-scoped countdown for a room, invoking tick
// once a second with the remaining whole seconds and expire when it runs
// out. Only one countdown exists per room; starting a new one replaces
// the old. Expiry handlers must re-validate room state before acting,
// since the phase may have legitimately advanced before the timer fired.
func (s *Server) startCountdown(code, kind string, seconds int, tick func(left int), expire func()) {
	if seconds <= 0 {
		s.cancelCountdown(code)
		return
	}
	timer := &roomTimer{
		kind:     kind,
		deadline: time.Now().Add(time.Duration(seconds) * time.Second),
		stop:     make(chan struct{}),
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[code]; ok {
		close(existing.stop)
	}
	s.timers[code] = timer
	s.timersMu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-timer.stop:
				return
			case <-ticker.C:
				left := int(time.Until(timer.deadline).Round(time.Second) / time.Second)
				if left > 0 {
					if tick != nil {
						tick(left)
					}
					continue
				}
				s.timersMu.Lock()
				if s.timers[code] == timer {
					delete(s.timers, code)
				}
				s.timersMu.Unlock()
				expire()
				return
			}
		}
	}()
}

// cancelCountdown stops the room's countdown and reports what was left.
func (s *Server) cancelCountdown(code string) (kind string, remaining int, ok bool) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	timer, exists := s.timers[code]
	if !exists {
		return "", 0, false
	}
	close(timer.stop)
	delete(s.timers, code)
	remaining = int(time.Until(timer.deadline).Round(time.Second) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return timer.kind, remaining, true
}

// shortenCountdown clamps the running countdown to at most maxLeft
// seconds, keeping its kind and handlers by restarting the deadline.
func (s *Server) shortenCountdown(code string, maxLeft int, tick func(left int), expire func()) {
	s.timersMu.Lock()
	timer, exists := s.timers[code]
	if !exists {
		s.timersMu.Unlock()
		return
	}
	remaining := int(time.Until(timer.deadline).Round(time.Second) / time.Second)
	kind := timer.kind
	s.timersMu.Unlock()
	if remaining <= maxLeft {
		return
	}
	s.startCountdown(code, kind, maxLeft, tick, expire)
}

func (s *Server) phaseTick(code, phase string) func(left int) {
	return func(left int) {
		s.ws.Broadcast(code, TimeUpdate{Phase: phase, TimeLeft: left})
	}
}
