package server

import (
	"time"

	"github.com/rs/zerolog/log"
)

// cleanupLoop periodically tears down rooms nobody will come back to:
// rooms idle past the configured timeout, and rooms where every human on
// the roster has dropped.
func (s *Server) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.sweepStaleRooms()
	}
}

func (s *Server) sweepStaleRooms() {
	idleCutoff := time.Duration(s.cfg.RoomIdleTimeoutSeconds) * time.Second
	codes := s.store.StaleRooms(func(room *Room) bool {
		if time.Since(room.LastActivity) > idleCutoff {
			return true
		}
		if room.Phase == phaseLobby {
			return false
		}
		for i := range room.Players {
			p := &room.Players[i]
			if p.IsBot || p.Absent {
				continue
			}
			if p.Connected {
				return false
			}
		}
		return true
	})
	for _, code := range codes {
		s.cancelCountdown(code)
		s.store.RemoveRoom(code)
		s.ws.CloseRoom(code)
		log.Info().Str("room", code).Msg("removed stale room")
	}
}
