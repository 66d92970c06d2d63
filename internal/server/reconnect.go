package server

import (
	"time"

	"github.com/rs/zerolog/log"
)

// The reconnection coordinator handles one disconnect at a time:
// the game pauses, the player gets a wait window to come back with
// their stable id, and if that expires the remaining players vote on
// continuing without them. Further disconnects queue behind the
// current one.

func (s *Server) handlePlayerDropped(code, playerID string) {
	var (
		dropped *Player
		paused  bool
		queued  bool
	)
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		player := room.FindPlayer(playerID)
		if player == nil || player.Absent || !player.Connected {
			return rejectNotFound("player not found")
		}
		player.Connected = false
		dropped = player
		if room.Phase == phaseLobby {
			if player.IsVIP {
				transferVIP(room, player)
			}
			return nil
		}
		if !room.inRound() && room.Phase != phasePaused {
			return nil
		}
		room.Disconnected = append(room.Disconnected, DisconnectedPlayer{PlayerID: player.ID, Name: player.Name})
		if room.Reconnect != nil {
			room.PendingDisconnects = append(room.PendingDisconnects, player.ID)
			queued = true
			return nil
		}
		s.beginPause(room, player)
		paused = true
		return nil
	})
	if err != nil {
		return
	}
	log.Info().Str("room_code", room.Code).Str("player_id", playerID).Bool("paused", paused).Bool("queued", queued).Msg("player disconnected")
	s.persistEvent(room, "player_disconnected", playerID, nil)
	s.ws.Broadcast(room.Code, PlayerDisconnected{PlayerID: dropped.ID, PlayerName: dropped.Name})
	if paused {
		s.ws.Broadcast(room.Code, GamePausedForDisconnection{
			DisconnectedPlayerName: dropped.Name,
			TimeLeft:               s.cfg.ReconnectWaitSeconds,
		})
		s.startReconnectWait(room.Code)
	}
	s.broadcastRoomUpdate(room)
}

// beginPause runs inside an UpdateRoom closure. It freezes the active
// phase, remembers how much of its countdown was left, and opens the
// wait window for the dropped player.
func (s *Server) beginPause(room *Room, player *Player) {
	if kind, left, ok := s.cancelCountdown(room.Code); ok {
		room.PausedTimerKind = kind
		room.PausedTimeLeft = left
	}
	room.PausedPhase = room.Phase
	setPhase(room, phasePaused)
	room.Reconnect = &ReconnectState{
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		WaitDeadline: time.Now().Add(time.Duration(s.cfg.ReconnectWaitSeconds) * time.Second),
	}
}

func (s *Server) startReconnectWait(code string) {
	s.startCountdown(code, timerReconnectWait, s.cfg.ReconnectWaitSeconds,
		func(left int) {
			s.ws.Broadcast(code, ReconnectionTimeUpdate{TimeLeft: left, Voting: false})
		},
		func() { s.openReconnectVote(code) })
}

// Reconnect restores a player matched by their stable id. Reconnecting
// while already connected is a no-op, unless the coordinator is still
// waiting on this player (the websocket can re-attach and mark them
// connected before the reconnect call arrives); then the paused phase
// resumes and any vote in progress is cancelled.
func (s *Server) Reconnect(code, playerID string) (*Room, error) {
	var (
		player  *Player
		already bool
		resumed string
	)
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		found := room.FindPlayer(playerID)
		if found == nil {
			return rejectNotFound("player not found")
		}
		if found.Absent {
			return rejectNotAuthorized("player was removed from the game")
		}
		player = found
		waitedOn := room.Reconnect != nil && room.Reconnect.PlayerID == playerID
		if found.Connected && !waitedOn {
			already = true
			return nil
		}
		found.Connected = true
		removeDisconnected(room, playerID)
		removePending(room, playerID)
		if waitedOn {
			resumed = s.resumeFromPause(room)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if already {
		return room, nil
	}
	s.persistEvent(room, "player_reconnected", playerID, nil)
	log.Info().Str("room_code", room.Code).Str("player_id", playerID).Str("resumed_phase", resumed).Msg("player reconnected")
	s.ws.Broadcast(room.Code, PlayerReconnected{PlayerID: player.ID, PlayerName: player.Name})
	if resumed != "" {
		s.ws.Broadcast(room.Code, GameResumed{Phase: resumed})
	}
	s.broadcastRoomUpdate(room)
	s.processPendingDisconnects(room.Code)
	return room, nil
}

// resumeFromPause runs inside an UpdateRoom closure. It clears the
// coordinator, restores the frozen phase, and restarts whatever
// countdown was interrupted. Returns the phase resumed to.
func (s *Server) resumeFromPause(room *Room) string {
	room.Reconnect = nil
	s.cancelCountdown(room.Code)
	phase := room.PausedPhase
	kind, left := room.PausedTimerKind, room.PausedTimeLeft
	room.PausedPhase = ""
	room.PausedTimerKind = ""
	room.PausedTimeLeft = 0
	if room.Phase == phasePaused && phase != "" {
		setPhase(room, phase)
	}
	if kind != "" && left > 0 {
		s.resumeCountdown(room.Code, kind, left, phase)
	}
	return phase
}

func (s *Server) resumeCountdown(code, kind string, left int, phase string) {
	switch kind {
	case timerPromptSelect:
		s.startCountdown(code, kind, left, s.phaseTick(code, phase), func() { s.autoSelectPrompt(code) })
	case timerSoundSelect:
		s.startCountdown(code, kind, left, s.phaseTick(code, phase), func() { s.soundSelectionExpired(code) })
	case timerResultsSettle:
		s.startCountdown(code, kind, left, nil, func() { s.CompleteRoundResults(code) })
	}
}

// openReconnectVote is the wait window expiring without the player
// coming back: the remaining connected players vote on continuing
// without them.
func (s *Server) openReconnectVote(code string) {
	var name string
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phasePaused || room.Reconnect == nil || room.Reconnect.VoteOpen {
			return rejectInvalidState("no reconnection wait in progress")
		}
		room.Reconnect.VoteOpen = true
		room.Reconnect.VoteDeadline = time.Now().Add(time.Duration(s.cfg.VoteWindowSeconds) * time.Second)
		room.Reconnect.Votes = make(map[string]bool)
		name = room.Reconnect.PlayerName
		return nil
	})
	if err != nil {
		return
	}
	log.Info().Str("room_code", room.Code).Str("player_name", name).Msg("reconnection vote opened")
	s.ws.Broadcast(room.Code, ReconnectionVoteRequest{DisconnectedPlayerName: name, TimeLeft: s.cfg.VoteWindowSeconds})
	s.startCountdown(room.Code, timerReconnectVote, s.cfg.VoteWindowSeconds,
		func(left int) {
			s.ws.Broadcast(code, ReconnectionTimeUpdate{TimeLeft: left, Voting: true})
		},
		// An indefinite pause degrades the game for everyone, so an
		// expired vote defaults to continuing without the player.
		func() { s.resolveReconnectVote(code, true) })
}

// CastReconnectVote records one player's continue/wait vote. The vote is
// terminal as soon as a majority of currently-connected players agree.
func (s *Server) CastReconnectVote(code, playerID string, continueWithout bool) (*Room, error) {
	var (
		decided bool
		outcome bool
		update  ReconnectionVoteUpdate
	)
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phasePaused || room.Reconnect == nil || !room.Reconnect.VoteOpen {
			return rejectInvalidState("no reconnection vote in progress")
		}
		voter := room.FindPlayer(playerID)
		if voter == nil {
			return rejectNotFound("player not found")
		}
		if voter.Absent || !voter.Connected || voter.ID == room.Reconnect.PlayerID {
			return rejectNotAuthorized("not eligible to vote")
		}
		if _, voted := room.Reconnect.Votes[playerID]; voted {
			return rejectDuplicate("vote already cast")
		}
		room.Reconnect.Votes[playerID] = continueWithout

		voters := room.connectedVoters()
		needed := len(voters)/2 + 1
		continueVotes, waitVotes := 0, 0
		for _, choice := range room.Reconnect.Votes {
			if choice {
				continueVotes++
			} else {
				waitVotes++
			}
		}
		update = ReconnectionVoteUpdate{
			VotesToContinue: continueVotes,
			VotesToWait:     waitVotes,
			VotersTotal:     len(voters),
		}
		if continueVotes >= needed {
			decided, outcome = true, true
		} else if waitVotes >= needed {
			decided, outcome = true, false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ws.Broadcast(room.Code, update)
	if decided {
		s.resolveReconnectVote(code, outcome)
	}
	return room, nil
}

// resolveReconnectVote applies the vote outcome: either the player is
// evicted and the game resumes, or the wait window restarts.
func (s *Server) resolveReconnectVote(code string, continueWithout bool) {
	var (
		name         string
		resumed      string
		judgeEvicted bool
		skipToNext   bool
	)
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phasePaused || room.Reconnect == nil || !room.Reconnect.VoteOpen {
			return rejectInvalidState("no reconnection vote in progress")
		}
		name = room.Reconnect.PlayerName
		evictedID := room.Reconnect.PlayerID
		if !continueWithout {
			room.Reconnect.VoteOpen = false
			room.Reconnect.Votes = nil
			room.Reconnect.WaitDeadline = time.Now().Add(time.Duration(s.cfg.ReconnectWaitSeconds) * time.Second)
			return nil
		}
		if player := room.FindPlayer(evictedID); player != nil {
			player.Absent = true
		}
		removeDisconnected(room, evictedID)
		judgeEvicted = evictedID == room.CurrentJudgeID
		resumed = s.resumeFromPause(room)
		if judgeEvicted {
			// The round cannot finish without its judge; it ends with
			// no winner and the rotation moves on.
			s.cancelCountdown(room.Code)
			endRoundNoWinner(room)
			resumed = room.Phase
			return nil
		}
		if room.Phase == phaseSoundSelection {
			quorum := room.submissionQuorum()
			if quorum > 0 && len(room.Submissions) >= quorum {
				s.cancelCountdown(room.Code)
				enterPlayback(room)
				resumed = room.Phase
				skipToNext = true
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	s.persistEvent(room, "reconnection_vote_resolved", "", eventFields{"continue_without": continueWithout})
	log.Info().Str("room_code", room.Code).Str("player_name", name).Bool("continue_without", continueWithout).Msg("reconnection vote resolved")
	s.ws.Broadcast(room.Code, ReconnectionVoteResult{ContinueWithoutPlayer: continueWithout, PlayerName: name})
	if !continueWithout {
		s.ws.Broadcast(room.Code, GamePausedForDisconnection{DisconnectedPlayerName: name, TimeLeft: s.cfg.ReconnectWaitSeconds})
		s.startReconnectWait(room.Code)
		return
	}
	s.ws.Broadcast(room.Code, GameResumed{Phase: resumed})
	if judgeEvicted || skipToNext {
		s.ws.Broadcast(room.Code, GameStateChanged{Phase: room.Phase, Round: room.CurrentRound})
	}
	s.broadcastRoomUpdate(room)
	if judgeEvicted {
		s.scheduleResultsSettle(room)
	}
	s.processPendingDisconnects(room.Code)
}

// processPendingDisconnects starts the coordinator for the next queued
// disconnect, if any player in the queue is still gone.
func (s *Server) processPendingDisconnects(code string) {
	var next *Player
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Reconnect != nil || !room.inRound() || room.Phase == phasePaused {
			return rejectInvalidState("coordinator busy")
		}
		for len(room.PendingDisconnects) > 0 {
			id := room.PendingDisconnects[0]
			room.PendingDisconnects = room.PendingDisconnects[1:]
			player := room.FindPlayer(id)
			if player == nil || player.Absent || player.Connected {
				continue
			}
			s.beginPause(room, player)
			next = player
			return nil
		}
		return rejectInvalidState("no pending disconnects")
	})
	if err != nil || next == nil {
		return
	}
	s.ws.Broadcast(room.Code, GamePausedForDisconnection{
		DisconnectedPlayerName: next.Name,
		TimeLeft:               s.cfg.ReconnectWaitSeconds,
	})
	s.startReconnectWait(room.Code)
	s.broadcastRoomUpdate(room)
}

func removeDisconnected(room *Room, playerID string) {
	kept := room.Disconnected[:0]
	for _, d := range room.Disconnected {
		if d.PlayerID != playerID {
			kept = append(kept, d)
		}
	}
	room.Disconnected = kept
}

func removePending(room *Room, playerID string) {
	kept := room.PendingDisconnects[:0]
	for _, id := range room.PendingDisconnects {
		if id != playerID {
			kept = append(kept, id)
		}
	}
	room.PendingDisconnects = kept
}

func transferVIP(room *Room, outgoing *Player) {
	for i := range room.Players {
		p := &room.Players[i]
		if p.ID == outgoing.ID || p.Absent || !p.Connected || p.IsBot {
			continue
		}
		outgoing.IsVIP = false
		p.IsVIP = true
		return
	}
}
