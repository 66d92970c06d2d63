package server

import "github.com/rs/zerolog/log"

// The playback sequencer is pull-based: the main screen plays one
// submission, then asks for the next. The server keeps only the ledger
// cursor; whoever asks (a reconnected main screen, or a player client
// falling back to local playback) continues from that position.

// NextSubmission hands out the next unplayed submission in arrival
// order, or nil when the sequence is exhausted, which moves the room to
// JUDGING with the randomized presentation order computed.
func (s *Server) NextSubmission(code string) (*PlaySubmission, *Room, error) {
	var result PlaySubmission
	var exhausted bool
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phasePlayback {
			return rejectInvalidState("playback is not active")
		}
		if room.PlaybackCursor >= len(room.Submissions) {
			randomizeSubmissions(room, roundSeed(room))
			setPhase(room, phaseJudging)
			exhausted = true
			return nil
		}
		sub := &room.Submissions[room.PlaybackCursor]
		view := submissionView(sub, false)
		result = PlaySubmission{
			Submission: &view,
			Index:      room.PlaybackCursor,
			Remaining:  len(room.Submissions) - room.PlaybackCursor - 1,
		}
		room.PlaybackCursor++
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if exhausted {
		s.persistEvent(room, "playback_complete", "", eventFields{"submissions": len(room.Submissions)})
		log.Info().Str("room_code", room.Code).Msg("playback complete, judging open")
		s.ws.Broadcast(room.Code, GameStateChanged{Phase: room.Phase, Round: room.CurrentRound, JudgeID: room.CurrentJudgeID})
		s.broadcastRoomUpdate(room)
		s.maybeScheduleBotJudge(room)
		return &PlaySubmission{Submission: nil}, room, nil
	}
	s.ws.Broadcast(room.Code, result)
	return &result, room, nil
}

// JudgingPlayback is the judge asking the main screen to replay one
// entry during judging. The response tells the judge's client whether a
// main screen took the request; if not it plays locally.
func (s *Server) JudgingPlayback(code, playerID string, submissionIndex int) (bool, error) {
	var (
		view    SubmissionView
		screens int
	)
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseJudging {
			return rejectInvalidState("judging playback is only available during judging")
		}
		if playerID != room.CurrentJudgeID {
			return rejectNotAuthorized("only the judge can request playback")
		}
		sub := submissionAt(room, submissionIndex)
		if sub == nil {
			return rejectNotFound("submission not found")
		}
		view = submissionView(sub, false)
		screens = room.MainScreens
		return nil
	})
	if err != nil {
		return false, err
	}
	if screens == 0 {
		return false, nil
	}
	s.ws.BroadcastRole(room.Code, wsRoleDisplay, PlaySubmission{Submission: &view, Index: submissionIndex})
	return true, nil
}

// WinnerAudioComplete is the main screen reporting that the winner
// presentation finished; the round closes out immediately instead of
// waiting for the settle timer.
func (s *Server) WinnerAudioComplete(code string) (*Room, error) {
	room, ok := s.store.GetRoom(code)
	if !ok {
		return nil, errRoomNotFound
	}
	if room.Phase != phaseRoundResults {
		return nil, rejectInvalidState("round results are not active")
	}
	s.cancelCountdown(room.Code)
	return s.CompleteRoundResults(code)
}
