package server

import (
	"hash/fnv"
	"math/rand"

	"github.com/rs/zerolog/log"

	"sound-clash/internal/catalog"
)

// StartGame moves a lobby into its first round: the first judge is picked
// in join order, prompt candidates are drawn, and the room lands in
// PROMPT_SELECTION.
func (s *Server) StartGame(code, playerID string) (*Room, error) {
	var judge *Player
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseLobby {
			return rejectInvalidState("game already started")
		}
		requester := room.FindPlayer(playerID)
		if requester == nil {
			return rejectNotFound("player not found")
		}
		if !requester.IsVIP {
			return rejectNotAuthorized("only the VIP can start the game")
		}
		if len(room.activePlayers()) < s.cfg.MinPlayers {
			return rejectInvalidState("not enough players")
		}
		room.CurrentRound = 1
		judge = s.beginPromptSelection(room)
		if judge == nil {
			return rejectInvalidState("no eligible judge")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistEvent(room, "game_started", playerID, eventFields{"round": room.CurrentRound})
	log.Info().Str("room_code", room.Code).Str("judge_id", judge.ID).Msg("game started")
	s.announcePromptSelection(room, judge)
	return room, nil
}

// beginPromptSelection rotates the judge and draws prompt candidates.
// The room passes through JUDGE_SELECTION and settles in
// PROMPT_SELECTION within the same transition, as one broadcast unit.
func (s *Server) beginPromptSelection(room *Room) *Player {
	setPhase(room, phaseJudgeSelection)
	judge := rotateJudge(room)
	if judge == nil {
		return nil
	}
	room.CurrentPrompt = nil
	room.AvailablePrompts = s.catalog.Prompts(s.cfg.PromptChoices, room.UsedPromptIDs)
	setPhase(room, phasePromptSelection)
	return judge
}

func (s *Server) announcePromptSelection(room *Room, judge *Player) {
	s.ws.Broadcast(room.Code, JudgeSelected{JudgeID: judge.ID, JudgeName: judge.Name, Round: room.CurrentRound})
	s.ws.Broadcast(room.Code, GameStateChanged{Phase: room.Phase, Round: room.CurrentRound, JudgeID: judge.ID})
	s.broadcastRoomUpdate(room)
	s.startCountdown(room.Code, timerPromptSelect, s.cfg.PromptSelectSeconds,
		s.phaseTick(room.Code, phasePromptSelection),
		func() { s.autoSelectPrompt(room.Code) })
	s.maybeScheduleBotPrompt(room)
}

// SelectPrompt is the judge committing to one of the offered prompts.
// Sound sets are dealt to every contestant and the selection timer
// starts.
func (s *Server) SelectPrompt(code, playerID, promptID string) (*Room, error) {
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phasePromptSelection {
			return rejectInvalidState("prompts cannot be selected in this phase")
		}
		if playerID != room.CurrentJudgeID {
			return rejectNotAuthorized("only the judge can select a prompt")
		}
		var chosen *catalog.Prompt
		for i := range room.AvailablePrompts {
			if room.AvailablePrompts[i].ID == promptID {
				chosen = &room.AvailablePrompts[i]
				break
			}
		}
		if chosen == nil {
			return rejectNotFound("prompt not offered")
		}
		s.applyPromptSelection(room, *chosen)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistEvent(room, "prompt_selected", playerID, eventFields{"prompt_id": room.CurrentPrompt.ID})
	log.Info().Str("room_code", room.Code).Str("prompt_id", room.CurrentPrompt.ID).Msg("prompt selected")
	s.announceSoundSelection(room)
	return room, nil
}

func (s *Server) applyPromptSelection(room *Room, chosen catalog.Prompt) {
	room.CurrentPrompt = &chosen
	room.UsedPromptIDs[chosen.ID] = struct{}{}
	room.AvailablePrompts = nil
	for i := range room.Players {
		p := &room.Players[i]
		p.SoundSet = nil
		if p.Absent || p.ID == room.CurrentJudgeID {
			continue
		}
		p.SoundSet = s.catalog.SoundSet(s.cfg.SoundSetSize)
	}
	setPhase(room, phaseSoundSelection)
}

func (s *Server) announceSoundSelection(room *Room) {
	s.ws.Broadcast(room.Code, PromptSelected{PromptID: room.CurrentPrompt.ID, PromptText: room.CurrentPrompt.Text})
	s.ws.Broadcast(room.Code, GameStateChanged{Phase: room.Phase, Round: room.CurrentRound, JudgeID: room.CurrentJudgeID, PromptID: room.CurrentPrompt.ID})
	s.broadcastRoomUpdate(room)
	s.startCountdown(room.Code, timerSoundSelect, s.cfg.SoundSelectSeconds,
		s.phaseTick(room.Code, phaseSoundSelection),
		func() { s.soundSelectionExpired(room.Code) })
	s.maybeScheduleBotSubmissions(room)
}

// autoSelectPrompt is the prompt timer expiring: the round proceeds with
// a random candidate on the judge's behalf.
func (s *Server) autoSelectPrompt(code string) {
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phasePromptSelection {
			return rejectInvalidState("phase changed")
		}
		if len(room.AvailablePrompts) == 0 {
			return rejectInvalidState("no prompt candidates")
		}
		chosen := room.AvailablePrompts[rand.Intn(len(room.AvailablePrompts))]
		s.applyPromptSelection(room, chosen)
		return nil
	})
	if err != nil {
		return
	}
	s.persistEvent(room, "prompt_auto_selected", "", eventFields{"prompt_id": room.CurrentPrompt.ID, "kind": string(KindTimeout)})
	log.Info().Str("room_code", room.Code).Str("prompt_id", room.CurrentPrompt.ID).Msg("prompt auto-selected on timeout")
	s.announceSoundSelection(room)
}

// SubmitSounds records a contestant's clip combination. The first
// submission of the round clamps the remaining selection time to the
// grace window; the last expected submission advances to PLAYBACK.
func (s *Server) SubmitSounds(code, playerID string, soundIDs []string) (*Room, error) {
	var (
		submitter       *Player
		firstSubmission bool
		advanced        bool
	)
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseSoundSelection {
			return rejectInvalidState("sounds cannot be submitted in this phase")
		}
		player := room.FindPlayer(playerID)
		if player == nil {
			return rejectNotFound("player not found")
		}
		if player.Absent {
			return rejectNotAuthorized("player is no longer in the game")
		}
		if player.ID == room.CurrentJudgeID {
			return rejectNotAuthorized("the judge cannot submit sounds")
		}
		if err := addSubmission(room, player, soundIDs); err != nil {
			return err
		}
		submitter = player
		firstSubmission = len(room.Submissions) == 1
		if len(room.Submissions) >= room.submissionQuorum() {
			enterPlayback(room)
			advanced = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistEvent(room, "sounds_submitted", playerID, eventFields{"count": len(soundIDs)})
	log.Info().Str("room_code", room.Code).Str("player_id", playerID).Int("sounds", len(soundIDs)).Msg("sounds submitted")
	s.ws.Broadcast(room.Code, SoundSubmitted{
		PlayerID:       submitter.ID,
		PlayerName:     submitter.Name,
		SubmittedCount: len(room.Submissions),
		ExpectedCount:  room.submissionQuorum(),
	})
	if advanced {
		s.cancelCountdown(room.Code)
		s.ws.Broadcast(room.Code, GameStateChanged{Phase: room.Phase, Round: room.CurrentRound})
	} else if firstSubmission {
		s.shortenCountdown(room.Code, s.cfg.SoundGraceSeconds,
			s.phaseTick(room.Code, phaseSoundSelection),
			func() { s.soundSelectionExpired(room.Code) })
	}
	s.broadcastRoomUpdate(room)
	return room, nil
}

// soundSelectionExpired is the selection timer running out. Whatever has
// been submitted plays; a round with nothing to play ends without a
// winner.
func (s *Server) soundSelectionExpired(code string) {
	noWinner := false
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseSoundSelection {
			return rejectInvalidState("phase changed")
		}
		if len(room.Submissions) == 0 {
			endRoundNoWinner(room)
			noWinner = true
			return nil
		}
		enterPlayback(room)
		return nil
	})
	if err != nil {
		return
	}
	s.persistEvent(room, "sound_selection_expired", "", eventFields{"submissions": len(room.Submissions), "kind": string(KindTimeout)})
	log.Info().Str("room_code", room.Code).Str("phase", room.Phase).Msg("sound selection timed out")
	s.ws.Broadcast(room.Code, GameStateChanged{Phase: room.Phase, Round: room.CurrentRound})
	s.broadcastRoomUpdate(room)
	if noWinner {
		s.scheduleResultsSettle(room)
	}
}

func enterPlayback(room *Room) {
	room.PlaybackCursor = 0
	setPhase(room, phasePlayback)
}

// JudgeSubmission awards the round to one entry, chosen by its position
// in the judge-facing randomized order.
func (s *Server) JudgeSubmission(code, playerID string, submissionIndex int) (*Room, error) {
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseJudging {
			return rejectInvalidState("judging is not open")
		}
		if playerID != room.CurrentJudgeID {
			return rejectNotAuthorized("only the judge can pick a winner")
		}
		sub := submissionAt(room, submissionIndex)
		if sub == nil {
			return rejectNotFound("submission not found")
		}
		if owner := room.FindPlayer(sub.PlayerID); owner != nil && !owner.Absent {
			owner.Score++
		}
		room.LastWinnerID = sub.PlayerID
		room.LastWinnerName = sub.PlayerName
		winning := *sub
		room.LastWinningSubmission = &winning
		setPhase(room, phaseRoundResults)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistEvent(room, "round_won", room.LastWinnerID, eventFields{"round": room.CurrentRound})
	log.Info().Str("room_code", room.Code).Str("winner_id", room.LastWinnerID).Int("round", room.CurrentRound).Msg("round judged")
	view := submissionView(room.LastWinningSubmission, true)
	s.ws.Broadcast(room.Code, RoundComplete{
		WinnerID:   room.LastWinnerID,
		WinnerName: room.LastWinnerName,
		Submission: &view,
		Round:      room.CurrentRound,
	})
	s.broadcastRoomUpdate(room)
	s.scheduleResultsSettle(room)
	return room, nil
}

// LikeSubmission lets a non-judge player like someone else's entry
// during judging, at most once per entry.
func (s *Server) LikeSubmission(code, playerID string, submissionIndex int) (*Room, error) {
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseJudging {
			return rejectInvalidState("likes are only accepted during judging")
		}
		player := room.FindPlayer(playerID)
		if player == nil {
			return rejectNotFound("player not found")
		}
		if player.ID == room.CurrentJudgeID {
			return rejectNotAuthorized("the judge cannot like submissions")
		}
		sub := submissionAt(room, submissionIndex)
		if sub == nil {
			return rejectNotFound("submission not found")
		}
		if sub.PlayerID == player.ID {
			return rejectNotAuthorized("cannot like your own submission")
		}
		if _, liked := sub.LikedBy[player.ID]; liked {
			return rejectDuplicate("already liked")
		}
		sub.LikedBy[player.ID] = struct{}{}
		sub.LikeCount++
		if owner := room.FindPlayer(sub.PlayerID); owner != nil && !owner.Absent {
			owner.LikeScore++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcastRoomUpdate(room)
	return room, nil
}

func (s *Server) scheduleResultsSettle(room *Room) {
	s.startCountdown(room.Code, timerResultsSettle, s.cfg.ResultsSettleSeconds,
		nil,
		func() { s.CompleteRoundResults(room.Code) })
}

// CompleteRoundResults closes out ROUND_RESULTS: either the game ends,
// or the judge rotates and the next round's prompt selection opens. It
// is triggered by the main screen's winner-audio signal or, failing
// that, the settle timer.
func (s *Server) CompleteRoundResults(code string) (*Room, error) {
	var (
		gameOver bool
		judge    *Player
	)
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseRoundResults {
			return rejectInvalidState("round results are not active")
		}
		if isGameOver(room) {
			setPhase(room, phaseGameOver)
			gameOver = true
			return nil
		}
		room.CurrentRound++
		clearRoundState(room)
		judge = s.beginPromptSelection(room)
		if judge == nil {
			setPhase(room, phaseGameOver)
			gameOver = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if gameOver {
		s.cancelCountdown(room.Code)
		s.persistEvent(room, "game_over", "", eventFields{"rounds": room.CurrentRound})
		log.Info().Str("room_code", room.Code).Int("rounds", room.CurrentRound).Msg("game over")
		s.ws.Broadcast(room.Code, GameStateChanged{Phase: phaseGameOver, Round: room.CurrentRound})
		s.broadcastRoomUpdate(room)
		return room, nil
	}
	s.persistEvent(room, "round_started", "", eventFields{"round": room.CurrentRound})
	s.announcePromptSelection(room, judge)
	return room, nil
}

func isGameOver(room *Room) bool {
	if room.CurrentRound >= room.MaxRounds {
		return true
	}
	for i := range room.Players {
		if !room.Players[i].Absent && room.Players[i].Score >= room.MaxScore {
			return true
		}
	}
	return false
}

func clearRoundState(room *Room) {
	room.Submissions = nil
	room.RandomizedOrder = nil
	room.PlaybackCursor = 0
	room.CurrentPrompt = nil
	for i := range room.Players {
		room.Players[i].SoundSet = nil
	}
}

func endRoundNoWinner(room *Room) {
	room.LastWinnerID = ""
	room.LastWinnerName = ""
	room.LastWinningSubmission = nil
	setPhase(room, phaseRoundResults)
}

func rotateJudge(room *Room) *Player {
	n := len(room.Players)
	if n == 0 {
		return nil
	}
	start := 0
	if idx := playerIndex(room, room.CurrentJudgeID); idx >= 0 {
		start = idx + 1
	}
	for i := 0; i < n; i++ {
		p := &room.Players[(start+i)%n]
		if p.Absent {
			continue
		}
		if !p.Connected && !p.IsBot {
			continue
		}
		room.CurrentJudgeID = p.ID
		return p
	}
	return nil
}

func playerIndex(room *Room, playerID string) int {
	if playerID == "" {
		return -1
	}
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

func setPhase(room *Room, phase string) {
	room.Phase = phase
	room.PhaseStartedAt = timeNowUTC()
}

// roundSeed derives the deterministic shuffle seed for the current round
// so a reconnecting viewer reconstructs the identical judging order.
func roundSeed(room *Room) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(room.Code))
	return int64(h.Sum64()) + int64(room.CurrentRound)
}
