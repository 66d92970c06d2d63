package server

import "github.com/rs/zerolog/log"

// RefreshSounds replaces a contestant's dealt sound set with a fresh
// random draw. One use per player per game, and only before they have
// submitted this round.
func (s *Server) RefreshSounds(code, playerID string) (*Room, error) {
	var refreshed *Player
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		if room.Phase != phaseSoundSelection {
			return rejectInvalidState("sounds can only be refreshed during sound selection")
		}
		player := room.FindPlayer(playerID)
		if player == nil {
			return rejectNotFound("player not found")
		}
		if player.ID == room.CurrentJudgeID {
			return rejectNotAuthorized("the judge has no sound set")
		}
		if player.HasUsedRefresh {
			return rejectDuplicate("refresh already used")
		}
		if room.hasSubmitted(player.ID) {
			return rejectInvalidState("cannot refresh after submitting")
		}
		player.SoundSet = s.catalog.SoundSet(s.cfg.SoundSetSize)
		player.HasUsedRefresh = true
		refreshed = player
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistEvent(room, "sounds_refreshed", playerID, nil)
	s.ws.Broadcast(room.Code, SoundsRefreshed{PlayerID: refreshed.ID, SoundSet: refreshed.SoundSet})
	s.broadcastRoomUpdate(room)
	return room, nil
}

// ActivateTripleSound raises the player's submission cap from 2 to 3 for
// the rest of the game. One use per player per game.
func (s *Server) ActivateTripleSound(code, playerID string) (*Room, error) {
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		player := room.FindPlayer(playerID)
		if player == nil {
			return rejectNotFound("player not found")
		}
		if player.ID == room.CurrentJudgeID {
			return rejectNotAuthorized("the judge cannot use powerups")
		}
		if player.HasUsedTripleSound {
			return rejectDuplicate("triple sound already used")
		}
		player.HasUsedTripleSound = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistEvent(room, "triple_sound_activated", playerID, nil)
	s.ws.Broadcast(room.Code, TripleSoundActivated{PlayerID: playerID})
	s.broadcastRoomUpdate(room)
	return room, nil
}

// NuclearOption is the judge blowing up the round: it ends immediately
// with no winner and the judge rotation advances. One use per judge per
// game.
func (s *Server) NuclearOption(code, playerID string) (*Room, error) {
	var judge *Player
	room, err := s.store.UpdateRoom(code, func(room *Room) error {
		switch room.Phase {
		case phaseSoundSelection, phasePlayback, phaseJudging:
		default:
			return rejectInvalidState("the nuclear option is not available in this phase")
		}
		player := room.FindPlayer(playerID)
		if player == nil {
			return rejectNotFound("player not found")
		}
		if player.ID != room.CurrentJudgeID {
			return rejectNotAuthorized("only the judge can launch the nuclear option")
		}
		if player.HasUsedNuclearOption {
			return rejectDuplicate("nuclear option already used")
		}
		player.HasUsedNuclearOption = true
		judge = player
		endRoundNoWinner(room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cancelCountdown(room.Code)
	s.persistEvent(room, "nuclear_option", playerID, eventFields{"round": room.CurrentRound})
	log.Info().Str("room_code", room.Code).Str("judge_id", playerID).Msg("nuclear option launched")
	s.ws.Broadcast(room.Code, NuclearOptionTriggered{JudgeID: judge.ID, JudgeName: judge.Name})
	s.ws.Broadcast(room.Code, GameStateChanged{Phase: room.Phase, Round: room.CurrentRound})
	s.broadcastRoomUpdate(room)
	s.scheduleResultsSettle(room)
	return room, nil
}
