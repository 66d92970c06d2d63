package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type createRoomRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=24"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	Emoji     string `json:"emoji" validate:"omitempty,max=8"`
	MaxRounds int    `json:"max_rounds" validate:"omitempty,min=1,max=20"`
	MaxScore  int    `json:"max_score" validate:"omitempty,min=1,max=20"`
}

type joinRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=24"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
	Emoji string `json:"emoji" validate:"omitempty,max=8"`
}

type playerRequest struct {
	PlayerID string `json:"player_id" validate:"required,uuid4"`
}

type addBotRequest struct {
	PlayerID string `json:"player_id" validate:"required,uuid4"`
	Name     string `json:"name" validate:"omitempty,min=1,max=24"`
}

type selectPromptRequest struct {
	PlayerID string `json:"player_id" validate:"required,uuid4"`
	PromptID string `json:"prompt_id" validate:"required,max=64"`
}

type submitSoundsRequest struct {
	PlayerID string   `json:"player_id" validate:"required,uuid4"`
	SoundIDs []string `json:"sound_ids" validate:"required,min=1,max=3,dive,required,max=64"`
}

type submissionIndexRequest struct {
	PlayerID        string `json:"player_id" validate:"required,uuid4"`
	SubmissionIndex int    `json:"submission_index" validate:"min=0"`
}

type reconnectVoteRequest struct {
	PlayerID        string `json:"player_id" validate:"required,uuid4"`
	ContinueWithout bool   `json:"continue_without"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := readJSON(r.Body, dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dest); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func roomCode(r *http.Request) string {
	return normalizeCode(chi.URLParam(r, "code"))
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "create") {
		return
	}
	var req createRoomRequest
	if !s.decode(w, r, &req) {
		return
	}
	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.cfg.DefaultMaxRounds
	}
	maxScore := req.MaxScore
	if maxScore == 0 {
		maxScore = s.cfg.DefaultMaxScore
	}
	room, player := s.store.CreateRoom(maxRounds, maxScore, strings.TrimSpace(req.Name), req.Color, req.Emoji)
	s.persistRoom(room)
	log.Info().Str("room_code", room.Code).Str("player_id", player.ID).Msg("room created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"code":      room.Code,
		"player_id": player.ID,
		"room":      snapshot(room),
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	summaries := s.store.ListSummaries()
	rooms := make([]map[string]any, 0, len(summaries))
	for _, summary := range summaries {
		rooms = append(rooms, map[string]any{
			"code":    summary.Code,
			"phase":   summary.Phase,
			"players": summary.Players,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := s.store.GetRoom(roomCode(r))
	if !ok {
		writeRejection(w, errRoomNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "join") {
		return
	}
	var req joinRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, player, err := s.store.AddPlayer(roomCode(r), strings.TrimSpace(req.Name), req.Color, req.Emoji)
	if err != nil {
		writeRejection(w, err)
		return
	}
	log.Info().Str("room_code", room.Code).Str("player_id", player.ID).Str("player_name", player.Name).Msg("player joined")
	writeJSON(w, http.StatusOK, map[string]any{
		"code":      room.Code,
		"player_id": player.ID,
		"room":      snapshot(room),
	})
	s.broadcastRoomUpdate(room)
}

func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "reconnect") {
		return
	}
	var req playerRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.Reconnect(roomCode(r), req.PlayerID)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "add_bot") {
		return
	}
	var req addBotRequest
	if !s.decode(w, r, &req) {
		return
	}
	code := roomCode(r)
	room, ok := s.store.GetRoom(code)
	if !ok {
		writeRejection(w, errRoomNotFound)
		return
	}
	requester := room.FindPlayer(req.PlayerID)
	if requester == nil {
		writeRejection(w, rejectNotFound("player not found"))
		return
	}
	if !requester.IsVIP {
		writeRejection(w, rejectNotAuthorized("only the VIP can add bots"))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Bot %d", len(room.Players))
	}
	room, bot, err := s.store.AddBot(code, name)
	if err != nil {
		writeRejection(w, err)
		return
	}
	log.Info().Str("room_code", room.Code).Str("player_id", bot.ID).Str("player_name", bot.Name).Msg("bot added")
	writeJSON(w, http.StatusOK, map[string]any{
		"player_id": bot.ID,
		"room":      snapshot(room),
	})
	s.broadcastRoomUpdate(room)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "start") {
		return
	}
	var req playerRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.StartGame(roomCode(r), req.PlayerID)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleSelectPrompt(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "prompt") {
		return
	}
	var req selectPromptRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.SelectPrompt(roomCode(r), req.PlayerID, req.PromptID)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleSubmitSounds(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "submit") {
		return
	}
	var req submitSoundsRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.SubmitSounds(roomCode(r), req.PlayerID, req.SoundIDs)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleJudgeSubmission(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "judge") {
		return
	}
	var req submissionIndexRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.JudgeSubmission(roomCode(r), req.PlayerID, req.SubmissionIndex)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleLikeSubmission(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "like") {
		return
	}
	var req submissionIndexRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.LikeSubmission(roomCode(r), req.PlayerID, req.SubmissionIndex)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleRefreshSounds(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "refresh_sounds") {
		return
	}
	var req playerRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.RefreshSounds(roomCode(r), req.PlayerID)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleTripleSound(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "triple_sound") {
		return
	}
	var req playerRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.ActivateTripleSound(roomCode(r), req.PlayerID)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleNuclearOption(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "nuclear") {
		return
	}
	var req playerRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.NuclearOption(roomCode(r), req.PlayerID)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

// handlePlaybackNext is the main screen pulling the next submission.
// An exhausted queue reports a nil submission and the room moves to
// judging.
func (s *Server) handlePlaybackNext(w http.ResponseWriter, r *http.Request) {
	play, room, err := s.NextSubmission(roomCode(r))
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submission": play.Submission,
		"index":      play.Index,
		"remaining":  play.Remaining,
		"phase":      room.Phase,
	})
}

func (s *Server) handleJudgingPlayback(w http.ResponseWriter, r *http.Request) {
	var req submissionIndexRequest
	if !s.decode(w, r, &req) {
		return
	}
	success, err := s.JudgingPlayback(roomCode(r), req.PlayerID, req.SubmissionIndex)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": success})
}

func (s *Server) handleWinnerAudioComplete(w http.ResponseWriter, r *http.Request) {
	room, err := s.WinnerAudioComplete(roomCode(r))
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}

func (s *Server) handleReconnectVote(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "reconnect_vote") {
		return
	}
	var req reconnectVoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.CastReconnectVote(roomCode(r), req.PlayerID, req.ContinueWithout)
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(room))
}
