package server

// RoomState is the full client-facing view of a room, broadcast after
// every mutation and served to late joiners so they can reconstruct the
// current screen, including sticky last-round results.
type RoomState struct {
	Code             string           `json:"code"`
	Phase            string           `json:"phase"`
	PausedPhase      string           `json:"pausedPhase,omitempty"`
	CurrentRound     int              `json:"currentRound"`
	MaxRounds        int              `json:"maxRounds"`
	MaxScore         int              `json:"maxScore"`
	CurrentJudgeID   string           `json:"currentJudgeId,omitempty"`
	CurrentPromptID  string           `json:"currentPromptId,omitempty"`
	CurrentPrompt    string           `json:"currentPrompt,omitempty"`
	AvailablePrompts []PromptView     `json:"availablePrompts,omitempty"`
	Players          []PlayerView     `json:"players"`
	Submissions      []SubmissionView `json:"submissions"`
	// RandomizedSubmissions is the judge-facing order, present once the
	// round reaches JUDGING. Playback itself runs in arrival order.
	RandomizedSubmissions []SubmissionView   `json:"randomizedSubmissions,omitempty"`
	PlaybackCursor        int                `json:"playbackCursor"`
	Disconnected          []DisconnectedView `json:"disconnectedPlayers,omitempty"`
	LastWinnerID          string             `json:"lastWinnerId,omitempty"`
	LastWinnerName        string             `json:"lastWinnerName,omitempty"`
	LastWinningSubmission *SubmissionView    `json:"lastWinningSubmission,omitempty"`
	MainScreenCount       int                `json:"mainScreenCount"`
}

type PromptView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type PlayerView struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Color                string   `json:"color"`
	Emoji                string   `json:"emoji"`
	Score                int      `json:"score"`
	LikeScore            int      `json:"likeScore"`
	IsVIP                bool     `json:"isVIP"`
	IsBot                bool     `json:"isBot"`
	Connected            bool     `json:"connected"`
	Absent               bool     `json:"absent"`
	HasSubmitted         bool     `json:"hasSubmitted"`
	SoundSet             []string `json:"soundSet,omitempty"`
	HasUsedRefresh       bool     `json:"hasUsedRefresh"`
	HasUsedTripleSound   bool     `json:"hasUsedTripleSound"`
	HasUsedNuclearOption bool     `json:"hasUsedNuclearOption"`
}

type SubmissionView struct {
	PlayerID   string   `json:"playerId,omitempty"`
	PlayerName string   `json:"playerName,omitempty"`
	Sounds     []string `json:"sounds"`
	LikeCount  int      `json:"likeCount"`
}

type DisconnectedView struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

func snapshot(room *Room) RoomState {
	state := RoomState{
		Code:            room.Code,
		Phase:           room.Phase,
		PausedPhase:     room.PausedPhase,
		CurrentRound:    room.CurrentRound,
		MaxRounds:       room.MaxRounds,
		MaxScore:        room.MaxScore,
		CurrentJudgeID:  room.CurrentJudgeID,
		PlaybackCursor:  room.PlaybackCursor,
		LastWinnerID:    room.LastWinnerID,
		LastWinnerName:  room.LastWinnerName,
		MainScreenCount: room.MainScreens,
	}
	if room.CurrentPrompt != nil {
		state.CurrentPromptID = room.CurrentPrompt.ID
		state.CurrentPrompt = room.CurrentPrompt.Text
	}
	for _, prompt := range room.AvailablePrompts {
		state.AvailablePrompts = append(state.AvailablePrompts, PromptView{ID: prompt.ID, Text: prompt.Text})
	}
	reveal := revealIdentities(room)
	for i := range room.Players {
		p := &room.Players[i]
		state.Players = append(state.Players, PlayerView{
			ID:                   p.ID,
			Name:                 p.Name,
			Color:                p.Color,
			Emoji:                p.Emoji,
			Score:                p.Score,
			LikeScore:            p.LikeScore,
			IsVIP:                p.IsVIP,
			IsBot:                p.IsBot,
			Connected:            p.Connected,
			Absent:               p.Absent,
			HasSubmitted:         room.hasSubmitted(p.ID),
			SoundSet:             p.SoundSet,
			HasUsedRefresh:       p.HasUsedRefresh,
			HasUsedTripleSound:   p.HasUsedTripleSound,
			HasUsedNuclearOption: p.HasUsedNuclearOption,
		})
	}
	state.Submissions = make([]SubmissionView, 0, len(room.Submissions))
	for i := range room.Submissions {
		state.Submissions = append(state.Submissions, submissionView(&room.Submissions[i], reveal))
	}
	for _, idx := range room.RandomizedOrder {
		if idx < 0 || idx >= len(room.Submissions) {
			continue
		}
		state.RandomizedSubmissions = append(state.RandomizedSubmissions, submissionView(&room.Submissions[idx], reveal))
	}
	for _, d := range room.Disconnected {
		state.Disconnected = append(state.Disconnected, DisconnectedView{PlayerID: d.PlayerID, Name: d.Name})
	}
	if room.LastWinningSubmission != nil {
		view := submissionView(room.LastWinningSubmission, true)
		state.LastWinningSubmission = &view
	}
	return state
}

// Submission authorship stays hidden while the judge is still listening
// and deciding; it is revealed once the round has a result.
func revealIdentities(room *Room) bool {
	phase := room.Phase
	if phase == phasePaused {
		phase = room.PausedPhase
	}
	switch phase {
	case phasePlayback, phaseJudging:
		return false
	}
	return true
}

func submissionView(sub *Submission, reveal bool) SubmissionView {
	view := SubmissionView{
		Sounds:    append([]string(nil), sub.Sounds...),
		LikeCount: sub.LikeCount,
	}
	if reveal {
		view.PlayerID = sub.PlayerID
		view.PlayerName = sub.PlayerName
	}
	return view
}
