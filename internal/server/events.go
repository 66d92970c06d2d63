package server

// The realtime surface is a closed set of typed events per direction.
// Server→client events implement serverEvent; the hub wraps them as
// {"type": ..., "data": ...} on the wire.
type serverEvent interface {
	eventType() string
}

type RoomUpdated struct {
	Room RoomState `json:"room"`
}

func (RoomUpdated) eventType() string { return "roomUpdated" }

type GameStateChanged struct {
	Phase    string `json:"phase"`
	Round    int    `json:"round"`
	JudgeID  string `json:"judgeId,omitempty"`
	PromptID string `json:"promptId,omitempty"`
}

func (GameStateChanged) eventType() string { return "gameStateChanged" }

type JudgeSelected struct {
	JudgeID   string `json:"judgeId"`
	JudgeName string `json:"judgeName"`
	Round     int    `json:"round"`
}

func (JudgeSelected) eventType() string { return "judgeSelected" }

type PromptSelected struct {
	PromptID   string `json:"promptId"`
	PromptText string `json:"promptText"`
}

func (PromptSelected) eventType() string { return "promptSelected" }

type SoundSubmitted struct {
	PlayerID       string `json:"playerId"`
	PlayerName     string `json:"playerName"`
	SubmittedCount int    `json:"submittedCount"`
	ExpectedCount  int    `json:"expectedCount"`
}

func (SoundSubmitted) eventType() string { return "soundSubmitted" }

type SoundsRefreshed struct {
	PlayerID string   `json:"playerId"`
	SoundSet []string `json:"soundSet"`
}

func (SoundsRefreshed) eventType() string { return "soundsRefreshed" }

type TripleSoundActivated struct {
	PlayerID string `json:"playerId"`
}

func (TripleSoundActivated) eventType() string { return "tripleSoundActivated" }

type RoundComplete struct {
	WinnerID   string          `json:"winnerId,omitempty"`
	WinnerName string          `json:"winnerName,omitempty"`
	Submission *SubmissionView `json:"submission,omitempty"`
	Round      int             `json:"round"`
}

func (RoundComplete) eventType() string { return "roundComplete" }

type TimeUpdate struct {
	Phase    string `json:"phase"`
	TimeLeft int    `json:"timeLeft"`
}

func (TimeUpdate) eventType() string { return "timeUpdate" }

type PlayerDisconnected struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

func (PlayerDisconnected) eventType() string { return "playerDisconnected" }

type PlayerReconnected struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

func (PlayerReconnected) eventType() string { return "playerReconnected" }

type GamePausedForDisconnection struct {
	DisconnectedPlayerName string `json:"disconnectedPlayerName"`
	TimeLeft               int    `json:"timeLeft"`
}

func (GamePausedForDisconnection) eventType() string { return "gamePausedForDisconnection" }

type ReconnectionVoteRequest struct {
	DisconnectedPlayerName string `json:"disconnectedPlayerName"`
	TimeLeft               int    `json:"timeLeft"`
}

func (ReconnectionVoteRequest) eventType() string { return "reconnectionVoteRequest" }

type ReconnectionVoteUpdate struct {
	VotesToContinue int `json:"votesToContinue"`
	VotesToWait     int `json:"votesToWait"`
	VotersTotal     int `json:"votersTotal"`
}

func (ReconnectionVoteUpdate) eventType() string { return "reconnectionVoteUpdate" }

type ReconnectionVoteResult struct {
	ContinueWithoutPlayer bool   `json:"continueWithoutPlayer"`
	PlayerName            string `json:"playerName"`
}

func (ReconnectionVoteResult) eventType() string { return "reconnectionVoteResult" }

type ReconnectionTimeUpdate struct {
	TimeLeft int  `json:"timeLeft"`
	Voting   bool `json:"voting"`
}

func (ReconnectionTimeUpdate) eventType() string { return "reconnectionTimeUpdate" }

type GameResumed struct {
	Phase string `json:"phase"`
}

func (GameResumed) eventType() string { return "gameResumed" }

type NuclearOptionTriggered struct {
	JudgeID   string `json:"judgeId"`
	JudgeName string `json:"judgeName"`
}

func (NuclearOptionTriggered) eventType() string { return "nuclearOptionTriggered" }

// PlaySubmission is directed at the main screen: one submission to play,
// or null when the sequence is exhausted.
type PlaySubmission struct {
	Submission *SubmissionView `json:"submission"`
	Index      int             `json:"index"`
	Remaining  int             `json:"remaining"`
}

func (PlaySubmission) eventType() string { return "playSubmission" }
