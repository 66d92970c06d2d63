package server

import (
	"time"

	"sound-clash/internal/catalog"
)

const (
	phaseLobby           = "LOBBY"
	phaseJudgeSelection  = "JUDGE_SELECTION"
	phasePromptSelection = "PROMPT_SELECTION"
	phaseSoundSelection  = "SOUND_SELECTION"
	phasePlayback        = "PLAYBACK"
	phaseJudging         = "JUDGING"
	phaseRoundResults    = "ROUND_RESULTS"
	phaseGameOver        = "GAME_OVER"
	phasePaused          = "PAUSED_FOR_DISCONNECTION"
)

const (
	wsRolePlayer  = "player"
	wsRoleViewer  = "viewer"
	wsRoleDisplay = "display"
)

const (
	minSubmissionSounds    = 1
	maxSubmissionSounds    = 2
	tripleSubmissionSounds = 3
)

type Room struct {
	Code           string
	DBID           uint
	Phase          string
	PhaseStartedAt time.Time
	// PausedPhase holds the in-round phase to restore when the
	// disconnection overlay lifts.
	PausedPhase     string
	PausedTimerKind string
	PausedTimeLeft  int

	Players      []Player
	CurrentRound int
	MaxRounds    int
	MaxScore     int

	CurrentJudgeID   string
	CurrentPrompt    *catalog.Prompt
	AvailablePrompts []catalog.Prompt
	UsedPromptIDs    map[string]struct{}

	Submissions     []Submission
	RandomizedOrder []int
	PlaybackCursor  int

	Disconnected []DisconnectedPlayer
	Reconnect    *ReconnectState
	// PendingDisconnects queues players who dropped while another
	// disconnect was already being handled. One at a time.
	PendingDisconnects []string

	LastWinnerID          string
	LastWinnerName        string
	LastWinningSubmission *Submission

	MainScreens  int
	LastActivity time.Time
}

type Player struct {
	ID        string
	Name      string
	Color     string
	Emoji     string
	Score     int
	LikeScore int
	IsVIP     bool
	IsBot     bool
	Connected bool
	// Absent marks a player evicted by a reconnection vote. They stay in
	// the roster for scoreboard display but are skipped everywhere else.
	Absent bool

	SoundSet             []string
	HasUsedRefresh       bool
	HasUsedTripleSound   bool
	HasUsedNuclearOption bool
}

type Submission struct {
	PlayerID   string
	PlayerName string
	Sounds     []string
	LikeCount  int
	LikedBy    map[string]struct{}
}

type DisconnectedPlayer struct {
	PlayerID string
	Name     string
}

// ReconnectState tracks a single disconnect being handled: first a wait
// window for the player to come back, then, if that expires, a vote.
type ReconnectState struct {
	PlayerID     string
	PlayerName   string
	WaitDeadline time.Time
	VoteOpen     bool
	VoteDeadline time.Time
	Votes        map[string]bool
}

type RoomSummary struct {
	Code    string
	Phase   string
	Players int
}

func (r *Room) FindPlayer(playerID string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

func (r *Room) FindPlayerByName(name string) *Player {
	for i := range r.Players {
		if r.Players[i].Name == name {
			return &r.Players[i]
		}
	}
	return nil
}

// activePlayers are roster members still part of the game.
func (r *Room) activePlayers() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for i := range r.Players {
		if r.Players[i].Absent {
			continue
		}
		active = append(active, &r.Players[i])
	}
	return active
}

// connectedVoters are the players eligible to vote on a reconnection:
// connected, not evicted, and not the player being waited on.
func (r *Room) connectedVoters() []*Player {
	voters := make([]*Player, 0, len(r.Players))
	for i := range r.Players {
		p := &r.Players[i]
		if p.Absent || !p.Connected {
			continue
		}
		if r.Reconnect != nil && p.ID == r.Reconnect.PlayerID {
			continue
		}
		voters = append(voters, p)
	}
	return voters
}

// submissionQuorum counts the players whose submissions are awaited this
// round: active, non-judge, and either connected or already submitted.
func (r *Room) submissionQuorum() int {
	count := 0
	for i := range r.Players {
		p := &r.Players[i]
		if p.Absent || p.ID == r.CurrentJudgeID {
			continue
		}
		if !p.Connected && !r.hasSubmitted(p.ID) {
			continue
		}
		count++
	}
	return count
}

func (r *Room) hasSubmitted(playerID string) bool {
	for i := range r.Submissions {
		if r.Submissions[i].PlayerID == playerID {
			return true
		}
	}
	return false
}

func (r *Room) inRound() bool {
	switch r.Phase {
	case phaseLobby, phaseGameOver:
		return false
	}
	return true
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
