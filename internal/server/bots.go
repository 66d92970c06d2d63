package server

import (
	"math/rand"
	"time"
)

// Bots run on a minimal autopilot: they pick a random prompt when
// judging, submit a random two-sound combination, and crown a random
// winner. Every action goes through the normal state-machine entry
// points, so stale schedules are rejected like any other out-of-phase
// call.

func (s *Server) botDelay() time.Duration {
	return time.Duration(s.cfg.BotActionDelaySeconds) * time.Second
}

func (s *Server) maybeScheduleBotPrompt(room *Room) {
	judge := room.FindPlayer(room.CurrentJudgeID)
	if judge == nil || !judge.IsBot {
		return
	}
	code := room.Code
	time.AfterFunc(s.botDelay(), func() {
		s.autoSelectPrompt(code)
	})
}

func (s *Server) maybeScheduleBotSubmissions(room *Room) {
	code := room.Code
	for i := range room.Players {
		p := &room.Players[i]
		if !p.IsBot || p.Absent || p.ID == room.CurrentJudgeID {
			continue
		}
		botID := p.ID
		soundSet := append([]string(nil), p.SoundSet...)
		time.AfterFunc(s.botDelay(), func() {
			picks := pickRandomSounds(soundSet, 2)
			if len(picks) == 0 {
				return
			}
			_, _ = s.SubmitSounds(code, botID, picks)
		})
	}
}

func (s *Server) maybeScheduleBotJudge(room *Room) {
	judge := room.FindPlayer(room.CurrentJudgeID)
	if judge == nil || !judge.IsBot {
		return
	}
	code := room.Code
	judgeID := judge.ID
	count := len(room.Submissions)
	time.AfterFunc(s.botDelay(), func() {
		if count == 0 {
			return
		}
		_, _ = s.JudgeSubmission(code, judgeID, rand.Intn(count))
	})
}

func pickRandomSounds(set []string, n int) []string {
	if len(set) == 0 {
		return nil
	}
	if n > len(set) {
		n = len(set)
	}
	indexes := rand.Perm(len(set))[:n]
	picks := make([]string, 0, n)
	for _, idx := range indexes {
		picks = append(picks, set[idx])
	}
	return picks
}
