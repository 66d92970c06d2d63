package server

import (
	"fmt"
	"math/rand"
)

// addSubmission appends a player's entry to the round ledger. At most
// one entry per player per round; a repeat is refused without touching
// the ledger.
func addSubmission(room *Room, player *Player, soundIDs []string) error {
	if room.hasSubmitted(player.ID) {
		return rejectDuplicate("already submitted")
	}
	limit := maxSubmissionSounds
	if player.HasUsedTripleSound {
		limit = tripleSubmissionSounds
	}
	if len(soundIDs) < minSubmissionSounds || len(soundIDs) > limit {
		return rejectInvalidState(fmt.Sprintf("submission must contain between %d and %d sounds", minSubmissionSounds, limit))
	}
	for _, id := range soundIDs {
		if !containsSound(player.SoundSet, id) {
			return rejectNotFound("sound is not in your set")
		}
	}
	room.Submissions = append(room.Submissions, Submission{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Sounds:     append([]string(nil), soundIDs...),
		LikedBy:    make(map[string]struct{}),
	})
	return nil
}

// randomizeSubmissions computes the judge-facing presentation order,
// decoupled from arrival order and deterministic for a given seed.
func randomizeSubmissions(room *Room, seed int64) {
	order := make([]int, len(room.Submissions))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	room.RandomizedOrder = order
}

// submissionAt resolves a judge-facing index into the ledger entry.
func submissionAt(room *Room, index int) *Submission {
	if index < 0 || index >= len(room.RandomizedOrder) {
		return nil
	}
	ledgerIndex := room.RandomizedOrder[index]
	if ledgerIndex < 0 || ledgerIndex >= len(room.Submissions) {
		return nil
	}
	return &room.Submissions[ledgerIndex]
}

func containsSound(set []string, soundID string) bool {
	for _, id := range set {
		if id == soundID {
			return true
		}
	}
	return false
}
