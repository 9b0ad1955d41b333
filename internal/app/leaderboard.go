package app

import (
	"sort"

	"trivia-service/internal/domain"
)

// ComputeLeaderboard ranks every user with at least one answer.
// Order: score desc, then who answered first in the session, then user id.
func ComputeLeaderboard(userScores map[string]domain.UserScore) []domain.LeaderboardEntry {
	type ranked struct {
		entry domain.LeaderboardEntry
		seq   int
	}
	rows := make([]ranked, 0, len(userScores))
	for userID, score := range userScores {
		if len(score.Answers) == 0 {
			continue
		}
		rows = append(rows, ranked{
			entry: domain.LeaderboardEntry{UserID: userID, CurrentGameScore: score.CurrentGameScore},
			seq:   score.Seq,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].entry.CurrentGameScore != rows[j].entry.CurrentGameScore {
			return rows[i].entry.CurrentGameScore > rows[j].entry.CurrentGameScore
		}
		if rows[i].seq != rows[j].seq {
			return rows[i].seq < rows[j].seq
		}
		return rows[i].entry.UserID < rows[j].entry.UserID
	})

	entries := make([]domain.LeaderboardEntry, len(rows))
	for i, r := range rows {
		entries[i] = r.entry
	}
	return entries
}
