// Package scoring contains the pure leaderboard core: normalizing raw
// adapter payloads, computing weighted scores and assigning ranks.
// Nothing in this package performs I/O.
package scoring

import (
	"backend/internal/adapters"
	"backend/internal/models"
)

// Normalize converts raw adapter payloads into a canonical stats record.
// A nil payload means the source was absent or unavailable and maps to a
// zero-valued block. Sources are untrusted, so negative counts clamp to 0.
func Normalize(leetcode *adapters.LeetCodeProfile, github *adapters.GitHubActivity) models.ParticipantStats {
	var stats models.ParticipantStats

	if leetcode != nil {
		stats.LeetCode = models.LeetCodeStats{
			EasySolved:   clamp(leetcode.EasySolved),
			MediumSolved: clamp(leetcode.MediumSolved),
			HardSolved:   clamp(leetcode.HardSolved),
			TotalSolved:  clamp(leetcode.TotalSolved),
		}
	}

	if github != nil {
		stats.GitHub = models.GitHubStats{
			TotalCommits:   clamp(github.TotalCommits),
			WeeklyCommits:  clamp(github.WeeklyCommits),
			MonthlyCommits: clamp(github.MonthlyCommits),
			Method:         github.Method,
		}
	}

	return stats
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
