package scoring

import (
	"testing"

	"backend/internal/adapters"
	"backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("both sources absent yield fully zero stats", func(t *testing.T) {
		stats := Normalize(nil, nil)

		assert.Equal(t, models.ParticipantStats{}, stats)
		assert.Empty(t, stats.GitHub.Method)
	})

	t.Run("full payloads map field by field", func(t *testing.T) {
		stats := Normalize(
			&adapters.LeetCodeProfile{EasySolved: 12, MediumSolved: 7, HardSolved: 2, TotalSolved: 21},
			&adapters.GitHubActivity{TotalCommits: 340, WeeklyCommits: 9, MonthlyCommits: 41, Method: models.CommitMethodPrecise},
		)

		assert.Equal(t, models.LeetCodeStats{EasySolved: 12, MediumSolved: 7, HardSolved: 2, TotalSolved: 21}, stats.LeetCode)
		assert.Equal(t, 340, stats.GitHub.TotalCommits)
		assert.Equal(t, 9, stats.GitHub.WeeklyCommits)
		assert.Equal(t, 41, stats.GitHub.MonthlyCommits)
	})

	t.Run("one absent source zeros only its block", func(t *testing.T) {
		stats := Normalize(&adapters.LeetCodeProfile{EasySolved: 3, TotalSolved: 3}, nil)

		assert.Equal(t, 3, stats.LeetCode.EasySolved)
		assert.Equal(t, models.GitHubStats{}, stats.GitHub)
	})

	t.Run("partial payload fields default to zero", func(t *testing.T) {
		stats := Normalize(&adapters.LeetCodeProfile{MediumSolved: 5}, &adapters.GitHubActivity{WeeklyCommits: 2})

		assert.Equal(t, 0, stats.LeetCode.EasySolved)
		assert.Equal(t, 5, stats.LeetCode.MediumSolved)
		assert.Equal(t, 0, stats.GitHub.TotalCommits)
		assert.Equal(t, 2, stats.GitHub.WeeklyCommits)
	})

	t.Run("negative counts from untrusted sources clamp to zero", func(t *testing.T) {
		stats := Normalize(
			&adapters.LeetCodeProfile{EasySolved: -4, MediumSolved: 6, HardSolved: -1, TotalSolved: -20},
			&adapters.GitHubActivity{TotalCommits: -100, WeeklyCommits: -1, MonthlyCommits: 3},
		)

		assert.Equal(t, models.LeetCodeStats{EasySolved: 0, MediumSolved: 6, HardSolved: 0, TotalSolved: 0}, stats.LeetCode)
		assert.Equal(t, 0, stats.GitHub.TotalCommits)
		assert.Equal(t, 0, stats.GitHub.WeeklyCommits)
		assert.Equal(t, 3, stats.GitHub.MonthlyCommits)
	})

	t.Run("method tag propagates unchanged", func(t *testing.T) {
		precise := Normalize(nil, &adapters.GitHubActivity{Method: models.CommitMethodPrecise})
		estimated := Normalize(nil, &adapters.GitHubActivity{Method: models.CommitMethodEstimated})

		assert.Equal(t, models.CommitMethodPrecise, precise.GitHub.Method)
		assert.Equal(t, models.CommitMethodEstimated, estimated.GitHub.Method)
	})
}
