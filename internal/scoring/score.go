package scoring

import (
	"math"

	"backend/internal/models"
)

// Points is the fixed point ladder applied before room weighting.
// Passed explicitly so tests can override it; not user-tunable.
type Points struct {
	Easy        int
	Medium      int
	Hard        int
	CommitScale float64
}

// DefaultPoints weights harder problems above easier ones and scales raw
// commit counts down so commit volume cannot dominate problem solving.
var DefaultPoints = Points{
	Easy:        1,
	Medium:      2,
	Hard:        3,
	CommitScale: 0.1,
}

// Score computes the weighted total score for one participant.
// Truncation (not rounding) is applied both at the commit-scaling step and
// at the final weighted sum; this must stay reproducible bit-for-bit, so
// only integers ever leave this function.
func Score(stats models.ParticipantStats, cfg models.ScoringConfig, pts Points) int {
	leetcodeScore := stats.LeetCode.EasySolved*pts.Easy +
		stats.LeetCode.MediumSolved*pts.Medium +
		stats.LeetCode.HardSolved*pts.Hard

	githubScore := int(math.Floor(float64(stats.GitHub.TotalCommits) * pts.CommitScale))

	total := math.Floor(float64(leetcodeScore)*cfg.WeightLeetCode + float64(githubScore)*cfg.WeightGitHub)

	return int(total)
}
