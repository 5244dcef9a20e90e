package scoring

import (
	"sort"
	"time"

	"backend/internal/models"
)

// Rank orders rows by total score descending and assigns dense 1-based
// ranks. The sort is stable, so participants with equal scores keep their
// input order and still receive distinct consecutive ranks (1-2-3-4, not
// shared 1-1-3). Every row is stamped with the time of this ranking pass.
func Rank(rows []models.LeaderboardRow, now time.Time) []models.LeaderboardRow {
	ranked := make([]models.LeaderboardRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].LastUpdated = now
	}

	return ranked
}
