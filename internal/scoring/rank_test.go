package scoring

import (
	"testing"
	"time"

	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(name string, score int) models.LeaderboardRow {
	return models.LeaderboardRow{DisplayName: name, TotalScore: score}
}

func TestRank(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("distinct scores get ranks 1..N in descending score order", func(t *testing.T) {
		rows := []models.LeaderboardRow{
			row("carol", 5),
			row("alice", 42),
			row("bob", 17),
		}

		ranked := Rank(rows, now)
		require.Len(t, ranked, 3)

		assert.Equal(t, "alice", ranked[0].DisplayName)
		assert.Equal(t, "bob", ranked[1].DisplayName)
		assert.Equal(t, "carol", ranked[2].DisplayName)
		for i, r := range ranked {
			assert.Equal(t, i+1, r.Rank)
		}
	})

	t.Run("ties keep input order and receive distinct dense ranks", func(t *testing.T) {
		rows := []models.LeaderboardRow{
			row("A", 10),
			row("B", 10),
			row("C", 5),
		}

		ranked := Rank(rows, now)
		require.Len(t, ranked, 3)

		assert.Equal(t, "A", ranked[0].DisplayName)
		assert.Equal(t, 1, ranked[0].Rank)
		assert.Equal(t, "B", ranked[1].DisplayName)
		assert.Equal(t, 2, ranked[1].Rank)
		assert.Equal(t, "C", ranked[2].DisplayName)
		assert.Equal(t, 3, ranked[2].Rank)
	})

	t.Run("all-equal scores preserve full input order", func(t *testing.T) {
		rows := []models.LeaderboardRow{
			row("first", 0),
			row("second", 0),
			row("third", 0),
			row("fourth", 0),
		}

		ranked := Rank(rows, now)
		require.Len(t, ranked, 4)

		for i, name := range []string{"first", "second", "third", "fourth"} {
			assert.Equal(t, name, ranked[i].DisplayName)
			assert.Equal(t, i+1, ranked[i].Rank)
		}
	})

	t.Run("negative scores rank below zero scores", func(t *testing.T) {
		rows := []models.LeaderboardRow{
			row("underwater", -12),
			row("dormant", 0),
		}

		ranked := Rank(rows, now)
		assert.Equal(t, "dormant", ranked[0].DisplayName)
		assert.Equal(t, "underwater", ranked[1].DisplayName)
	})

	t.Run("every row is stamped with the ranking pass time", func(t *testing.T) {
		rows := []models.LeaderboardRow{row("a", 3), row("b", 1)}

		ranked := Rank(rows, now)
		for _, r := range ranked {
			assert.Equal(t, now, r.LastUpdated)
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		rows := []models.LeaderboardRow{
			row("low", 1),
			row("high", 9),
		}

		_ = Rank(rows, now)

		assert.Equal(t, "low", rows[0].DisplayName)
		assert.Equal(t, 0, rows[0].Rank)
		assert.True(t, rows[0].LastUpdated.IsZero())
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		rows := []models.LeaderboardRow{
			row("x", 8), row("y", 8), row("z", 20),
		}

		first := Rank(rows, now)
		second := Rank(rows, now)
		assert.Equal(t, first, second)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, Rank(nil, now))
	})
}
