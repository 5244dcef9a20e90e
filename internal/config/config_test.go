package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults apply when env is empty", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 0.6, cfg.Leaderboard.DefaultWeightLeetCode)
		assert.Equal(t, 0.4, cfg.Leaderboard.DefaultWeightGitHub)
		assert.Equal(t, 8*time.Second, cfg.Leaderboard.FetchTimeout)
		assert.Equal(t, "https://leetcode-stats-api.herokuapp.com", cfg.Adapters.LeetCodeBaseURL)
		assert.Equal(t, "https://api.github.com", cfg.Adapters.GitHubBaseURL)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("LEADERBOARD_WEIGHT_LEETCODE", "0.8")
		t.Setenv("LEADERBOARD_FETCH_TIMEOUT", "3s")
		t.Setenv("BACKEND_PORT", "9001")
		t.Setenv("GITHUB_API_URL", "http://localhost:9999")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 0.8, cfg.Leaderboard.DefaultWeightLeetCode)
		assert.Equal(t, 3*time.Second, cfg.Leaderboard.FetchTimeout)
		assert.Equal(t, 9001, cfg.Server.Port)
		assert.Equal(t, "http://localhost:9999", cfg.Adapters.GitHubBaseURL)
	})

	t.Run("dsn prefers the full database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/leadcode")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@db:5432/leadcode", cfg.GetDSN())
	})

	t.Run("malformed numeric env falls back to default", func(t *testing.T) {
		t.Setenv("DB_PORT", "not-a-number")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5432, cfg.Database.Port)
	})
}
