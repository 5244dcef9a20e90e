package models

import (
	"errors"
	"time"
)

// ErrMissingScoringConfig is returned when a room has no scoring weights.
// The affected room's computation fails; other rooms are unaffected.
var ErrMissingScoringConfig = errors.New("room has no scoring config")

// CommitMethod describes how an adapter derived a commit total
type CommitMethod string

const (
	// CommitMethodPrecise means the total came from an exact count query
	CommitMethodPrecise CommitMethod = "precise"

	// CommitMethodEstimated means the total was extrapolated from recent events
	CommitMethodEstimated CommitMethod = "estimated"
)

// LeetCodeStats holds solved-problem counts for one participant
type LeetCodeStats struct {
	EasySolved   int `json:"easy_solved"`
	MediumSolved int `json:"medium_solved"`
	HardSolved   int `json:"hard_solved"`
	TotalSolved  int `json:"total_solved"`
}

// GitHubStats holds commit activity for one participant.
// Method reports how TotalCommits was derived and is empty when the
// source was unavailable; it propagates unchanged to the leaderboard row.
type GitHubStats struct {
	TotalCommits   int          `json:"total_commits"`
	WeeklyCommits  int          `json:"weekly_commits"`
	MonthlyCommits int          `json:"monthly_commits"`
	Method         CommitMethod `json:"method,omitempty"`
}

// ParticipantStats is the canonical per-participant statistics record.
// All numeric fields are always present; a failed or absent source shows
// up as a zero-valued block, indistinguishable here from a dormant account.
type ParticipantStats struct {
	LeetCode LeetCodeStats `json:"leetcode"`
	GitHub   GitHubStats   `json:"github"`
}

// ScoringConfig holds room-scoped weights for the score calculation.
// Weights are not required to sum to 1 and are never normalized.
type ScoringConfig struct {
	WeightLeetCode float64 `json:"weight_leetcode"`
	WeightGitHub   float64 `json:"weight_github"`
}

// LeaderboardRow is a single ranked entry of a computed leaderboard.
// Rows are created fresh on every computation and never mutated.
type LeaderboardRow struct {
	ParticipantID uint             `json:"participant_id"`
	ExternalID    string           `json:"external_id"`
	DisplayName   string           `json:"display_name"`
	AvatarURL     string           `json:"avatar_url,omitempty"`
	Stats         ParticipantStats `json:"stats"`
	TotalScore    int              `json:"total_score"`
	Rank          int              `json:"rank"`
	LastUpdated   time.Time        `json:"last_updated"`
}

// LeaderboardResponse represents the room leaderboard response
type LeaderboardResponse struct {
	RoomID      uint             `json:"room_id"`
	RoomCode    string           `json:"room_code"`
	Leaderboard []LeaderboardRow `json:"leaderboard"`
	Cached      bool             `json:"cached"`
}
