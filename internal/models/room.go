package models

import (
	"time"
)

// Room is a scoping container of participants sharing one scoring config
// and one leaderboard
type Room struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	Code            string        `gorm:"uniqueIndex;not null;size:8" json:"code"`
	Name            string        `gorm:"not null" json:"name"`
	IsPublic        bool          `gorm:"not null;default:true" json:"is_public"`
	MaxParticipants int           `gorm:"not null;default:50" json:"max_participants"`
	WeightLeetCode  *float64      `gorm:"column:weight_leetcode" json:"weight_leetcode"`
	WeightGitHub    *float64      `gorm:"column:weight_github" json:"weight_github"`
	Participants    []Participant `gorm:"foreignKey:RoomID" json:"participants,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Room) TableName() string {
	return "rooms"
}

// ScoringConfig returns the room's scoring weights.
// A room persisted without weights cannot be scored; silently substituting
// defaults here would misrepresent how the leaderboard was computed.
func (r *Room) ScoringConfig() (ScoringConfig, error) {
	if r.WeightLeetCode == nil || r.WeightGitHub == nil {
		return ScoringConfig{}, ErrMissingScoringConfig
	}
	return ScoringConfig{
		WeightLeetCode: *r.WeightLeetCode,
		WeightGitHub:   *r.WeightGitHub,
	}, nil
}

// Participant represents a member of a room with optional external handles.
// Handles are immutable after join; only IsActive changes (leave/rejoin).
type Participant struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	RoomID         uint      `gorm:"not null;uniqueIndex:idx_participants_room_external" json:"room_id"`
	ExternalID     string    `gorm:"not null;uniqueIndex:idx_participants_room_external" json:"external_id"`
	DisplayName    string    `gorm:"not null" json:"display_name"`
	AvatarURL      string    `json:"avatar_url"`
	LeetCodeHandle string    `json:"leetcode_handle"`
	GitHubHandle   string    `json:"github_handle"`
	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Participant) TableName() string {
	return "participants"
}

// LeaderboardSnapshot is a persisted row of a computed leaderboard.
// Written asynchronously by the worker pool after each refresh.
type LeaderboardSnapshot struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	RoomID        uint      `gorm:"not null;index" json:"room_id"`
	ParticipantID uint      `gorm:"not null" json:"participant_id"`
	TotalScore    int       `gorm:"not null" json:"total_score"`
	Rank          int       `gorm:"not null" json:"rank"`
	ComputedAt    time.Time `gorm:"not null;index" json:"computed_at"`
}

// TableName specifies the table name for GORM
func (LeaderboardSnapshot) TableName() string {
	return "leaderboard_snapshots"
}

// CreateRoomRequest represents the request payload for creating a room
type CreateRoomRequest struct {
	Name            string   `json:"name" validate:"required,min=3,max=80"`
	IsPublic        *bool    `json:"is_public"`
	MaxParticipants int      `json:"max_participants" validate:"omitempty,min=2,max=200"`
	WeightLeetCode  *float64 `json:"weight_leetcode"`
	WeightGitHub    *float64 `json:"weight_github"`
}

// JoinRoomRequest represents the request payload for joining a room
type JoinRoomRequest struct {
	ExternalID     string `json:"external_id" validate:"required,min=1,max=128"`
	DisplayName    string `json:"display_name" validate:"required,min=1,max=80"`
	AvatarURL      string `json:"avatar_url" validate:"omitempty,url"`
	LeetCodeHandle string `json:"leetcode_handle" validate:"omitempty,min=1,max=64"`
	GitHubHandle   string `json:"github_handle" validate:"omitempty,min=1,max=64"`
}

// LeaveRoomRequest represents the request payload for leaving a room
type LeaveRoomRequest struct {
	ExternalID string `json:"external_id" validate:"required"`
}

// UpdateWeightsRequest represents the request payload for updating room weights
type UpdateWeightsRequest struct {
	WeightLeetCode float64 `json:"weight_leetcode"`
	WeightGitHub   float64 `json:"weight_github"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
