package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const snapshotBatchSize = 200

// ErrRoomNotFound is returned when a room id or code does not exist
var ErrRoomNotFound = errors.New("room not found")

// ErrParticipantNotFound is returned when a participant lookup fails
var ErrParticipantNotFound = errors.New("participant not found")

// PostgresRepository handles all PostgreSQL operations
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new Postgres repository
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// CreateRoom persists a new room
func (r *PostgresRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetRoom retrieves a room with its participants in join order
func (r *PostgresRepository) GetRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.id ASC")
		}).
		First(&room, roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// GetRoomByCode retrieves a room by its join code
func (r *PostgresRepository) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.id ASC")
		}).
		Where("code = ?", code).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// ListPublicRooms retrieves public rooms, newest first
func (r *PostgresRepository) ListPublicRooms(ctx context.Context, limit int) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rooms).Error
	return rooms, err
}

// ListRoomIDs retrieves all room ids (used by the background refresher)
func (r *PostgresRepository) ListRoomIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Room{}).Pluck("id", &ids).Error
	return ids, err
}

// UpdateRoomWeights updates a room's scoring weights
func (r *PostgresRepository) UpdateRoomWeights(ctx context.Context, roomID uint, weightLeetCode, weightGitHub float64) error {
	res := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"weight_leetcode": weightLeetCode,
			"weight_github":   weightGitHub,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// UpsertParticipant adds a participant to a room, reactivating them if
// they joined before and left
func (r *PostgresRepository) UpsertParticipant(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "display_name", "avatar_url", "updated_at"}),
	}).Create(participant).Error
}

// GetParticipant retrieves a participant by id
func (r *PostgresRepository) GetParticipant(ctx context.Context, participantID uint) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).First(&participant, participantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// SetParticipantActive flips a participant's active flag (join/leave)
func (r *PostgresRepository) SetParticipantActive(ctx context.Context, roomID uint, externalID string, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND external_id = ?", roomID, externalID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// CountActiveParticipants returns the number of active participants in a room
func (r *PostgresRepository) CountActiveParticipants(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&count).Error
	return count, err
}

// SaveSnapshot persists one computed leaderboard as snapshot rows
func (r *PostgresRepository) SaveSnapshot(ctx context.Context, roomID uint, rows []models.LeaderboardRow, computedAt time.Time) error {
	if len(rows) == 0 {
		return nil
	}

	snapshots := make([]models.LeaderboardSnapshot, len(rows))
	for i, row := range rows {
		snapshots[i] = models.LeaderboardSnapshot{
			RoomID:        roomID,
			ParticipantID: row.ParticipantID,
			TotalScore:    row.TotalScore,
			Rank:          row.Rank,
			ComputedAt:    computedAt,
		}
	}

	if err := r.db.WithContext(ctx).CreateInBatches(snapshots, snapshotBatchSize).Error; err != nil {
		return fmt.Errorf("failed to persist snapshot for room %d: %w", roomID, err)
	}
	return nil
}

// BulkInsertParticipants efficiently inserts multiple participants (seeder)
func (r *PostgresRepository) BulkInsertParticipants(ctx context.Context, participants []models.Participant, batchSize int) error {
	return r.db.WithContext(ctx).CreateInBatches(participants, batchSize).Error
}

// Ping checks if database is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs database migrations
func (r *PostgresRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.Room{},
		&models.Participant{},
		&models.LeaderboardSnapshot{},
	)
}
