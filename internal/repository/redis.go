package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// roomLeaderboardKeyFormat is the Redis key for one room's cached leaderboard
	roomLeaderboardKeyFormat = "leaderboard:room:%d"

	// VersionsKey is the Redis hash tracking a version counter per room.
	// The WebSocket hub polls this hash for efficient change detection.
	VersionsKey = "leaderboard:versions"
)

// RedisRepository handles all Redis operations
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis repository
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
	}
}

func roomLeaderboardKey(roomID uint) string {
	return fmt.Sprintf(roomLeaderboardKeyFormat, roomID)
}

// CacheLeaderboard stores a freshly computed leaderboard and bumps the
// room's version counter in one pipeline, so readers never observe the
// new rows without the version change (or vice versa)
func (r *RedisRepository) CacheLeaderboard(ctx context.Context, roomID uint, rows []models.LeaderboardRow, ttl time.Duration) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, roomLeaderboardKey(roomID), payload, ttl)
	pipe.HIncrBy(ctx, VersionsKey, strconv.FormatUint(uint64(roomID), 10), 1)

	_, err = pipe.Exec(ctx)
	return err
}

// GetCachedLeaderboard retrieves a room's cached leaderboard.
// Returns (nil, nil) on a cache miss.
func (r *RedisRepository) GetCachedLeaderboard(ctx context.Context, roomID uint) ([]models.LeaderboardRow, error) {
	payload, err := r.client.Get(ctx, roomLeaderboardKey(roomID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rows []models.LeaderboardRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("invalid cached leaderboard for room %d: %w", roomID, err)
	}
	return rows, nil
}

// InvalidateLeaderboard drops a room's cached leaderboard (e.g. after a
// join/leave, so the next read recomputes)
func (r *RedisRepository) InvalidateLeaderboard(ctx context.Context, roomID uint) error {
	return r.client.Del(ctx, roomLeaderboardKey(roomID)).Err()
}

// GetRoomVersion returns the version counter for one room (0 if never set)
func (r *RedisRepository) GetRoomVersion(ctx context.Context, roomID uint) (int64, error) {
	field := strconv.FormatUint(uint64(roomID), 10)
	versionStr, err := r.client.HGet(ctx, VersionsKey, field).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}

	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version format: %w", err)
	}
	return version, nil
}

// GetRoomVersions returns the version counter of every room that has one
func (r *RedisRepository) GetRoomVersions(ctx context.Context) (map[uint]int64, error) {
	fields, err := r.client.HGetAll(ctx, VersionsKey).Result()
	if err != nil {
		return nil, err
	}

	versions := make(map[uint]int64, len(fields))
	for field, versionStr := range fields {
		roomID, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		version, err := strconv.ParseInt(versionStr, 10, 64)
		if err != nil {
			continue
		}
		versions[uint(roomID)] = version
	}
	return versions, nil
}

// Ping checks if Redis is reachable
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
