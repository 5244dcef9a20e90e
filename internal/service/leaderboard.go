package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/internal/adapters"
	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
	"backend/internal/scoring"
	"backend/internal/worker"

	"golang.org/x/sync/errgroup"
)

// LeetCodeFetcher fetches solved-problem counts for one handle
type LeetCodeFetcher interface {
	Fetch(ctx context.Context, handle string) (*adapters.LeetCodeProfile, error)
}

// GitHubFetcher fetches commit activity for one handle
type GitHubFetcher interface {
	Fetch(ctx context.Context, handle string) (*adapters.GitHubActivity, error)
}

// FanOutOptions bounds the per-room stat fan-out
type FanOutOptions struct {
	FetchTimeout   time.Duration
	MaxConcurrency int
	Points         scoring.Points
}

// ComputeLeaderboard fans out stat fetches for every active participant,
// scores them under the room config and returns the ranked rows.
//
// Each participant's fetches fail independently: a timed-out or broken
// source degrades only that participant's stat block to zeros, never the
// room. The ranking pass runs once, after the full set has resolved, so
// every active participant is always present in the result even when both
// providers are down.
func ComputeLeaderboard(
	ctx context.Context,
	participants []models.Participant,
	cfg models.ScoringConfig,
	leetcode LeetCodeFetcher,
	github GitHubFetcher,
	opts FanOutOptions,
) []models.LeaderboardRow {
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = 8 * time.Second
	}
	if opts.MaxConcurrency == 0 {
		opts.MaxConcurrency = 8
	}
	if opts.Points == (scoring.Points{}) {
		opts.Points = scoring.DefaultPoints
	}

	active := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsActive {
			active = append(active, p)
		}
	}

	// Indexed result slot per participant: no shared state between
	// goroutines, and the ranker sees rows in original join order.
	stats := make([]models.ParticipantStats, len(active))

	var g errgroup.Group
	g.SetLimit(opts.MaxConcurrency)

	for i, p := range active {
		i, p := i, p
		g.Go(func() error {
			stats[i] = fetchParticipantStats(ctx, p, leetcode, github, opts.FetchTimeout)
			return nil
		})
	}
	g.Wait()

	rows := make([]models.LeaderboardRow, len(active))
	for i, p := range active {
		rows[i] = models.LeaderboardRow{
			ParticipantID: p.ID,
			ExternalID:    p.ExternalID,
			DisplayName:   p.DisplayName,
			AvatarURL:     p.AvatarURL,
			Stats:         stats[i],
			TotalScore:    scoring.Score(stats[i], cfg, opts.Points),
		}
	}

	return scoring.Rank(rows, time.Now())
}

// fetchParticipantStats gathers both sources for one participant. Either
// source may be absent (no handle) or fail; both cases collapse to a nil
// payload that the normalizer heals to zeros.
func fetchParticipantStats(
	ctx context.Context,
	p models.Participant,
	leetcode LeetCodeFetcher,
	github GitHubFetcher,
	timeout time.Duration,
) models.ParticipantStats {
	var lcProfile *adapters.LeetCodeProfile
	var ghActivity *adapters.GitHubActivity

	if p.LeetCodeHandle != "" {
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		profile, err := leetcode.Fetch(fetchCtx, p.LeetCodeHandle)
		cancel()
		if err != nil {
			log.Printf("⚠️  LeetCode fetch failed for %s (@%s): %v", p.DisplayName, p.LeetCodeHandle, err)
		} else {
			lcProfile = profile
		}
	}

	if p.GitHubHandle != "" {
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		activity, err := github.Fetch(fetchCtx, p.GitHubHandle)
		cancel()
		if err != nil {
			log.Printf("⚠️  GitHub fetch failed for %s (@%s): %v", p.DisplayName, p.GitHubHandle, err)
		} else {
			ghActivity = activity
		}
	}

	return scoring.Normalize(lcProfile, ghActivity)
}

// LeaderboardService drives room leaderboard computation with a
// write-through cache: Redis synchronously, PostgreSQL snapshots via the
// worker pool (non-blocking with backpressure)
type LeaderboardService struct {
	postgresRepo *repository.PostgresRepository
	redisRepo    *repository.RedisRepository
	workerPool   *worker.WorkerPool
	leetcode     LeetCodeFetcher
	github       GitHubFetcher
	cfg          config.LeaderboardConfig
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(
	postgresRepo *repository.PostgresRepository,
	redisRepo *repository.RedisRepository,
	workerPool *worker.WorkerPool,
	leetcode LeetCodeFetcher,
	github GitHubFetcher,
	cfg config.LeaderboardConfig,
) *LeaderboardService {
	return &LeaderboardService{
		postgresRepo: postgresRepo,
		redisRepo:    redisRepo,
		workerPool:   workerPool,
		leetcode:     leetcode,
		github:       github,
		cfg:          cfg,
	}
}

// RefreshRoom recomputes one room's leaderboard from the live providers,
// caches it and queues a snapshot for persistence
func (s *LeaderboardService) RefreshRoom(ctx context.Context, roomID uint) ([]models.LeaderboardRow, error) {
	room, err := s.postgresRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	scoringCfg, err := room.ScoringConfig()
	if err != nil {
		return nil, fmt.Errorf("room %d: %w", roomID, err)
	}

	rows := ComputeLeaderboard(ctx, room.Participants, scoringCfg, s.leetcode, s.github, FanOutOptions{
		FetchTimeout:   s.cfg.FetchTimeout,
		MaxConcurrency: s.cfg.FetchConcurrency,
	})

	// Cache failures are not fatal: the computed rows are still valid
	if err := s.redisRepo.CacheLeaderboard(ctx, roomID, rows, s.cfg.CacheTTL); err != nil {
		log.Printf("❌ Failed to cache leaderboard for room %d: %v", roomID, err)
	}

	if len(rows) > 0 {
		task := worker.SnapshotTask{
			RoomID:     roomID,
			Rows:       rows,
			ComputedAt: rows[0].LastUpdated,
		}
		// Snapshot history is best-effort; the pool logs backpressure drops
		_ = s.workerPool.Submit(task)
	}

	return rows, nil
}

// GetRoomLeaderboard returns a room's leaderboard, serving the cached copy
// when present and recomputing otherwise
func (s *LeaderboardService) GetRoomLeaderboard(ctx context.Context, roomID uint) (*models.LeaderboardResponse, error) {
	room, err := s.postgresRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	cached, err := s.redisRepo.GetCachedLeaderboard(ctx, roomID)
	if err != nil {
		log.Printf("⚠️  Leaderboard cache read failed for room %d: %v", roomID, err)
	}
	if cached != nil {
		return &models.LeaderboardResponse{
			RoomID:      room.ID,
			RoomCode:    room.Code,
			Leaderboard: cached,
			Cached:      true,
		}, nil
	}

	rows, err := s.RefreshRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return &models.LeaderboardResponse{
		RoomID:      room.ID,
		RoomCode:    room.Code,
		Leaderboard: rows,
		Cached:      false,
	}, nil
}

// RefreshAllRooms recomputes every room's leaderboard. Rooms fail
// independently; a room with a broken config never blocks the others.
func (s *LeaderboardService) RefreshAllRooms(ctx context.Context) (int, error) {
	roomIDs, err := s.postgresRepo.ListRoomIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list rooms: %w", err)
	}

	refreshed := 0
	for _, roomID := range roomIDs {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.RefreshRoom(ctx, roomID); err != nil {
			if errors.Is(err, models.ErrMissingScoringConfig) {
				log.Printf("⚠️  Skipping room %d: no scoring config", roomID)
				continue
			}
			log.Printf("❌ Failed to refresh room %d: %v", roomID, err)
			continue
		}
		refreshed++
	}

	return refreshed, nil
}

// FetchParticipantStats fetches live stats for a single participant
// (profile view)
func (s *LeaderboardService) FetchParticipantStats(ctx context.Context, participantID uint) (*models.ParticipantStats, error) {
	participant, err := s.postgresRepo.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	timeout := s.cfg.FetchTimeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	stats := fetchParticipantStats(ctx, *participant, s.leetcode, s.github, timeout)
	return &stats, nil
}

// HealthCheck checks the health of both Redis and PostgreSQL
func (s *LeaderboardService) HealthCheck(ctx context.Context) error {
	if err := s.redisRepo.Ping(ctx); err != nil {
		return fmt.Errorf("Redis health check failed: %w", err)
	}

	if err := s.postgresRepo.Ping(ctx); err != nil {
		return fmt.Errorf("PostgreSQL health check failed: %w", err)
	}

	return nil
}
