package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"backend/internal/service"
)

// RefreshManager periodically recomputes every room's leaderboard in the
// background, so clients mostly hit warm caches and the external providers
// see a steady, bounded request rate instead of page-load bursts
type RefreshManager struct {
	service *service.LeaderboardService
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// Metrics
	totalRuns      atomic.Int64
	roomsRefreshed atomic.Int64
	errorCount     atomic.Int64
	startTime      time.Time

	// Configuration
	interval time.Duration
}

// RefresherConfig holds configuration for the refresh manager
type RefresherConfig struct {
	Interval time.Duration // Default: 5m
}

// NewRefreshManager creates a new refresh manager
func NewRefreshManager(service *service.LeaderboardService, config RefresherConfig) *RefreshManager {
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}

	return &RefreshManager{
		service:  service,
		stopCh:   make(chan struct{}),
		interval: config.Interval,
	}
}

// Start begins the periodic refresh loop
func (rm *RefreshManager) Start(ctx context.Context) error {
	if !rm.running.CompareAndSwap(false, true) {
		return fmt.Errorf("refresh manager already running")
	}

	rm.startTime = time.Now()
	log.Printf("🚀 Leaderboard refresher started (interval: %v)", rm.interval)

	rm.wg.Add(1)
	go rm.run(ctx)

	return nil
}

func (rm *RefreshManager) run(ctx context.Context) {
	defer rm.wg.Done()

	ticker := time.NewTicker(rm.interval)
	defer ticker.Stop()

	// Warm the caches once at startup instead of waiting a full interval
	rm.refreshOnce(ctx)

	for {
		select {
		case <-ticker.C:
			rm.refreshOnce(ctx)

		case <-rm.stopCh:
			log.Println("⏹️ Leaderboard refresher stopping")
			return

		case <-ctx.Done():
			log.Println("⏹️ Leaderboard refresher context cancelled")
			return
		}
	}
}

func (rm *RefreshManager) refreshOnce(ctx context.Context) {
	startTime := time.Now()
	rm.totalRuns.Add(1)

	refreshed, err := rm.service.RefreshAllRooms(ctx)
	if err != nil {
		rm.errorCount.Add(1)
		log.Printf("❌ Leaderboard refresh run failed: %v", err)
		return
	}

	rm.roomsRefreshed.Add(int64(refreshed))
	log.Printf("✓ Refreshed %d room leaderboards in %v", refreshed, time.Since(startTime))
}

// Stop halts the refresh loop and waits for the in-flight run to finish
func (rm *RefreshManager) Stop() {
	if !rm.running.CompareAndSwap(true, false) {
		return
	}

	close(rm.stopCh)
	rm.wg.Wait()

	log.Printf("📊 Refresher Metrics:")
	log.Printf("   - Runs: %d", rm.totalRuns.Load())
	log.Printf("   - Rooms Refreshed: %d", rm.roomsRefreshed.Load())
	log.Printf("   - Errors: %d", rm.errorCount.Load())
	log.Printf("   - Uptime: %v", time.Since(rm.startTime))
}

// GetMetrics returns a snapshot of the refresher metrics
func (rm *RefreshManager) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"running":         rm.running.Load(),
		"runs":            rm.totalRuns.Load(),
		"rooms_refreshed": rm.roomsRefreshed.Load(),
		"errors":          rm.errorCount.Load(),
	}
}
