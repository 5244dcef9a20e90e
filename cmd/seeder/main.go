package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	TotalRooms          = 5
	ParticipantsPerRoom = 12
	BatchSize           = 100
)

var roomNames = []string{
	"Daily Grind",
	"Algo Warriors",
	"Commit Club",
	"Interview Prep Squad",
	"Weekend Hackers",
}

// Sample handles that resolve against the real providers, so a seeded
// instance shows non-zero leaderboards out of the box
var sampleHandles = []struct {
	leetcode string
	github   string
}{
	{"lee215", "torvalds"},
	{"votrubac", "gaearon"},
	{"uwi", "sindresorhus"},
	{"", "mitchellh"},
	{"awice", ""},
	{"", ""},
}

func main() {
	log.Println("🌱 Starting seeder for Leadcode backend...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize PostgreSQL
	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	postgresRepo := repository.NewPostgresRepository(db)

	// Run migrations
	if err := postgresRepo.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Database migrations completed")

	ctx := context.Background()

	log.Printf("🌱 Creating %d rooms with %d participants each...", TotalRooms, ParticipantsPerRoom)

	startTime := time.Now()
	for i := 0; i < TotalRooms; i++ {
		room, err := seedRoom(ctx, postgresRepo, cfg, roomNames[i%len(roomNames)])
		if err != nil {
			log.Fatalf("Failed to seed room: %v", err)
		}
		log.Printf("   ✓ Room %q (code %s) with %d participants", room.Name, room.Code, ParticipantsPerRoom)
	}

	log.Printf("✅ Seeding completed in %v", time.Since(startTime))

	// Show what got created
	rooms, err := postgresRepo.ListPublicRooms(ctx, TotalRooms)
	if err != nil {
		log.Fatalf("Failed to verify rooms: %v", err)
	}

	log.Println("\n📊 Seeded Rooms:")
	for _, room := range rooms {
		count, _ := postgresRepo.CountActiveParticipants(ctx, room.ID)
		log.Printf("   - [%s] %s: %d active participants (weights %.1f/%.1f)",
			room.Code, room.Name, count, *room.WeightLeetCode, *room.WeightGitHub)
	}

	postgresRepo.Close()

	log.Println("\n🎉 Seeder finished!")
}

// seedRoom creates one room and a batch of participants for it
func seedRoom(ctx context.Context, repo *repository.PostgresRepository, cfg *config.Config, name string) (*models.Room, error) {
	weightLeetCode := cfg.Leaderboard.DefaultWeightLeetCode
	weightGitHub := cfg.Leaderboard.DefaultWeightGitHub

	room := models.Room{
		Code:            strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		Name:            name,
		IsPublic:        true,
		MaxParticipants: 50,
		WeightLeetCode:  &weightLeetCode,
		WeightGitHub:    &weightGitHub,
	}

	if err := repo.CreateRoom(ctx, &room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	participants := make([]models.Participant, ParticipantsPerRoom)
	for i := 0; i < ParticipantsPerRoom; i++ {
		handles := sampleHandles[rand.Intn(len(sampleHandles))]
		participants[i] = models.Participant{
			RoomID:         room.ID,
			ExternalID:     fmt.Sprintf("seed|%s", uuid.NewString()),
			DisplayName:    fmt.Sprintf("%s Member %d", name, i+1),
			LeetCodeHandle: handles.leetcode,
			GitHubHandle:   handles.github,
			IsActive:       true,
		}
	}

	if err := repo.BulkInsertParticipants(ctx, participants, BatchSize); err != nil {
		return nil, fmt.Errorf("insert participants: %w", err)
	}

	return &room, nil
}

// initPostgres initializes PostgreSQL connection
func initPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}
