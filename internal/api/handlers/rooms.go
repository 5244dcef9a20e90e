package handlers

import (
	"errors"
	"strconv"
	"strings"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
	"backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultMaxParticipants = 50

// RoomHandler handles HTTP requests for room management
type RoomHandler struct {
	postgresRepo *repository.PostgresRepository
	redisRepo    *repository.RedisRepository
	service      *service.LeaderboardService
	validator    *validator.Validate
	defaults     config.LeaderboardConfig
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(
	postgresRepo *repository.PostgresRepository,
	redisRepo *repository.RedisRepository,
	service *service.LeaderboardService,
	defaults config.LeaderboardConfig,
) *RoomHandler {
	return &RoomHandler{
		postgresRepo: postgresRepo,
		redisRepo:    redisRepo,
		service:      service,
		validator:    validator.New(),
		defaults:     defaults,
	}
}

// CreateRoom handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	var req models.CreateRoomRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	if err := h.validator.Struct(&req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Validation failed",
			Message: validationErrors.Error(),
		})
	}

	// Default weights are applied at creation time, never at computation
	// time, so a stored room always states how it is scored
	weightLeetCode := h.defaults.DefaultWeightLeetCode
	weightGitHub := h.defaults.DefaultWeightGitHub
	if req.WeightLeetCode != nil {
		weightLeetCode = *req.WeightLeetCode
	}
	if req.WeightGitHub != nil {
		weightGitHub = *req.WeightGitHub
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	maxParticipants := req.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = defaultMaxParticipants
	}

	room := models.Room{
		Code:            generateRoomCode(),
		Name:            req.Name,
		IsPublic:        isPublic,
		MaxParticipants: maxParticipants,
		WeightLeetCode:  &weightLeetCode,
		WeightGitHub:    &weightGitHub,
	}

	if err := h.postgresRepo.CreateRoom(c.Context(), &room); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to create room",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

// ListRooms handles GET /api/v1/rooms
func (h *RoomHandler) ListRooms(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	rooms, err := h.postgresRepo.ListPublicRooms(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to list rooms",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	roomID, err := parseRoomID(c)
	if err != nil {
		return badRoomID(c, err)
	}

	room, err := h.postgresRepo.GetRoom(c.Context(), roomID)
	if err != nil {
		return roomError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(room)
}

// GetRoomByCode handles GET /api/v1/rooms/code/:code
func (h *RoomHandler) GetRoomByCode(c *fiber.Ctx) error {
	code := strings.ToUpper(c.Params("code"))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Room code cannot be empty",
		})
	}

	room, err := h.postgresRepo.GetRoomByCode(c.Context(), code)
	if err != nil {
		return roomError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(room)
}

// JoinRoom handles POST /api/v1/rooms/:id/join
func (h *RoomHandler) JoinRoom(c *fiber.Ctx) error {
	roomID, err := parseRoomID(c)
	if err != nil {
		return badRoomID(c, err)
	}

	var req models.JoinRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	if err := h.validator.Struct(&req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Validation failed",
			Message: validationErrors.Error(),
		})
	}

	room, err := h.postgresRepo.GetRoom(c.Context(), roomID)
	if err != nil {
		return roomError(c, err)
	}

	activeCount, err := h.postgresRepo.CountActiveParticipants(c.Context(), roomID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to join room",
			Message: err.Error(),
		})
	}
	if activeCount >= int64(room.MaxParticipants) {
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
			Error: "Room is full",
		})
	}

	participant := models.Participant{
		RoomID:         roomID,
		ExternalID:     req.ExternalID,
		DisplayName:    req.DisplayName,
		AvatarURL:      req.AvatarURL,
		LeetCodeHandle: req.LeetCodeHandle,
		GitHubHandle:   req.GitHubHandle,
		IsActive:       true,
	}

	if err := h.postgresRepo.UpsertParticipant(c.Context(), &participant); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to join room",
			Message: err.Error(),
		})
	}

	// Membership changed: drop the cached leaderboard so the next read
	// recomputes with the new roster
	h.redisRepo.InvalidateLeaderboard(c.Context(), roomID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "Joined room successfully",
		"room_id":     roomID,
		"participant": participant,
	})
}

// LeaveRoom handles PUT /api/v1/rooms/:id/leave
func (h *RoomHandler) LeaveRoom(c *fiber.Ctx) error {
	roomID, err := parseRoomID(c)
	if err != nil {
		return badRoomID(c, err)
	}

	var req models.LeaveRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	if err := h.validator.Struct(&req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Validation failed",
			Message: validationErrors.Error(),
		})
	}

	if err := h.postgresRepo.SetParticipantActive(c.Context(), roomID, req.ExternalID, false); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
				Error: "Participant not found in room",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to leave room",
			Message: err.Error(),
		})
	}

	h.redisRepo.InvalidateLeaderboard(c.Context(), roomID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Left room successfully",
		"room_id": roomID,
	})
}

// UpdateWeights handles PUT /api/v1/rooms/:id/weights
func (h *RoomHandler) UpdateWeights(c *fiber.Ctx) error {
	roomID, err := parseRoomID(c)
	if err != nil {
		return badRoomID(c, err)
	}

	var req models.UpdateWeightsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	if err := h.postgresRepo.UpdateRoomWeights(c.Context(), roomID, req.WeightLeetCode, req.WeightGitHub); err != nil {
		return roomError(c, err)
	}

	// Scores depend on weights; cached rows are stale now
	h.redisRepo.InvalidateLeaderboard(c.Context(), roomID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":         "Weights updated",
		"room_id":         roomID,
		"weight_leetcode": req.WeightLeetCode,
		"weight_github":   req.WeightGitHub,
	})
}

// generateRoomCode builds a short shareable join code
func generateRoomCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func parseRoomID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func badRoomID(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error:   "Invalid room id",
		Message: err.Error(),
	})
}

func roomError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrRoomNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Room not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error:   "Request failed",
		Message: err.Error(),
	})
}
