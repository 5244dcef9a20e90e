package handlers

import (
	"errors"
	"strconv"

	"backend/internal/models"
	"backend/internal/service"
	ws "backend/internal/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// LeaderboardHandler handles HTTP requests for room leaderboards
type LeaderboardHandler struct {
	service *service.LeaderboardService
	hub     *ws.Hub
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(service *service.LeaderboardService, hub *ws.Hub) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		hub:     hub,
	}
}

// GetLeaderboard handles GET /api/v1/rooms/:id/leaderboard
// Serves the cached leaderboard when fresh, recomputes otherwise.
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	roomID, err := parseRoomID(c)
	if err != nil {
		return badRoomID(c, err)
	}

	response, err := h.service.GetRoomLeaderboard(c.Context(), roomID)
	if err != nil {
		return leaderboardError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// RefreshLeaderboard handles POST /api/v1/rooms/:id/leaderboard/refresh
// Forces a recomputation from the live providers.
func (h *LeaderboardHandler) RefreshLeaderboard(c *fiber.Ctx) error {
	roomID, err := parseRoomID(c)
	if err != nil {
		return badRoomID(c, err)
	}

	rows, err := h.service.RefreshRoom(c.Context(), roomID)
	if err != nil {
		return leaderboardError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"room_id":     roomID,
		"leaderboard": rows,
		"cached":      false,
	})
}

// GetParticipantStats handles GET /api/v1/participants/:id/stats
// Fetches live stats for one participant (profile view).
func (h *LeaderboardHandler) GetParticipantStats(c *fiber.Ctx) error {
	participantID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid participant id",
			Message: err.Error(),
		})
	}

	stats, err := h.service.FetchParticipantStats(c.Context(), uint(participantID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error:   "Participant not found",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

// HealthCheck handles GET /api/v1/health
func (h *LeaderboardHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.service.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:   "Health check failed",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"message": "All systems operational",
	})
}

// HandleWebSocket hands a connection to the hub
func (h *LeaderboardHandler) HandleWebSocket(conn *fiberws.Conn) {
	ws.ServeWS(h.hub, conn)
}

func leaderboardError(c *fiber.Ctx, err error) error {
	if errors.Is(err, models.ErrMissingScoringConfig) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{
			Error:   "Room has no scoring config",
			Message: err.Error(),
		})
	}
	return roomError(c, err)
}
