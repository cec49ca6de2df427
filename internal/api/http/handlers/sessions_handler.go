package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/rank-service/internal/api/dto"
	"github.com/spec-kit/rank-service/internal/service"
)

// SessionsHandler tracks player connects and disconnects.
type SessionsHandler struct {
	sessions *service.SessionService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessions *service.SessionService) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// Login handles POST /sessions/login.
func (h *SessionsHandler) Login(c *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.UUID == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "uuid and name required")
	}
	identity, err := uuid.Parse(req.UUID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid uuid")
	}

	h.sessions.Login(c.UserContext(), identity, req.Name)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"uuid": identity.String(), "name": req.Name},
	})
}

// Logout handles POST /sessions/logout.
func (h *SessionsHandler) Logout(c *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	identity, err := uuid.Parse(req.UUID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid uuid")
	}

	if !h.sessions.Logout(identity) {
		return fiber.NewError(http.StatusNotFound, "no active session")
	}
	return c.SendStatus(http.StatusNoContent)
}

// List handles GET /sessions.
func (h *SessionsHandler) List(c *fiber.Ctx) error {
	connected := h.sessions.Connected()
	entries := make([]dto.SessionEntry, 0, len(connected))
	for _, session := range connected {
		entries = append(entries, dto.SessionEntry{
			UUID:        session.Identity.String(),
			Name:        session.Name,
			ConnectedAt: session.ConnectedAt,
		})
	}
	return c.JSON(fiber.Map{"data": entries})
}
