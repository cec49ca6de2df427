package handlers

import (
	"net/http"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/rank-service/internal/api/dto"
	"github.com/spec-kit/rank-service/internal/service"
)

// StaffHandler manages the exclusion roster.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List handles GET /stafflist.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	members, err := h.staff.List(c.UserContext())
	if err != nil {
		return err
	}

	entries := make([]dto.StaffEntry, 0, len(members))
	for id, name := range members {
		entries = append(entries, dto.StaffEntry{UUID: id.String(), Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return c.JSON(fiber.Map{"data": entries})
}

// Add handles POST /stafflist.
func (h *StaffHandler) Add(c *fiber.Ctx) error {
	var req dto.StaffAddRequest
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

	if err := h.staff.Add(c.UserContext(), identity, req.Name); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.StaffEntry{UUID: identity.String(), Name: req.Name},
	})
}

// Remove handles DELETE /stafflist/:uuid.
func (h *StaffHandler) Remove(c *fiber.Ctx) error {
	identity, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid uuid")
	}

	if err := h.staff.Remove(c.UserContext(), identity); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
