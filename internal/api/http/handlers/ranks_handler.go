package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rank-service/internal/directory"
	"github.com/spec-kit/rank-service/internal/rank"
)

// RanksHandler exposes the rank table and its reload operation.
type RanksHandler struct {
	table *rank.Table
	dir   directory.GroupDirectory
}

// NewRanksHandler constructs handler.
func NewRanksHandler(table *rank.Table, dir directory.GroupDirectory) *RanksHandler {
	return &RanksHandler{table: table, dir: dir}
}

// List handles GET /ranks.
func (h *RanksHandler) List(c *fiber.Ctx) error {
	ranks := h.table.Ranks()
	entries := make([]fiber.Map, 0, len(ranks))
	for _, r := range ranks {
		entries = append(entries, fiber.Map{"name": r.Name, "points": r.Threshold})
	}
	return c.JSON(fiber.Map{"data": entries})
}

// Reload handles POST /ranks/reload. The directory re-sync only happens
// when the definitions file content actually changed.
func (h *RanksHandler) Reload(c *fiber.Ctx) error {
	if err := h.table.Reload(c.UserContext(), h.dir); err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"ranks":       h.table.Len(),
			"fingerprint": h.table.Fingerprint(),
		},
	})
}
