package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rank-service/internal/api/dto"
	"github.com/spec-kit/rank-service/internal/promotion"
	"github.com/spec-kit/rank-service/internal/service"
)

// PointsHandler exposes the point and rank query/admin operations.
type PointsHandler struct {
	points *service.PointsService
	engine *promotion.Engine
}

// NewPointsHandler constructs handler.
func NewPointsHandler(points *service.PointsService, engine *promotion.Engine) *PointsHandler {
	return &PointsHandler{points: points, engine: engine}
}

// GetPoints handles GET /players/:name/points.
func (h *PointsHandler) GetPoints(c *fiber.Ctx) error {
	name := c.Params("name")
	total, err := h.points.GetPoints(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.PointsResponse{Name: name, Points: total},
	})
}

// AddPoints handles POST /players/:name/points/add.
func (h *PointsHandler) AddPoints(c *fiber.Ctx) error {
	name := c.Params("name")
	var req dto.AddPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Delta == 0 {
		return fiber.NewError(http.StatusBadRequest, "delta must be non-zero")
	}

	total, err := h.points.AddPoints(c.UserContext(), name, req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.PointsResponse{Name: name, Points: total},
	})
}

// SetPoints handles PUT /players/:name/points.
func (h *PointsHandler) SetPoints(c *fiber.Ctx) error {
	name := c.Params("name")
	var req dto.SetPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.points.SetPoints(c.UserContext(), name, req.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.PointsResponse{Name: name, Points: req.Value},
	})
}

// RankInfo handles GET /players/:name/rank.
func (h *PointsHandler) RankInfo(c *fiber.Ctx) error {
	name := c.Params("name")
	total, progress, err := h.points.Progress(c.UserContext(), name)
	if err != nil {
		return err
	}

	resp := dto.RankInfoResponse{Name: name, Points: total, Remaining: progress.Remaining}
	if progress.Current != nil {
		resp.Current = progress.Current.Name
	}
	if progress.Next != nil {
		resp.Next = progress.Next.Name
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Promote handles POST /players/:name/promote, the manual counterpart of
// the scheduled sweep.
func (h *PointsHandler) Promote(c *fiber.Ctx) error {
	name := c.Params("name")
	identity, err := h.points.Resolve(name)
	if err != nil {
		return err
	}

	result, err := h.engine.Evaluate(c.UserContext(), identity, name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"name":           name,
			"change":         result.Kind,
			"previous_group": result.PreviousGroup,
			"new_group":      result.NewGroup,
			"message":        result.Message,
		},
	})
}
