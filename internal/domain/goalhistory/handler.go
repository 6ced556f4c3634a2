package goalhistory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("therapist", "supervisor")

	read := api.Group("", role)
	read.GET("/treatment-plans/:id/goal-history", h.GetTimeline)
	read.GET("/treatment-plans/:id/goals/:goalId/history", h.GetGoalHistory)
}

func (h *Handler) GetTimeline(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	timelines, err := h.svc.Timeline(c.Request().Context(), planID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"plan_id": planID,
		"goals":   timelines,
	})
}

func (h *Handler) GetGoalHistory(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	goalID := c.Param("goalId")
	if goalID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "goal id is required")
	}
	entries, err := h.svc.ListByGoal(c.Request().Context(), planID, goalID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"plan_id": planID,
		"goal_id": goalID,
		"history": entries,
	})
}
