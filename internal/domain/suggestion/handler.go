package suggestion

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/auth"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/revision"
	"github.com/BiscuitNick/treatment-plans-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("therapist", "supervisor"))
	read.GET("/suggestions/:id", h.Get)
	read.GET("/treatment-plans/:id/suggestions", h.ListByPlan)
	read.GET("/treatment-plans/:id/diff", h.Diff)

	write := api.Group("", auth.RequireRole("therapist"))
	write.POST("/treatment-plans/:id/suggestions", h.Create)
	write.POST("/suggestions/:id/approve", h.Approve)
	write.POST("/suggestions/:id/reject", h.Reject)
}

type createRequest struct {
	SessionID      uuid.UUID          `json:"session_id"`
	Changes        revision.ChangeSet `json:"changes"`
	SessionSummary string             `json:"session_summary"`
	ProgressNotes  string             `json:"progress_notes"`
}

func (h *Handler) Create(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SessionID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	sug, created, err := h.svc.Create(c.Request().Context(), planID, req.SessionID,
		req.Changes, req.SessionSummary, req.ProgressNotes)
	if err != nil {
		return mapSuggestionError(err)
	}
	if !created {
		return c.JSON(http.StatusOK, sug)
	}
	return c.JSON(http.StatusCreated, sug)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid suggestion id")
	}
	sug, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapSuggestionError(err)
	}
	return c.JSON(http.StatusOK, sug)
}

func (h *Handler) ListByPlan(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPlan(c.Request().Context(), planID, pg.Limit, pg.Offset)
	if err != nil {
		return mapSuggestionError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type reviewRequest struct {
	Overrides      *revision.Overrides `json:"overrides,omitempty"`
	TherapistNotes *string             `json:"therapist_notes,omitempty"`
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid suggestion id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reviewedBy := auth.UserIDFromContext(c.Request().Context())
	outcome, err := h.svc.Approve(c.Request().Context(), id, req.Overrides, reviewedBy, req.TherapistNotes)
	if err != nil {
		return mapSuggestionError(err)
	}
	return c.JSON(http.StatusOK, outcome)
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid suggestion id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reviewedBy := auth.UserIDFromContext(c.Request().Context())
	sug, err := h.svc.Reject(c.Request().Context(), id, reviewedBy, req.TherapistNotes)
	if err != nil {
		return mapSuggestionError(err)
	}
	return c.JSON(http.StatusOK, sug)
}

func (h *Handler) Diff(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}

	var suggestionID *uuid.UUID
	if raw := c.QueryParam("suggestion_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid suggestion id")
		}
		suggestionID = &id
	}

	resp, err := h.svc.Diff(c.Request().Context(), planID, suggestionID)
	if err != nil {
		return mapSuggestionError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// mapSuggestionError translates domain errors to HTTP status codes. Anything
// not recognized as a caller mistake is an infrastructure failure and maps
// to 500.
func mapSuggestionError(err error) error {
	switch {
	case IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrReviewConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidChangeSet):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
