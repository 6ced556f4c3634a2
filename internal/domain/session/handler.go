package session

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("therapist", "supervisor"))
	g.POST("/sessions", h.Create)
	g.GET("/sessions/:id", h.Get)
}

type createSessionRequest struct {
	PatientID uuid.UUID     `json:"patient_id"`
	Status    SessionStatus `json:"status,omitempty"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	if req.Status == "" {
		req.Status = StatusUploaded
	}
	if !ValidStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session status")
	}

	s := &Session{PatientID: req.PatientID, Status: req.Status}
	if err := h.repo.Create(c.Request().Context(), s); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	s, err := h.repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, s)
}
