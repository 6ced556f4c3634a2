package treatmentplan

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/auth"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
	"github.com/BiscuitNick/treatment-plans-sub000/pkg/pagination"
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
	read.GET("/treatment-plans/:id", h.GetPlan)
	read.GET("/patients/:patientId/treatment-plan", h.GetPlanForPatient)
	read.GET("/treatment-plans/:id/versions", h.ListVersions)
	read.GET("/treatment-plans/:id/versions/:version", h.GetVersion)

	write := api.Group("", auth.RequireRole("therapist"))
	write.POST("/treatment-plans", h.CreatePlan)
	write.PUT("/treatment-plans/:id/content", h.SubmitManualRevision)
}

type createPlanRequest struct {
	PatientID uuid.UUID         `json:"patient_id"`
	Content   *plandoc.Document `json:"content"`
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var req createPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	createdBy := auth.UserIDFromContext(c.Request().Context())
	plan, err := h.svc.CreatePlan(c.Request().Context(), req.PatientID, req.Content, createdBy)
	if err != nil {
		return mapPlanError(err)
	}
	return c.JSON(http.StatusCreated, plan)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	plan, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return mapPlanError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) GetPlanForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	plan, err := h.svc.GetPlanForPatient(c.Request().Context(), patientID)
	if err != nil {
		return mapPlanError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) ListVersions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListVersions(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return mapPlanError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetVersion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version number")
	}
	v, err := h.svc.GetVersion(c.Request().Context(), id, version)
	if err != nil {
		return mapPlanError(err)
	}
	return c.JSON(http.StatusOK, v)
}

type manualRevisionRequest struct {
	Content   *plandoc.Document `json:"content"`
	SessionID *uuid.UUID        `json:"session_id,omitempty"`
}

func (h *Handler) SubmitManualRevision(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	var req manualRevisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	submittedBy := auth.UserIDFromContext(c.Request().Context())
	version, err := h.svc.SubmitManualRevision(c.Request().Context(), id, req.Content, submittedBy, req.SessionID)
	if err != nil {
		return mapPlanError(err)
	}
	return c.JSON(http.StatusOK, version)
}

// mapPlanError translates domain errors to HTTP status codes. Anything not
// recognized as a caller mistake is an infrastructure failure and maps to 500.
func mapPlanError(err error) error {
	switch {
	case IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPlanExists), errors.Is(err, ErrVersionConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidContent):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
