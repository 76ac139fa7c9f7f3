package network

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moonlitpsych/bookability/internal/platform/auth"
	"github.com/moonlitpsych/bookability/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "scheduler", "partner"))
	readGroup.GET("/bookability", h.Bookable)
	readGroup.GET("/bookability/grouped", h.GroupedByAttending)
	readGroup.GET("/relationships", h.ListRelationships)
	readGroup.GET("/relationships/:id", h.GetRelationship)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/relationships", h.CreateRelationship)
	adminGroup.PUT("/relationships/:id", h.CorrectRelationship)
	adminGroup.POST("/relationships/:id/expire", h.ExpireRelationship)
	adminGroup.GET("/audit/guardrails", h.GuardrailAudit)
}

// scopeFromQuery builds the resolution scope from optional provider_id and
// payer_id query parameters.
func scopeFromQuery(c echo.Context) (Scope, error) {
	var scope Scope
	if raw := c.QueryParam("provider_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return scope, echo.NewHTTPError(http.StatusBadRequest, "invalid provider_id")
		}
		scope.ProviderID = &id
	}
	if raw := c.QueryParam("payer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return scope, echo.NewHTTPError(http.StatusBadRequest, "invalid payer_id")
		}
		scope.PayerID = &id
	}
	return scope, nil
}

// evalFromQuery reads the optional as_of service date (YYYY-MM-DD). Absent
// means "as of today".
func evalFromQuery(c echo.Context) (*Evaluation, error) {
	raw := c.QueryParam("as_of")
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
	}
	return &Evaluation{Date: d, Mode: ModeAsOfServiceDate}, nil
}

func (h *Handler) Bookable(c echo.Context) error {
	scope, err := scopeFromQuery(c)
	if err != nil {
		return err
	}
	eval, err := evalFromQuery(c)
	if err != nil {
		return err
	}
	res, err := h.svc.Bookable(c.Request().Context(), scope, eval)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GroupedByAttending(c echo.Context) error {
	scope, err := scopeFromQuery(c)
	if err != nil {
		return err
	}
	eval, err := evalFromQuery(c)
	if err != nil {
		return err
	}
	groups, err := h.svc.GroupedByAttending(c.Request().Context(), scope, eval)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *Handler) GuardrailAudit(c echo.Context) error {
	report, err := h.svc.Audit(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) CreateRelationship(c echo.Context) error {
	var rel Relationship
	if err := c.Bind(&rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rel)
}

func (h *Handler) GetRelationship(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rel, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "relationship not found")
	}
	return c.JSON(http.StatusOK, rel)
}

func (h *Handler) ListRelationships(c echo.Context) error {
	scope, err := scopeFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), scope, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CorrectRelationship(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var rel Relationship
	if err := c.Bind(&rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rel.ID = id
	if err := h.svc.Correct(c.Request().Context(), &rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rel)
}

type expireRequest struct {
	ExpirationDate string `json:"expiration_date"`
}

func (h *Handler) ExpireRelationship(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req expireRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	expiration, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expiration_date, expected YYYY-MM-DD")
	}
	if err := h.svc.Expire(c.Request().Context(), id, expiration); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
