package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/repository"
	"github.com/geniusacademy/registration-service/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	registerAction = "register"
	listPerPage    = 20
)

type RegistrationHandler struct {
	svc    service.RegistrationService
	nonces *service.NonceService
}

func NewRegistrationHandler(svc service.RegistrationService, nonces *service.NonceService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, nonces: nonces}
}

func (h *RegistrationHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/registrations/nonce", h.GetNonce)
	e.POST("/api/v1/registrations", h.Submit)

	admin := e.Group("/api/v1/admin/registrations")
	admin.GET("", h.List)
	admin.GET("/:id", h.Get)
	admin.PATCH("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

func (h *RegistrationHandler) GetNonce(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NonceResponse{Nonce: h.nonces.Issue(registerAction)})
}

// Submit handles the form-encoded submission. The anti-forgery nonce is
// checked before anything else; consuming it also rejects a double-click
// duplicate of the same form.
func (h *RegistrationHandler) Submit(c echo.Context) error {
	if err := h.nonces.Consume(registerAction, c.FormValue("_ajax_nonce")); err != nil {
		return c.JSON(http.StatusForbidden, dto.SubmitEnvelope{
			Success: false,
			Message: "Nonce verification failed.",
		})
	}

	var req dto.SubmitRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, "Required fields missing or invalid data format.")
	}

	if raw := c.FormValue("classes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Classes); err != nil {
			return failure(c, "No classes selected or invalid class data.")
		}
	}
	req.AcceptedTerms = c.FormValue("accepted_terms") == "1" || c.FormValue("accepted_terms") == "true"

	result, err := h.svc.Submit(c.Request().Context(), req)
	if err != nil {
		if service.IsValidation(err) {
			return failure(c, err.Error())
		}
		return failure(c, "Registration could not be saved. Please try again.")
	}

	return c.JSON(http.StatusOK, dto.SubmitEnvelope{Success: true, Data: result})
}

func (h *RegistrationHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	filter := repository.RegistrationFilter{
		YearGroup: c.QueryParam("year_group"),
		Search:    c.QueryParam("q"),
		Page:      page,
		PerPage:   listPerPage,
	}

	regs, total, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]dto.RegistrationResponse, len(regs))
	for i := range regs {
		items[i] = dto.ToRegistrationResponse(&regs[i])
	}

	return c.JSON(http.StatusOK, dto.RegistrationListResponse{
		Total:   total,
		Page:    page,
		PerPage: listPerPage,
		Items:   items,
	})
}

func (h *RegistrationHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	reg, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "registration not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := dto.ToRegistrationResponse(reg)
	resp.DeleteToken = h.nonces.Issue(deleteAction(id))
	return c.JSON(http.StatusOK, resp)
}

func (h *RegistrationHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reg, err := h.svc.UpdateSingle(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case service.IsValidation(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrRegistrationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "registration not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

// Delete is a hard delete and requires the per-record confirmation token
// issued alongside the single-record view.
func (h *RegistrationHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.nonces.Consume(deleteAction(id), c.QueryParam("token")); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "delete confirmation token is missing or invalid")
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "registration not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func deleteAction(id uint) string {
	return "delete:" + strconv.FormatUint(uint64(id), 10)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	return uint(id), nil
}

func failure(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, dto.SubmitEnvelope{Success: false, Message: msg})
}
