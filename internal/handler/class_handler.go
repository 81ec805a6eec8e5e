package handler

import (
	"errors"
	"net/http"

	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ClassHandler struct {
	svc service.InventoryService
}

func NewClassHandler(svc service.InventoryService) *ClassHandler {
	return &ClassHandler{svc: svc}
}

func (h *ClassHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/classes", h.List)
	e.GET("/api/v1/admin/classes", h.List)
	e.PATCH("/api/v1/admin/classes/:class_id", h.Update)
}

// List returns every offering with its live seat count and availability,
// the same view the registration form renders.
func (h *ClassHandler) List(c echo.Context) error {
	classes, err := h.svc.ListClasses(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) Update(c echo.Context) error {
	classID := c.Param("class_id")

	var req dto.UpdateClassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.UpdateClass(c.Request().Context(), classID, req); err != nil {
		switch {
		case service.IsValidation(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClassNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "class not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	class, err := h.svc.GetClass(c.Request().Context(), classID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, class)
}
