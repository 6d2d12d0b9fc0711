package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tour-service/internal/application/command"
)

func (h *Handler) ListTours(c echo.Context) error {
	res, err := h.tours.ListTours(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.Result)
}

func (h *Handler) GetTour(c echo.Context) error {
	res, err := h.tours.GetTour(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.Result)
}

func (h *Handler) CreateTour(c echo.Context) error {
	var cmd command.CreateTourCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.tours.CreateTour(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.Result)
}

func (h *Handler) UpdateTour(c echo.Context) error {
	var cmd command.UpdateTourCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.tours.UpdateTour(c.Request().Context(), c.Param("id"), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.Result)
}

func (h *Handler) DeleteTour(c echo.Context) error {
	res, err := h.tours.DeleteTour(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Top5Tours(c echo.Context) error {
	res, err := h.tours.Top5(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.Result)
}

func (h *Handler) TourStats(c echo.Context) error {
	res, err := h.tours.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(res.Result))
}

func (h *Handler) MonthlyPlan(c echo.Context) error {
	res, err := h.tours.MonthlyPlan(c.Request().Context(), c.Param("year"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"dataItems": len(res.Result),
		"data":      nonNil(res.Result),
	})
}

func (h *Handler) ToursWithin(c echo.Context) error {
	res, err := h.tours.Within(c.Request().Context(), c.Param("distance"), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(len(res.Result), res.Result))
}

func (h *Handler) Distances(c echo.Context) error {
	res, err := h.tours.Distances(c.Request().Context(), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(len(res.Result), nonNil(res.Result)))
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
