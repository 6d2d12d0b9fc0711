package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tour-service/internal/application/command"
)

func (h *Handler) ListReviews(c echo.Context) error {
	res, err := h.reviews.ListReviews(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(len(res.Result), res.Result))
}

func (h *Handler) ListTourReviews(c echo.Context) error {
	res, err := h.reviews.ListTourReviews(c.Request().Context(), c.Param("tourId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(len(res.Result), res.Result))
}

func (h *Handler) CreateReview(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var cmd command.CreateReviewCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.reviews.CreateReview(c.Request().Context(), user, c.Param("tourId"), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res.Result)
}

func (h *Handler) UpdateReview(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var cmd command.UpdateReviewCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.reviews.UpdateReview(c.Request().Context(), user, c.Param("reviewId"), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.Result)
}

func (h *Handler) DeleteReview(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	res, err := h.reviews.DeleteReview(c.Request().Context(), user, c.Param("reviewId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
