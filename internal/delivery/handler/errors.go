package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"tour-service/internal/apperrors"
)

// MsgGenericError replaces messages that are not safe to show outside
// development.
const MsgGenericError = "Error with the request!"

type errorResponse struct {
	Msg    string                 `json:"msg,omitempty"`
	Errors []apperrors.FieldError `json:"errors,omitempty"`
	Name   string                 `json:"name,omitempty"`
	Detail string                 `json:"detail,omitempty"`
}

// NewHTTPErrorHandler converts every error returned by a handler or
// middleware into the JSON error body.
func NewHTTPErrorHandler(development bool, logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := buildErrorResponse(err, c.Request().URL.RequestURI(), development)

		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(err).
			Int("status", status).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("request failed")

		if appErr, ok := apperrors.As(err); ok && appErr.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", retryAfterSeconds(appErr.RetryAfter))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}

func buildErrorResponse(err error, uri string, development bool) (int, errorResponse) {
	appErr := toAppError(err, uri)
	status := appErr.StatusCode()

	var httpErr *echo.HTTPError
	if _, ok := apperrors.As(err); !ok && errors.As(err, &httpErr) && !mappedStatus(httpErr.Code) {
		status = httpErr.Code
	}

	body := errorResponse{Msg: appErr.Message}
	if appErr.Type == apperrors.ErrorTypeValidation && len(appErr.Fields) > 0 {
		body.Errors = appErr.Fields
	}

	if development {
		body.Name = string(appErr.Type)
		if appErr.Err != nil {
			body.Detail = appErr.Err.Error()
		}
		return status, body
	}
	if !appErr.Safe {
		body = errorResponse{Msg: MsgGenericError}
	}
	return status, body
}

func toAppError(err error, uri string) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		return apperrors.NewServerError("unexpected error", err)
	}

	msg := fmt.Sprint(httpErr.Message)
	switch httpErr.Code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperrors.NewNotFoundError(fmt.Sprintf("Requested route: %s not found!", uri))
	case http.StatusBadRequest:
		return apperrors.NewValidationError(msg)
	case http.StatusUnauthorized:
		return apperrors.NewAuthError(msg)
	case http.StatusForbidden:
		return apperrors.NewAccessDeniedError(msg)
	case http.StatusTooManyRequests:
		return apperrors.NewTooManyRequestsError(msg)
	}

	appErr := apperrors.NewServerError(msg, httpErr.Internal)
	appErr.Safe = httpErr.Code < http.StatusInternalServerError
	return appErr
}

// retryAfterSeconds rounds up so clients never retry too early.
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

// mappedStatus reports whether an echo status has an AppError type.
func mappedStatus(code int) bool {
	switch code {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusBadRequest,
		http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	}
	return false
}
