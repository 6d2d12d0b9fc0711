package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tour-service/internal/apperrors"
	"tour-service/internal/application/interfaces"
	"tour-service/internal/domain/entities"
)

const (
	contextUserKey  = "user"
	authTokenHeader = "x-auth-token"

	MsgPermissionDenied = "You do not have permission to perform this action"
	MsgTooManyRequests  = "Too many requests, please try again later"
)

// AccessGuard resolves the request token to a user and stores it on the
// context under "user".
func AccessGuard(auth interfaces.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := auth.Authenticate(c.Request().Context(), tokenFromRequest(c.Request()))
			if err != nil {
				return err
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

// tokenFromRequest prefers x-auth-token and falls back to a bearer token.
func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(authTokenHeader)); token != "" {
		return token
	}
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RestrictTo admits only users holding one of roles. It must run after
// AccessGuard.
func RestrictTo(roles ...entities.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := currentUser(c)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return apperrors.NewAccessDeniedError(MsgPermissionDenied)
		}
	}
}

// GlobalRateLimit applies one token bucket to every request.
func GlobalRateLimit(limiter *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return apperrors.NewTooManyRequestsError(MsgTooManyRequests)
			}
			return next(c)
		}
	}
}

// RequestLogger writes one zerolog line per request.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				event = logger.Error()
			case v.Status >= http.StatusBadRequest:
				event = logger.Warn()
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
