package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"tour-service/internal/apperrors"
	"tour-service/internal/application/interfaces"
	"tour-service/internal/domain/entities"
)

type Handler struct {
	auth    interfaces.AuthService
	users   interfaces.UserService
	tours   interfaces.TourService
	reviews interfaces.ReviewService
	logger  zerolog.Logger
	appURL  string
}

func NewHandler(
	auth interfaces.AuthService,
	users interfaces.UserService,
	tours interfaces.TourService,
	reviews interfaces.ReviewService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		auth:    auth,
		users:   users,
		tours:   tours,
		reviews: reviews,
		logger:  logger,
	}
}

// WithAppURL fixes the base of links sent by mail. Without it the base is
// taken from the request.
func (h *Handler) WithAppURL(appURL string) *Handler {
	h.appURL = appURL
	return h
}

// listResponse is the envelope used by the review and geo endpoints.
type listResponse struct {
	Status string `json:"status"`
	Items  int    `json:"items"`
	Data   any    `json:"data"`
}

func success(items int, data any) listResponse {
	return listResponse{Status: "success", Items: items, Data: data}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// bind decodes the body into dst and runs the struct validator.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}
	return c.Validate(dst)
}

// currentUser is set by AccessGuard. A missing user means the route was
// wired without the guard.
func currentUser(c echo.Context) (*entities.User, error) {
	user, ok := c.Get(contextUserKey).(*entities.User)
	if !ok || user == nil {
		return nil, apperrors.NewAuthError("No token, authorization denied")
	}
	return user, nil
}
