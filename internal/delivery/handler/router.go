package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tour-service/internal/domain/entities"
)

type RouterConfig struct {
	Development bool
	// APIRate is requests per second across the whole API; zero disables
	// the global limiter.
	APIRate  float64
	APIBurst int
}

func NewRouter(h *Handler, cfg RouterConfig, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Development, logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(RequestLogger(logger))
	e.Use(middleware.Recover())
	if cfg.APIRate > 0 {
		e.Use(GlobalRateLimit(rate.NewLimiter(rate.Limit(cfg.APIRate), cfg.APIBurst)))
	}

	e.GET("/health", h.Health)

	guard := AccessGuard(h.auth)
	staff := RestrictTo(entities.RoleAdmin, entities.RoleLeadGuide)
	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("", h.Register)
	users.GET("", h.ListUsers, guard, staff)
	users.GET("/me", h.Me, guard)
	users.PATCH("/updateMe", h.UpdateMe, guard)
	users.PATCH("/updatePassword", h.UpdatePassword, guard)
	users.PATCH("/inactivateMe", h.InactivateMe, guard)
	users.DELETE("/deleteMe", h.DeleteMe, guard)
	users.POST("/forgotPassword", h.ForgotPassword)
	users.PATCH("/resetPassword/:token", h.ResetPassword)

	auth := api.Group("/auth")
	auth.GET("", h.Me, guard)
	auth.POST("", h.Login)
	auth.POST("/reactivate", h.Reactivate)

	tours := api.Group("/tours")
	tours.GET("", h.ListTours)
	tours.POST("", h.CreateTour, guard, staff)
	tours.GET("/top-5-tours", h.Top5Tours)
	tours.GET("/tour-stats", h.TourStats)
	tours.GET("/monthly-plan/:year", h.MonthlyPlan)
	tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", h.ToursWithin)
	tours.GET("/distances/:latlng/unit/:unit", h.Distances)
	tours.GET("/:id", h.GetTour)
	tours.PATCH("/:id", h.UpdateTour, guard, staff)
	tours.DELETE("/:id", h.DeleteTour, guard, staff)

	reviews := api.Group("/reviews")
	reviews.GET("", h.ListReviews)
	reviews.GET("/:tourId", h.ListTourReviews)
	reviews.POST("/:tourId", h.CreateReview, guard)
	reviews.PATCH("/:reviewId", h.UpdateReview, guard)
	reviews.DELETE("/:reviewId", h.DeleteReview, guard)

	return e
}
