package interfaces

import (
	"context"
	"net/url"

	"tour-service/internal/application/command"
	"tour-service/internal/application/query"
)

type TourService interface {
	ListTours(ctx context.Context, params url.Values) (*query.TourQueryListResult, error)
	GetTour(ctx context.Context, id string) (*query.TourQueryResult, error)
	CreateTour(ctx context.Context, cmd *command.CreateTourCommand) (*command.TourCommandResult, error)
	UpdateTour(ctx context.Context, id string, cmd *command.UpdateTourCommand) (*command.TourCommandResult, error)
	DeleteTour(ctx context.Context, id string) (*command.MessageCommandResult, error)

	Top5(ctx context.Context) (*query.TourQueryListResult, error)
	Stats(ctx context.Context) (*query.TourStatsQueryResult, error)
	MonthlyPlan(ctx context.Context, year string) (*query.MonthlyPlanQueryResult, error)
	Within(ctx context.Context, distance, latlng, unit string) (*query.TourQueryListResult, error)
	Distances(ctx context.Context, latlng, unit string) (*query.TourDistancesQueryResult, error)
}
