package repositories

import (
	"context"
	"net/url"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/domain/entities"
)

// TourRepository has no way to write rating fields; see RatingLedger.
// Every list and aggregation excludes secret tours. FindById does not.
type TourRepository interface {
	Create(ctx context.Context, tour *entities.Tour) (*entities.Tour, error)
	FindById(ctx context.Context, id primitive.ObjectID) (*entities.Tour, error)
	List(ctx context.Context, params url.Values) ([]*entities.Tour, error)
	Update(ctx context.Context, tour *entities.Tour) (*entities.Tour, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	FindGuides(ctx context.Context, ids []primitive.ObjectID) ([]entities.UserSummary, error)

	Top5(ctx context.Context) ([]*entities.Tour, error)
	Stats(ctx context.Context) ([]entities.DifficultyStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]entities.MonthPlan, error)
	Within(ctx context.Context, distance, lat, lng float64, unit entities.DistanceUnit) ([]*entities.Tour, error)
	Distances(ctx context.Context, lat, lng float64, unit entities.DistanceUnit) ([]entities.TourDistance, error)
}
