package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/domain/entities"
)

type ReviewRepository interface {
	// Create fails with a duplicate key error when the user already
	// reviewed the tour.
	Create(ctx context.Context, review *entities.Review) (*entities.Review, error)
	FindById(ctx context.Context, id primitive.ObjectID) (*entities.Review, error)
	FindAll(ctx context.Context) ([]*entities.ReviewWithRefs, error)
	FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]*entities.ReviewWithRefs, error)
	Update(ctx context.Context, review *entities.Review) (*entities.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	DeleteByTour(ctx context.Context, tourID primitive.ObjectID) (int64, error)
	// DeleteByUser returns the distinct tours the removed reviews belonged to.
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// RatingLedger is the single owner of a tour's ratingsAverage and
// ratingsQuantity. Recompute scans every review of the tour and writes
// the result; with no reviews left it writes the defaults.
type RatingLedger interface {
	Recompute(ctx context.Context, tourID primitive.ObjectID) (entities.RatingSummary, error)
}
