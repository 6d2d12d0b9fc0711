package mongodb

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tour-service/internal/apperrors"
	"tour-service/internal/db"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/repositories"
)

// RatingLedger is the only writer of a tour's ratingsAverage and
// ratingsQuantity.
//
// Recompute reads the reviews and then writes the tour without a
// transaction. Two concurrent review writes on one tour can leave a stale
// aggregate until the next mutation recomputes it.
type RatingLedger struct {
	reviews *mongo.Collection
	tours   *mongo.Collection
	logger  zerolog.Logger
}

func NewRatingLedger(database *mongo.Database, logger zerolog.Logger) repositories.RatingLedger {
	return &RatingLedger{
		reviews: database.Collection(db.ReviewsCollection),
		tours:   database.Collection(db.ToursCollection),
		logger:  logger,
	}
}

type ratingAggregate struct {
	Quantity int     `bson:"n"`
	Average  float64 `bson:"avg"`
}

func ratingPipeline(tourID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tour"},
			{Key: "n", Value: bson.M{"$sum": 1}},
			{Key: "avg", Value: bson.M{"$avg": "$rating"}},
		}}},
	}
}

func (l *RatingLedger) Recompute(ctx context.Context, tourID primitive.ObjectID) (entities.RatingSummary, error) {
	summary, err := l.aggregate(ctx, tourID)
	if err == nil {
		err = l.setTourRatings(ctx, summary)
	}
	if err != nil {
		l.logger.Error().Err(err).Str("tour", tourID.Hex()).Msg("rating recompute failed")
		return entities.RatingSummary{}, apperrors.NewServerError("rating recompute failed", err)
	}
	return summary, nil
}

func (l *RatingLedger) aggregate(ctx context.Context, tourID primitive.ObjectID) (entities.RatingSummary, error) {
	cursor, err := l.reviews.Aggregate(ctx, ratingPipeline(tourID))
	if err != nil {
		return entities.RatingSummary{}, err
	}
	var rows []ratingAggregate
	if err := cursor.All(ctx, &rows); err != nil {
		return entities.RatingSummary{}, err
	}
	if len(rows) == 0 {
		return entities.NewRatingSummary(tourID, 0, 0), nil
	}
	return entities.NewRatingSummary(tourID, rows[0].Quantity, rows[0].Average), nil
}

// setTourRatings is the single write path for the rating fields.
func (l *RatingLedger) setTourRatings(ctx context.Context, s entities.RatingSummary) error {
	_, err := l.tours.UpdateByID(ctx, s.TourId, bson.M{"$set": bson.M{
		"ratingsAverage":  s.Average,
		"ratingsQuantity": s.Quantity,
	}})
	return err
}
