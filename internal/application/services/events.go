package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/providers"
	"tour-service/internal/domain/repositories"
)

// aggregateCachePrefix covers every cached tour aggregation.
const aggregateCachePrefix = "tours:agg:"

type ReviewEvent struct {
	ReviewId primitive.ObjectID `json:"reviewId"`
	TourId   primitive.ObjectID `json:"tourId"`
	UserId   primitive.ObjectID `json:"userId"`
	Rating   int                `json:"rating,omitempty"`
	At       time.Time          `json:"at"`
}

func newReviewEvent(r *entities.Review, at time.Time) ReviewEvent {
	return ReviewEvent{
		ReviewId: r.Id,
		TourId:   r.Tour,
		UserId:   r.User,
		Rating:   r.Rating,
		At:       at,
	}
}

// ratingSync runs after every review mutation: the ledger recomputes the
// tour, cached aggregates are dropped and the new summary is published.
type ratingSync struct {
	ledger repositories.RatingLedger
	cache  providers.CacheProvider
	events providers.EventPublisher
	logger zerolog.Logger
}

func (s *ratingSync) refresh(ctx context.Context, tourID primitive.ObjectID) (entities.RatingSummary, error) {
	summary, err := s.ledger.Recompute(ctx, tourID)
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			err = apperrors.NewServerError("rating recompute failed", err)
		}
		return entities.RatingSummary{}, err
	}

	invalidateAggregates(ctx, s.cache, s.logger)
	publish(ctx, s.events, s.logger, providers.SubjectTourRatingsUpdated, summary)
	return summary, nil
}

func invalidateAggregates(ctx context.Context, cache providers.CacheProvider, logger zerolog.Logger) {
	if err := cache.DeletePrefix(ctx, aggregateCachePrefix); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate aggregate cache")
	}
}

// publish is best effort; failures are logged only.
func publish(ctx context.Context, events providers.EventPublisher, logger zerolog.Logger, subject string, payload any) {
	if err := events.Publish(ctx, subject, payload); err != nil {
		logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
