package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tour-service/internal/apperrors"
	"tour-service/internal/application/command"
	"tour-service/internal/application/interfaces"
	"tour-service/internal/application/mapper"
	"tour-service/internal/application/query"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/providers"
	"tour-service/internal/domain/repositories"
)

const (
	MsgReviewNotFound = "Review not found"
	MsgReviewDeleted  = "Review was deleted"
)

type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	tourRepo   repositories.TourRepository
	ratings    *ratingSync
	events     providers.EventPublisher
	logger     zerolog.Logger
	now        func() time.Time
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	tourRepo repositories.TourRepository,
	ledger repositories.RatingLedger,
	cache providers.CacheProvider,
	events providers.EventPublisher,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		tourRepo:   tourRepo,
		ratings:    &ratingSync{ledger: ledger, cache: cache, events: events, logger: logger},
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

var _ interfaces.ReviewService = (*ReviewService)(nil)

// WithClock replaces the time source, for tests.
func (s *ReviewService) WithClock(now func() time.Time) *ReviewService {
	s.now = now
	return s
}

func (s *ReviewService) ListReviews(ctx context.Context) (*query.ReviewQueryListResult, error) {
	reviews, err := s.reviewRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewServerError("failed to list reviews", err)
	}
	return &query.ReviewQueryListResult{Result: mapper.NewReviewResultsFromEntities(reviews)}, nil
}

func (s *ReviewService) ListTourReviews(ctx context.Context, tourID string) (*query.ReviewQueryListResult, error) {
	id, err := entities.ParseObjectID("tourId", tourID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.FindByTour(ctx, id)
	if err != nil {
		return nil, apperrors.NewServerError("failed to list reviews", err)
	}
	return &query.ReviewQueryListResult{Result: mapper.NewReviewResultsFromEntities(reviews)}, nil
}

func (s *ReviewService) CreateReview(ctx context.Context, author *entities.User, tourID string, cmd *command.CreateReviewCommand) (*command.ReviewCommandResult, error) {
	id, err := entities.ParseObjectID("tourId", tourID)
	if err != nil {
		return nil, err
	}
	tour, err := s.tourRepo.FindById(ctx, id)
	if err != nil {
		return nil, apperrors.NewServerError("failed to load tour", err)
	}
	if tour == nil {
		return nil, tourNotFound(tourID)
	}

	review, err := entities.NewReview(author.Id, tour.Id, cmd.Description, cmd.Rating, s.now())
	if err != nil {
		return nil, err
	}
	created, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		return nil, err
	}

	if _, err := s.ratings.refresh(ctx, tour.Id); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, providers.SubjectReviewCreated, newReviewEvent(created, s.now()))

	summary := author.Summary()
	return &command.ReviewCommandResult{Result: mapper.NewReviewResult(&entities.ReviewWithRefs{
		Review: created,
		Author: &summary,
		Tour:   &entities.TourSummary{Id: tour.Id, Name: tour.Name},
	})}, nil
}

// UpdateReview lets only the author edit. Anyone else gets a not found,
// so the review's existence is not revealed.
func (s *ReviewService) UpdateReview(ctx context.Context, author *entities.User, reviewID string, cmd *command.UpdateReviewCommand) (*command.ReviewCommandResult, error) {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.User != author.Id {
		return nil, apperrors.NewNotFoundError(MsgReviewNotFound)
	}

	if err := review.Update(cmd.Description, cmd.Rating); err != nil {
		return nil, err
	}
	updated, err := s.reviewRepo.Update(ctx, review)
	if err != nil {
		return nil, apperrors.NewServerError("failed to update review", err)
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError(MsgReviewNotFound)
	}

	if _, err := s.ratings.refresh(ctx, updated.Tour); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, providers.SubjectReviewUpdated, newReviewEvent(updated, s.now()))

	summary := author.Summary()
	return &command.ReviewCommandResult{Result: mapper.NewReviewResult(&entities.ReviewWithRefs{
		Review: updated,
		Author: &summary,
	})}, nil
}

// DeleteReview is allowed for the author and for admins.
func (s *ReviewService) DeleteReview(ctx context.Context, actor *entities.User, reviewID string) (*command.MessageCommandResult, error) {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.User != actor.Id && actor.Role != entities.RoleAdmin {
		return nil, apperrors.NewNotFoundError(MsgReviewNotFound)
	}

	deleted, err := s.reviewRepo.Delete(ctx, review.Id)
	if err != nil {
		return nil, apperrors.NewServerError("failed to delete review", err)
	}
	if !deleted {
		return nil, apperrors.NewNotFoundError(MsgReviewNotFound)
	}

	if _, err := s.ratings.refresh(ctx, review.Tour); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, providers.SubjectReviewDeleted, newReviewEvent(review, s.now()))
	return &command.MessageCommandResult{Msg: MsgReviewDeleted}, nil
}

func (s *ReviewService) findReview(ctx context.Context, reviewID string) (*entities.Review, error) {
	id, err := entities.ParseObjectID("reviewId", reviewID)
	if err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.FindById(ctx, id)
	if err != nil {
		return nil, apperrors.NewServerError("failed to load review", err)
	}
	if review == nil {
		return nil, apperrors.NewNotFoundError(MsgReviewNotFound)
	}
	return review, nil
}
