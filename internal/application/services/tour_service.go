package services

import (
	"context"
	"net/url"
	"strconv"
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

const MsgTourDeleted = "Tour was deleted from the db"

type TourService struct {
	tourRepo   repositories.TourRepository
	reviewRepo repositories.ReviewRepository
	cache      providers.CacheProvider
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

func NewTourService(
	tourRepo repositories.TourRepository,
	reviewRepo repositories.ReviewRepository,
	cache providers.CacheProvider,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *TourService {
	return &TourService{
		tourRepo:   tourRepo,
		reviewRepo: reviewRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

var _ interfaces.TourService = (*TourService)(nil)

// WithClock replaces the time source, for tests.
func (s *TourService) WithClock(now func() time.Time) *TourService {
	s.now = now
	return s
}

func tourNotFound(id string) error {
	return apperrors.NewNotFoundError("Could not find Tour Id: " + id)
}

func (s *TourService) ListTours(ctx context.Context, params url.Values) (*query.TourQueryListResult, error) {
	tours, err := s.tourRepo.List(ctx, params)
	if err != nil {
		return nil, asServerError(err, "failed to list tours")
	}
	return &query.TourQueryListResult{Result: mapper.NewTourResultsFromEntities(tours)}, nil
}

func (s *TourService) GetTour(ctx context.Context, id string) (*query.TourQueryResult, error) {
	tourID, err := entities.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}
	tour, err := s.tourRepo.FindById(ctx, tourID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to load tour", err)
	}
	if tour == nil {
		return nil, tourNotFound(id)
	}

	guides, err := s.tourRepo.FindGuides(ctx, tour.Guides)
	if err != nil {
		return nil, apperrors.NewServerError("failed to load guides", err)
	}
	reviews, err := s.reviewRepo.FindByTour(ctx, tour.Id)
	if err != nil {
		return nil, apperrors.NewServerError("failed to load reviews", err)
	}
	return &query.TourQueryResult{Result: mapper.NewTourDetailResult(tour, guides, reviews)}, nil
}

func (s *TourService) CreateTour(ctx context.Context, cmd *command.CreateTourCommand) (*command.TourCommandResult, error) {
	tour, err := entities.NewTour(cmd.TourSpec, s.now())
	if err != nil {
		return nil, err
	}
	created, err := s.tourRepo.Create(ctx, tour)
	if err != nil {
		return nil, err
	}

	invalidateAggregates(ctx, s.cache, s.logger)
	s.logger.Info().Str("tour", created.Id.Hex()).Str("slug", created.Slug).Msg("tour created")
	return &command.TourCommandResult{Result: mapper.NewTourResultFromEntity(created)}, nil
}

func (s *TourService) UpdateTour(ctx context.Context, id string, cmd *command.UpdateTourCommand) (*command.TourCommandResult, error) {
	tourID, err := entities.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}
	tour, err := s.tourRepo.FindById(ctx, tourID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to load tour", err)
	}
	if tour == nil {
		return nil, tourNotFound(id)
	}

	if err := tour.ApplyPatch(cmd.TourPatch); err != nil {
		return nil, err
	}
	updated, err := s.tourRepo.Update(ctx, tour)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, tourNotFound(id)
	}

	invalidateAggregates(ctx, s.cache, s.logger)
	return &command.TourCommandResult{Result: mapper.NewTourResultFromEntity(updated)}, nil
}

// DeleteTour removes the tour and its reviews.
func (s *TourService) DeleteTour(ctx context.Context, id string) (*command.MessageCommandResult, error) {
	tourID, err := entities.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}
	deleted, err := s.tourRepo.Delete(ctx, tourID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to delete tour", err)
	}
	if !deleted {
		return nil, tourNotFound(id)
	}

	removed, err := s.reviewRepo.DeleteByTour(ctx, tourID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to delete tour reviews", err)
	}

	invalidateAggregates(ctx, s.cache, s.logger)
	s.logger.Info().Str("tour", id).Int64("reviews", removed).Msg("tour deleted")
	return &command.MessageCommandResult{Msg: MsgTourDeleted}, nil
}

func (s *TourService) Top5(ctx context.Context) (*query.TourQueryListResult, error) {
	var results []*entities.Tour
	err := s.cached(ctx, aggregateCachePrefix+"top5", &results, func() error {
		tours, err := s.tourRepo.Top5(ctx)
		results = tours
		return err
	})
	if err != nil {
		return nil, err
	}
	return &query.TourQueryListResult{Result: mapper.NewTourResultsFromEntities(results)}, nil
}

func (s *TourService) Stats(ctx context.Context) (*query.TourStatsQueryResult, error) {
	var stats []entities.DifficultyStats
	err := s.cached(ctx, aggregateCachePrefix+"stats", &stats, func() error {
		rows, err := s.tourRepo.Stats(ctx)
		stats = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return &query.TourStatsQueryResult{Result: stats}, nil
}

func (s *TourService) MonthlyPlan(ctx context.Context, year string) (*query.MonthlyPlanQueryResult, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, apperrors.NewFieldError("year", "Year must be a number")
	}
	if err := entities.ValidatePlanYear(y); err != nil {
		return nil, err
	}

	var plans []entities.MonthPlan
	err = s.cached(ctx, aggregateCachePrefix+"monthly:"+year, &plans, func() error {
		rows, err := s.tourRepo.MonthlyPlan(ctx, y)
		plans = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return &query.MonthlyPlanQueryResult{Result: plans}, nil
}

func (s *TourService) Within(ctx context.Context, distance, latlng, unit string) (*query.TourQueryListResult, error) {
	d, err := strconv.ParseFloat(distance, 64)
	if err != nil || d <= 0 {
		return nil, apperrors.NewFieldError("distance", "Distance must be a positive number")
	}
	lat, lng, err := entities.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	u, err := entities.ParseDistanceUnit(unit)
	if err != nil {
		return nil, err
	}

	tours, err := s.tourRepo.Within(ctx, d, lat, lng, u)
	if err != nil {
		return nil, apperrors.NewServerError("failed to search tours", err)
	}
	return &query.TourQueryListResult{Result: mapper.NewTourResultsFromEntities(tours)}, nil
}

func (s *TourService) Distances(ctx context.Context, latlng, unit string) (*query.TourDistancesQueryResult, error) {
	lat, lng, err := entities.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	u, err := entities.ParseDistanceUnit(unit)
	if err != nil {
		return nil, err
	}

	distances, err := s.tourRepo.Distances(ctx, lat, lng, u)
	if err != nil {
		return nil, apperrors.NewServerError("failed to compute distances", err)
	}
	return &query.TourDistancesQueryResult{Result: distances}, nil
}

// cached fills dst from the cache or runs load and stores its result.
// Cache failures fall through to load.
func (s *TourService) cached(ctx context.Context, key string, dst any, load func() error) error {
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if hit {
		return nil
	}

	if err := load(); err != nil {
		return asServerError(err, "failed to aggregate tours")
	}
	if err := s.cache.SetJSON(ctx, key, dst, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return nil
}

// asServerError keeps application errors and wraps everything else.
func asServerError(err error, msg string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewServerError(msg, err)
}
