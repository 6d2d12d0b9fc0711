package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

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
	MsgPasswordNotHere = "Cannot update password here, please see /api/users/updatePassword"
	MsgUserGone        = "User does not exist or has been deleted"
	MsgUserInactivated = "Your account has been inactivated"
	MsgUserDeleted     = "User has been successfully deleted!"
)

type UserService struct {
	userRepo   repositories.UserRepository
	reviewRepo repositories.ReviewRepository
	ratings    *ratingSync
	logger     zerolog.Logger
}

func NewUserService(
	userRepo repositories.UserRepository,
	reviewRepo repositories.ReviewRepository,
	ledger repositories.RatingLedger,
	cache providers.CacheProvider,
	events providers.EventPublisher,
	logger zerolog.Logger,
) interfaces.UserService {
	return &UserService{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		ratings:    &ratingSync{ledger: ledger, cache: cache, events: events, logger: logger},
		logger:     logger,
	}
}

func (s *UserService) FindActiveUsers(ctx context.Context) (*query.UserQueryListResult, error) {
	users, err := s.userRepo.FindActive(ctx)
	if err != nil {
		return nil, apperrors.NewServerError("failed to list users", err)
	}
	return &query.UserQueryListResult{Result: mapper.NewUserResultsFromEntities(users)}, nil
}

func (s *UserService) UpdateMe(ctx context.Context, userID primitive.ObjectID, cmd *command.UpdateMeCommand) (*query.UserQueryResult, error) {
	if cmd.Password != nil || cmd.PasswordConfirm != nil {
		return nil, apperrors.NewValidationError(MsgPasswordNotHere)
	}

	user, err := s.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError(MsgUserGone)
	}

	if cmd.Name != nil {
		user.Name = strings.TrimSpace(*cmd.Name)
	}
	emailChanged := false
	if cmd.Email != nil {
		email := entities.NormalizeEmail(*cmd.Email)
		emailChanged = email != user.Email
		user.Email = email
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if emailChanged {
		existing, err := s.userRepo.FindByEmail(ctx, user.Email)
		if err != nil {
			return nil, apperrors.NewServerError("failed to look up user", err)
		}
		if existing != nil && existing.Id != user.Id {
			return nil, apperrors.NewDuplicateKeyError("This user/email already exists!", nil)
		}
	}

	updated, err := s.userRepo.UpdateProfile(ctx, user.Id, user.Name, user.Email)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError(MsgUserGone)
	}
	return &query.UserQueryResult{Result: mapper.NewUserResultFromEntity(updated)}, nil
}

// InactivateMe keeps the user's reviews.
func (s *UserService) InactivateMe(ctx context.Context, userID primitive.ObjectID) (*command.MessageCommandResult, error) {
	if err := s.userRepo.SetActive(ctx, userID, false); err != nil {
		return nil, apperrors.NewServerError("failed to inactivate user", err)
	}
	s.logger.Info().Str("user", userID.Hex()).Msg("user inactivated")
	return &command.MessageCommandResult{Msg: MsgUserInactivated}, nil
}

// DeleteMe removes every review the user wrote, recomputes the ratings of
// the affected tours and only then removes the user. A failure part way
// leaves the user in place so the request can be retried.
func (s *UserService) DeleteMe(ctx context.Context, userID primitive.ObjectID) (*command.MessageCommandResult, error) {
	user, err := s.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError(MsgUserGone)
	}

	tours, err := s.reviewRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to delete user reviews", err)
	}
	for _, tourID := range tours {
		if _, err := s.ratings.refresh(ctx, tourID); err != nil {
			return nil, err
		}
	}

	deleted, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to delete user", err)
	}
	if !deleted {
		return nil, apperrors.NewNotFoundError(MsgUserGone)
	}

	s.logger.Info().Str("user", userID.Hex()).Int("tours", len(tours)).Msg("user deleted")
	return &command.MessageCommandResult{Msg: MsgUserDeleted}, nil
}
