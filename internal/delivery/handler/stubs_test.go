package handler

import (
	"context"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
	"tour-service/internal/application/command"
	"tour-service/internal/application/common"
	"tour-service/internal/application/query"
	"tour-service/internal/domain/entities"
)

type stubAuth struct {
	tokens      map[string]*entities.User
	lastForgot  *command.ForgotPasswordCommand
	lastReset   *command.ResetPasswordCommand
	registerErr error
}

func (s *stubAuth) Register(ctx context.Context, cmd *command.CreateUserCommand) (*command.TokenCommandResult, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &command.TokenCommandResult{Token: "new-token"}, nil
}

func (s *stubAuth) Login(ctx context.Context, cmd *command.LoginUserCommand) (*command.TokenCommandResult, error) {
	if cmd.Password == "throttled" {
		return nil, apperrors.NewTooManyRequestsError("Too many login attempts, please try again later").WithRetryAfter(90*time.Second + 500*time.Millisecond)
	}
	if cmd.Password != "abcdef" {
		return nil, apperrors.NewAuthError("Invalid credentials")
	}
	return &command.TokenCommandResult{Token: "login-token"}, nil
}

func (s *stubAuth) Reactivate(ctx context.Context, cmd *command.LoginUserCommand) (*command.TokenCommandResult, error) {
	return &command.TokenCommandResult{Msg: "Please use the login route: /api/auth"}, nil
}

func (s *stubAuth) ForgotPassword(ctx context.Context, cmd *command.ForgotPasswordCommand) (*command.MessageCommandResult, error) {
	s.lastForgot = cmd
	return &command.MessageCommandResult{Msg: "Reset email sent!"}, nil
}

func (s *stubAuth) ResetPassword(ctx context.Context, cmd *command.ResetPasswordCommand) (*command.TokenCommandResult, error) {
	s.lastReset = cmd
	return &command.TokenCommandResult{Token: "reset-token"}, nil
}

func (s *stubAuth) UpdatePassword(ctx context.Context, userID primitive.ObjectID, cmd *command.UpdatePasswordCommand) (*command.TokenCommandResult, error) {
	return &command.TokenCommandResult{Token: "changed-token"}, nil
}

func (s *stubAuth) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, apperrors.NewAuthError("No token, authorization denied")
	}
	user, ok := s.tokens[token]
	if !ok {
		return nil, apperrors.NewAuthError("Token is not valid")
	}
	return user, nil
}

type stubUsers struct {
	updated *command.UpdateMeCommand
}

func (s *stubUsers) FindActiveUsers(ctx context.Context) (*query.UserQueryListResult, error) {
	return &query.UserQueryListResult{Result: []*common.UserResult{}}, nil
}

func (s *stubUsers) UpdateMe(ctx context.Context, userID primitive.ObjectID, cmd *command.UpdateMeCommand) (*query.UserQueryResult, error) {
	s.updated = cmd
	return &query.UserQueryResult{Result: &common.UserResult{Id: userID, Name: *cmd.Name}}, nil
}

func (s *stubUsers) InactivateMe(ctx context.Context, userID primitive.ObjectID) (*command.MessageCommandResult, error) {
	return &command.MessageCommandResult{Msg: "Your account has been inactivated"}, nil
}

func (s *stubUsers) DeleteMe(ctx context.Context, userID primitive.ObjectID) (*command.MessageCommandResult, error) {
	return &command.MessageCommandResult{Msg: "User has been successfully deleted!"}, nil
}

type stubTours struct {
	listErr    error
	lastParams url.Values
}

func (s *stubTours) ListTours(ctx context.Context, params url.Values) (*query.TourQueryListResult, error) {
	s.lastParams = params
	if s.listErr != nil {
		return nil, s.listErr
	}
	return &query.TourQueryListResult{Result: []*common.TourResult{{Name: "The Forest Hiker"}}}, nil
}

func (s *stubTours) GetTour(ctx context.Context, id string) (*query.TourQueryResult, error) {
	return nil, apperrors.NewNotFoundError("Could not find Tour Id: " + id)
}

func (s *stubTours) CreateTour(ctx context.Context, cmd *command.CreateTourCommand) (*command.TourCommandResult, error) {
	return &command.TourCommandResult{Result: &common.TourResult{Name: cmd.Name}}, nil
}

func (s *stubTours) UpdateTour(ctx context.Context, id string, cmd *command.UpdateTourCommand) (*command.TourCommandResult, error) {
	return &command.TourCommandResult{Result: &common.TourResult{}}, nil
}

func (s *stubTours) DeleteTour(ctx context.Context, id string) (*command.MessageCommandResult, error) {
	return &command.MessageCommandResult{Msg: "Tour was deleted from the db"}, nil
}

func (s *stubTours) Top5(ctx context.Context) (*query.TourQueryListResult, error) {
	return &query.TourQueryListResult{Result: []*common.TourResult{}}, nil
}

func (s *stubTours) Stats(ctx context.Context) (*query.TourStatsQueryResult, error) {
	return &query.TourStatsQueryResult{}, nil
}

func (s *stubTours) MonthlyPlan(ctx context.Context, year string) (*query.MonthlyPlanQueryResult, error) {
	return &query.MonthlyPlanQueryResult{Result: []entities.MonthPlan{{MonthNumber: 7, Month: "Jul", CountTours: 2}}}, nil
}

func (s *stubTours) Within(ctx context.Context, distance, latlng, unit string) (*query.TourQueryListResult, error) {
	return &query.TourQueryListResult{Result: []*common.TourResult{}}, nil
}

func (s *stubTours) Distances(ctx context.Context, latlng, unit string) (*query.TourDistancesQueryResult, error) {
	return &query.TourDistancesQueryResult{}, nil
}

type stubReviews struct {
	author *entities.User
	tourID string
}

func (s *stubReviews) ListReviews(ctx context.Context) (*query.ReviewQueryListResult, error) {
	return &query.ReviewQueryListResult{Result: []*common.ReviewResult{{Rating: 5}, {Rating: 4}}}, nil
}

func (s *stubReviews) ListTourReviews(ctx context.Context, tourID string) (*query.ReviewQueryListResult, error) {
	return &query.ReviewQueryListResult{Result: []*common.ReviewResult{}}, nil
}

func (s *stubReviews) CreateReview(ctx context.Context, author *entities.User, tourID string, cmd *command.CreateReviewCommand) (*command.ReviewCommandResult, error) {
	s.author, s.tourID = author, tourID
	return &command.ReviewCommandResult{Result: &common.ReviewResult{Description: cmd.Description, Rating: cmd.Rating}}, nil
}

func (s *stubReviews) UpdateReview(ctx context.Context, author *entities.User, reviewID string, cmd *command.UpdateReviewCommand) (*command.ReviewCommandResult, error) {
	return nil, apperrors.NewNotFoundError("Review not found")
}

func (s *stubReviews) DeleteReview(ctx context.Context, actor *entities.User, reviewID string) (*command.MessageCommandResult, error) {
	return &command.MessageCommandResult{Msg: "Review was deleted"}, nil
}
