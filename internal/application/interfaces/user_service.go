package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/application/command"
	"tour-service/internal/application/query"
	"tour-service/internal/domain/entities"
)

type AuthService interface {
	Register(ctx context.Context, cmd *command.CreateUserCommand) (*command.TokenCommandResult, error)
	Login(ctx context.Context, cmd *command.LoginUserCommand) (*command.TokenCommandResult, error)
	Reactivate(ctx context.Context, cmd *command.LoginUserCommand) (*command.TokenCommandResult, error)
	ForgotPassword(ctx context.Context, cmd *command.ForgotPasswordCommand) (*command.MessageCommandResult, error)
	ResetPassword(ctx context.Context, cmd *command.ResetPasswordCommand) (*command.TokenCommandResult, error)
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, cmd *command.UpdatePasswordCommand) (*command.TokenCommandResult, error)
	// Authenticate resolves a bearer token to its user or returns an
	// AuthError describing why the token was refused.
	Authenticate(ctx context.Context, token string) (*entities.User, error)
}

type UserService interface {
	FindActiveUsers(ctx context.Context) (*query.UserQueryListResult, error)
	UpdateMe(ctx context.Context, userID primitive.ObjectID, cmd *command.UpdateMeCommand) (*query.UserQueryResult, error)
	InactivateMe(ctx context.Context, userID primitive.ObjectID) (*command.MessageCommandResult, error)
	DeleteMe(ctx context.Context, userID primitive.ObjectID) (*command.MessageCommandResult, error)
}
