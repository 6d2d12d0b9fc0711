package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
	"tour-service/internal/application/command"
	"tour-service/internal/application/interfaces"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/providers"
	"tour-service/internal/domain/repositories"
	"tour-service/internal/infrastructure"
)

const (
	MsgInvalidCredentials  = "Invalid credentials"
	MsgAccountInactive     = "Your account was inactivated, please go to /api/auth/reactivate to reactivate your account."
	MsgUseLogin            = "Please use the login route: /api/auth"
	MsgNoUserWithEmail     = "There is no user with this email"
	MsgResetEmailFailed    = "There is an error sending this email, please try again later"
	MsgResetEmailSent      = "Reset email sent!"
	MsgResetTokenInvalid   = "The reset token expired or is not valid anymore"
	MsgWrongPassword       = "Incorrect, please enter your current password"
	MsgNewPasswordRequired = "Please enter a new password"
	MsgNoToken             = "No token, authorization denied"
	MsgTokenInvalid        = "Token is not valid"
	MsgTokenUserMissing    = "The user belonging to this token no longer exists (token/user mismatch)"
	MsgPasswordChanged     = "User recently changed password, please log in again"
	MsgTooManyLogins       = "Too many login attempts, please try again later"
	MsgTooManyResets       = "Too many password reset requests, please try again later"
)

const resetEmailSubject = "Your password reset token (valid for 10 min)"

type AuthService struct {
	userRepo    repositories.UserRepository
	tokens      providers.TokenProvider
	mailer      providers.Mailer
	rateLimiter *infrastructure.RateLimiter
	logger      zerolog.Logger
	now         func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens providers.TokenProvider,
	mailer providers.Mailer,
	rateLimiter *infrastructure.RateLimiter,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		tokens:      tokens,
		mailer:      mailer,
		rateLimiter: rateLimiter,
		logger:      logger,
		now:         time.Now,
	}
}

var _ interfaces.AuthService = (*AuthService)(nil)

// WithClock replaces the time source, for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Register(ctx context.Context, cmd *command.CreateUserCommand) (*command.TokenCommandResult, error) {
	// An omitted confirmation is not checked; a supplied one must match.
	confirm := cmd.PasswordConfirm
	if confirm == "" {
		confirm = cmd.Password
	}

	user := entities.NewUser(cmd.Name, cmd.Email, cmd.Password, s.now())
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := entities.ValidatePassword(cmd.Password, confirm); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up user", err)
	}
	if existingUser != nil {
		return nil, apperrors.NewDuplicateKeyError("This user/email already exists!", nil)
	}

	if err := user.HashPassword(); err != nil {
		return nil, apperrors.NewServerError("failed to hash password", err)
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user", user.Id.Hex()).Msg("user registered")
	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, cmd *command.LoginUserCommand) (*command.TokenCommandResult, error) {
	user, err := s.checkCredentials(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return &command.TokenCommandResult{Msg: MsgAccountInactive}, nil
	}
	return s.issueToken(user)
}

func (s *AuthService) Reactivate(ctx context.Context, cmd *command.LoginUserCommand) (*command.TokenCommandResult, error) {
	user, err := s.checkCredentials(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if user.Active {
		return &command.TokenCommandResult{Msg: MsgUseLogin}, nil
	}
	if err := s.userRepo.SetActive(ctx, user.Id, true); err != nil {
		return nil, apperrors.NewServerError("failed to reactivate user", err)
	}

	s.logger.Info().Str("user", user.Id.Hex()).Msg("user reactivated")
	return s.issueToken(user)
}

// checkCredentials never reveals which of email or password was wrong.
func (s *AuthService) checkCredentials(ctx context.Context, cmd *command.LoginUserCommand) (*entities.User, error) {
	email := entities.NormalizeEmail(cmd.Email)
	if err := entities.ValidateEmail(email); err != nil {
		return nil, apperrors.NewFieldError("email", "Please provide a valid email!")
	}
	if cmd.Password == "" {
		return nil, apperrors.NewFieldError("password", "Password is required")
	}

	key := "login:" + email
	if !s.rateLimiter.Allow(key) {
		return nil, apperrors.NewTooManyRequestsError(MsgTooManyLogins).WithRetryAfter(s.rateLimiter.RetryAfter(key))
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up user", err)
	}
	if user == nil || user.CheckPassword(cmd.Password) != nil {
		return nil, apperrors.NewAuthError(MsgInvalidCredentials)
	}

	s.rateLimiter.Reset(key)
	return user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, cmd *command.ForgotPasswordCommand) (*command.MessageCommandResult, error) {
	email := entities.NormalizeEmail(cmd.Email)
	if err := entities.ValidateEmail(email); err != nil {
		return nil, apperrors.NewFieldError("email", "Please provide a valid email!")
	}
	resetKey := "reset:" + email
	if !s.rateLimiter.Allow(resetKey) {
		return nil, apperrors.NewTooManyRequestsError(MsgTooManyResets).WithRetryAfter(s.rateLimiter.RetryAfter(resetKey))
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError(MsgNoUserWithEmail)
	}

	rawToken, err := user.CreatePasswordResetToken(s.now())
	if err != nil {
		return nil, apperrors.NewServerError("failed to create reset token", err)
	}
	if err := s.userRepo.SaveCredentials(ctx, user); err != nil {
		return nil, apperrors.NewServerError("failed to store reset token", err)
	}

	resetURL := fmt.Sprintf("%s/api/users/resetPassword/%s", strings.TrimRight(cmd.ResetURLBase, "/"), rawToken)
	msg := providers.Email{
		To:      user.Email,
		Subject: resetEmailSubject,
		Text: fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\n"+
			"If you didn't forget your password, please ignore this email!", resetURL),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("user", user.Id.Hex()).Msg("failed to send reset email")
		user.ClearPasswordReset()
		if clearErr := s.userRepo.SaveCredentials(ctx, user); clearErr != nil {
			s.logger.Error().Err(clearErr).Str("user", user.Id.Hex()).Msg("failed to clear reset token")
		}
		return nil, apperrors.NewSafeServerError(MsgResetEmailFailed, err)
	}

	return &command.MessageCommandResult{Msg: MsgResetEmailSent}, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, cmd *command.ResetPasswordCommand) (*command.TokenCommandResult, error) {
	now := s.now()
	user, err := s.userRepo.FindByResetToken(ctx, entities.HashResetToken(cmd.Token), now)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up reset token", err)
	}
	if user == nil {
		return nil, apperrors.NewAuthError(MsgResetTokenInvalid)
	}
	if err := entities.ValidatePassword(cmd.Password, cmd.PasswordConfirm); err != nil {
		return nil, err
	}

	if err := user.ChangePassword(cmd.Password, now.Add(-time.Millisecond)); err != nil {
		return nil, apperrors.NewServerError("failed to hash password", err)
	}
	user.ClearPasswordReset()
	if err := s.userRepo.SaveCredentials(ctx, user); err != nil {
		return nil, apperrors.NewServerError("failed to store password", err)
	}

	s.logger.Info().Str("user", user.Id.Hex()).Msg("password reset")
	return s.issueToken(user)
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, cmd *command.UpdatePasswordCommand) (*command.TokenCommandResult, error) {
	user, err := s.userRepo.FindByIdWithPassword(ctx, userID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	if user.CheckPassword(cmd.CurrentPassword) != nil {
		return nil, apperrors.NewAuthError(MsgWrongPassword)
	}
	if cmd.NewPassword == cmd.CurrentPassword {
		return nil, apperrors.NewFieldError("newPassword", MsgNewPasswordRequired)
	}
	if err := entities.ValidatePassword(cmd.NewPassword, cmd.NewPasswordConfirm); err != nil {
		return nil, err
	}

	// Strictly before the new token's issue time.
	if err := user.ChangePassword(cmd.NewPassword, s.now().Add(-time.Millisecond)); err != nil {
		return nil, apperrors.NewServerError("failed to hash password", err)
	}
	if err := s.userRepo.SaveCredentials(ctx, user); err != nil {
		return nil, apperrors.NewServerError("failed to store password", err)
	}

	s.logger.Info().Str("user", user.Id.Hex()).Msg("password changed")
	return s.issueToken(user)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, apperrors.NewAuthError(MsgNoToken)
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token rejected")
		return nil, apperrors.NewAuthError(MsgTokenInvalid)
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserId)
	if err != nil {
		return nil, apperrors.NewAuthError(MsgTokenInvalid)
	}

	user, err := s.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, apperrors.NewServerError("failed to look up user", err)
	}
	if user == nil {
		return nil, apperrors.NewAuthError(MsgTokenUserMissing)
	}
	if user.PasswordChangedAfter(claims.IssuedAt) {
		return nil, apperrors.NewAuthError(MsgPasswordChanged)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *entities.User) (*command.TokenCommandResult, error) {
	token, err := s.tokens.GenerateToken(user.Id.Hex())
	if err != nil {
		return nil, apperrors.NewServerError("failed to sign token", err)
	}
	return &command.TokenCommandResult{Token: token}, nil
}
