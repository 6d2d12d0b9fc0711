package interfaces

import (
	"context"

	"tour-service/internal/application/command"
	"tour-service/internal/application/query"
	"tour-service/internal/domain/entities"
)

type ReviewService interface {
	ListReviews(ctx context.Context) (*query.ReviewQueryListResult, error)
	ListTourReviews(ctx context.Context, tourID string) (*query.ReviewQueryListResult, error)
	CreateReview(ctx context.Context, author *entities.User, tourID string, cmd *command.CreateReviewCommand) (*command.ReviewCommandResult, error)
	UpdateReview(ctx context.Context, author *entities.User, reviewID string, cmd *command.UpdateReviewCommand) (*command.ReviewCommandResult, error)
	DeleteReview(ctx context.Context, actor *entities.User, reviewID string) (*command.MessageCommandResult, error)
}
