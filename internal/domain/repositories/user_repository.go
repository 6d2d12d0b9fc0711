package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/domain/entities"
)

// UserRepository finders return (nil, nil) when no document matches.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	FindById(ctx context.Context, id primitive.ObjectID) (*entities.User, error)
	// FindByIdWithPassword includes the password hash for credential checks.
	FindByIdWithPassword(ctx context.Context, id primitive.ObjectID) (*entities.User, error)
	// FindByEmail includes the password hash and active flag.
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*entities.User, error)
	FindActive(ctx context.Context) ([]*entities.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*entities.User, error)
	// SaveCredentials persists the password, changed-at and reset fields.
	SaveCredentials(ctx context.Context, user *entities.User) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}
