// Package seed loads and clears development data.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tour-service/internal/db"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/repositories"
)

const (
	UsersFile   = "users.json"
	ToursFile   = "tours.json"
	ReviewsFile = "reviews.json"
)

type userRecord struct {
	Id       string        `json:"_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Photo    string        `json:"photo"`
	Role     entities.Role `json:"role"`
	Active   *bool         `json:"active"`
	Password string        `json:"password"`
}

type tourRecord struct {
	Id string `json:"_id"`
	entities.TourSpec
}

type reviewRecord struct {
	Id        string    `json:"_id"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	User      string    `json:"user"`
	Tour      string    `json:"tour"`
	CreatedAt time.Time `json:"createdAt"`
}

type Seeder struct {
	database *mongo.Database
	users    repositories.UserRepository
	tours    repositories.TourRepository
	reviews  repositories.ReviewRepository
	ledger   repositories.RatingLedger
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSeeder(
	database *mongo.Database,
	users repositories.UserRepository,
	tours repositories.TourRepository,
	reviews repositories.ReviewRepository,
	ledger repositories.RatingLedger,
	logger zerolog.Logger,
) *Seeder {
	return &Seeder{
		database: database,
		users:    users,
		tours:    tours,
		reviews:  reviews,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// Import loads users, tours and reviews from dir, in that order, then
// recomputes the ratings of every imported tour. Missing files are skipped.
func (s *Seeder) Import(ctx context.Context, dir string) error {
	var userRecs []userRecord
	if err := readRecords(filepath.Join(dir, UsersFile), &userRecs); err != nil {
		return err
	}
	for _, rec := range userRecs {
		user, err := buildUser(rec, s.now())
		if err != nil {
			return err
		}
		if _, err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("import user %s: %w", rec.Email, err)
		}
	}
	s.logger.Info().Int("count", len(userRecs)).Msg("users imported")

	var tourRecs []tourRecord
	if err := readRecords(filepath.Join(dir, ToursFile), &tourRecs); err != nil {
		return err
	}
	tourIDs := make([]primitive.ObjectID, 0, len(tourRecs))
	for _, rec := range tourRecs {
		tour, err := buildTour(rec, s.now())
		if err != nil {
			return err
		}
		if _, err := s.tours.Create(ctx, tour); err != nil {
			return fmt.Errorf("import tour %s: %w", rec.Name, err)
		}
		tourIDs = append(tourIDs, tour.Id)
	}
	s.logger.Info().Int("count", len(tourRecs)).Msg("tours imported")

	var reviewRecs []reviewRecord
	if err := readRecords(filepath.Join(dir, ReviewsFile), &reviewRecs); err != nil {
		return err
	}
	for _, rec := range reviewRecs {
		review, err := buildReview(rec, s.now())
		if err != nil {
			return err
		}
		if _, err := s.reviews.Create(ctx, review); err != nil {
			return fmt.Errorf("import review %s: %w", rec.Id, err)
		}
	}
	s.logger.Info().Int("count", len(reviewRecs)).Msg("reviews imported")

	for _, id := range tourIDs {
		if _, err := s.ledger.Recompute(ctx, id); err != nil {
			return fmt.Errorf("recompute ratings for %s: %w", id.Hex(), err)
		}
	}
	return nil
}

// Delete removes every document from the three collections.
func (s *Seeder) Delete(ctx context.Context) error {
	for _, name := range []string{db.ReviewsCollection, db.ToursCollection, db.UsersCollection} {
		res, err := s.database.Collection(name).DeleteMany(ctx, bson.M{})
		if err != nil {
			return fmt.Errorf("delete %s: %w", name, err)
		}
		s.logger.Info().Str("collection", name).Int64("deleted", res.DeletedCount).Msg("documents deleted")
	}
	return nil
}

func readRecords(path string, dst any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// buildUser keeps bcrypt hashes from the file and hashes plaintext ones.
func buildUser(rec userRecord, now time.Time) (*entities.User, error) {
	user := entities.NewUser(rec.Name, rec.Email, rec.Password, now)
	if err := setID(&user.Id, rec.Id); err != nil {
		return nil, err
	}
	user.Photo = rec.Photo
	if rec.Role != "" {
		user.Role = rec.Role
	}
	if rec.Active != nil {
		user.Active = *rec.Active
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("user %s: %w", rec.Email, err)
	}

	if !strings.HasPrefix(user.Password, "$2") {
		if err := user.HashPassword(); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func buildTour(rec tourRecord, now time.Time) (*entities.Tour, error) {
	tour, err := entities.NewTour(rec.TourSpec, now)
	if err != nil {
		return nil, fmt.Errorf("tour %s: %w", rec.Name, err)
	}
	if err := setID(&tour.Id, rec.Id); err != nil {
		return nil, err
	}
	return tour, nil
}

func buildReview(rec reviewRecord, now time.Time) (*entities.Review, error) {
	userID, err := entities.ParseObjectID("user", rec.User)
	if err != nil {
		return nil, err
	}
	tourID, err := entities.ParseObjectID("tour", rec.Tour)
	if err != nil {
		return nil, err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	review, err := entities.NewReview(userID, tourID, rec.Review, rec.Rating, createdAt)
	if err != nil {
		return nil, fmt.Errorf("review %s: %w", rec.Id, err)
	}
	if err := setID(&review.Id, rec.Id); err != nil {
		return nil, err
	}
	return review, nil
}

// setID overrides a generated id when the record carries one.
func setID(dst *primitive.ObjectID, hex string) error {
	if hex == "" {
		return nil
	}
	id, err := entities.ParseObjectID("_id", hex)
	if err != nil {
		return err
	}
	*dst = id
	return nil
}
