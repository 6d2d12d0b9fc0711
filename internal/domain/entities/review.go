package entities

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
)

const (
	ReviewMinLength = 10
	ReviewMaxLength = 300

	DefaultRatingsAverage = 4.5
)

// Review is stored in the reviews collection. (tour, user) is unique.
type Review struct {
	Id          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Rating      int                `bson:"rating"`
	CreatedAt   time.Time          `bson:"createdAt"`
	User        primitive.ObjectID `bson:"user"`
	Tour        primitive.ObjectID `bson:"tour"`
}

// ReviewWithRefs is a review with its user and tour references populated.
// Either reference may be nil when the target no longer exists.
type ReviewWithRefs struct {
	Review *Review
	Author *UserSummary
	Tour   *TourSummary
}

// RatingSummary is the aggregate the ledger writes onto a tour.
type RatingSummary struct {
	TourId   primitive.ObjectID `json:"tour"`
	Average  float64            `json:"ratingsAverage"`
	Quantity int                `json:"ratingsQuantity"`
}

func NewReview(userID, tourID primitive.ObjectID, description string, rating int, now time.Time) (*Review, error) {
	r := &Review{
		Id:          primitive.NewObjectID(),
		Description: strings.TrimSpace(description),
		Rating:      rating,
		CreatedAt:   now,
		User:        userID,
		Tour:        tourID,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Update applies the provided fields and re-validates.
func (r *Review) Update(description *string, rating *int) error {
	if description != nil {
		r.Description = strings.TrimSpace(*description)
	}
	if rating != nil {
		r.Rating = *rating
	}
	return r.Validate()
}

func (r *Review) Validate() error {
	var fields []apperrors.FieldError
	switch n := utf8.RuneCountInString(r.Description); {
	case n == 0:
		fields = append(fields, apperrors.FieldError{Field: "description", Msg: "Review must not be empty"})
	case n < ReviewMinLength:
		fields = append(fields, apperrors.FieldError{Field: "description", Msg: "Your review must be 10 or more characters"})
	case n > ReviewMaxLength:
		fields = append(fields, apperrors.FieldError{Field: "description", Msg: "Your review must be less than 300 characters"})
	}
	if r.Rating < 1 || r.Rating > 5 {
		fields = append(fields, apperrors.FieldError{Field: "rating", Msg: "Rating must be one between 1 and 5 stars"})
	}
	if r.User.IsZero() {
		fields = append(fields, apperrors.FieldError{Field: "user", Msg: "Review must belong to a user"})
	}
	if r.Tour.IsZero() {
		fields = append(fields, apperrors.FieldError{Field: "tour", Msg: "Review must belong to a tour"})
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Invalid review data", fields...)
	}
	return nil
}

// NewRatingSummary builds the aggregate for a tour. A tour without
// reviews falls back to the default average and a zero count.
func NewRatingSummary(tourID primitive.ObjectID, quantity int, average float64) RatingSummary {
	if quantity <= 0 {
		return RatingSummary{TourId: tourID, Average: DefaultRatingsAverage, Quantity: 0}
	}
	return RatingSummary{TourId: tourID, Average: RoundRating(average), Quantity: quantity}
}

// RoundRating rounds to two decimals and clamps into [1, 5].
func RoundRating(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Min(5, math.Max(1, v))
}
