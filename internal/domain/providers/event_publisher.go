package providers

import "context"

const (
	SubjectReviewCreated      = "reviews.created"
	SubjectReviewUpdated      = "reviews.updated"
	SubjectReviewDeleted      = "reviews.deleted"
	SubjectTourRatingsUpdated = "tours.ratings.updated"
)

// EventPublisher emits domain events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}
