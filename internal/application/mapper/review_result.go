package mapper

import (
	"tour-service/internal/application/common"
	"tour-service/internal/domain/entities"
)

// NewReviewResult falls back to bare ids when a reference was not
// populated.
func NewReviewResult(r *entities.ReviewWithRefs) *common.ReviewResult {
	result := &common.ReviewResult{
		Id:          r.Review.Id,
		Description: r.Review.Description,
		Rating:      r.Review.Rating,
		CreatedAt:   r.Review.CreatedAt,
		User:        &common.UserRef{Id: r.Review.User},
		Tour:        &common.TourRef{Id: r.Review.Tour},
	}
	if r.Author != nil {
		result.User = &common.UserRef{Id: r.Author.Id, Name: r.Author.Name, Photo: r.Author.Photo}
	}
	if r.Tour != nil {
		result.Tour = &common.TourRef{Id: r.Tour.Id, Name: r.Tour.Name}
	}
	return result
}

func NewReviewResultFromEntity(review *entities.Review) *common.ReviewResult {
	return NewReviewResult(&entities.ReviewWithRefs{Review: review})
}

func NewReviewResultsFromEntities(reviews []*entities.ReviewWithRefs) []*common.ReviewResult {
	results := make([]*common.ReviewResult, 0, len(reviews))
	for _, r := range reviews {
		results = append(results, NewReviewResult(r))
	}
	return results
}
