package mapper

import (
	"tour-service/internal/application/common"
	"tour-service/internal/domain/entities"
)

func NewTourResultFromEntity(tour *entities.Tour) *common.TourResult {
	return &common.TourResult{
		Id:              tour.Id,
		Name:            tour.Name,
		Slug:            tour.Slug,
		Duration:        tour.Duration,
		DurationWeeks:   tour.DurationWeeks(),
		MaxGroupSize:    tour.MaxGroupSize,
		Difficulty:      tour.Difficulty,
		RatingsAverage:  tour.RatingsAverage,
		RatingsQuantity: tour.RatingsQuantity,
		Price:           tour.Price,
		CustomerPrice:   tour.CustomerPrice(),
		PriceDiscount:   tour.PriceDiscount,
		Summary:         tour.Summary,
		Description:     tour.Description,
		ImageCover:      tour.ImageCover,
		Images:          tour.Images,
		StartDates:      tour.StartDates,
		SecretTour:      tour.SecretTour,
		StartLocation:   tour.StartLocation,
		Locations:       tour.Locations,
		Guides:          tour.Guides,
	}
}

func NewTourResultsFromEntities(tours []*entities.Tour) []*common.TourResult {
	results := make([]*common.TourResult, 0, len(tours))
	for _, t := range tours {
		results = append(results, NewTourResultFromEntity(t))
	}
	return results
}

// NewTourDetailResult keeps the guides in the order the tour lists them.
func NewTourDetailResult(tour *entities.Tour, guides []entities.UserSummary, reviews []*entities.ReviewWithRefs) *common.TourDetailResult {
	byID := make(map[string]*entities.UserSummary, len(guides))
	for i := range guides {
		byID[guides[i].Id.Hex()] = &guides[i]
	}

	refs := make([]*common.UserRef, 0, len(tour.Guides))
	for _, id := range tour.Guides {
		if g, ok := byID[id.Hex()]; ok {
			refs = append(refs, NewUserRefFromSummary(g))
		}
	}

	return &common.TourDetailResult{
		TourResult: NewTourResultFromEntity(tour),
		Guides:     refs,
		Reviews:    NewReviewResultsFromEntities(reviews),
	}
}
