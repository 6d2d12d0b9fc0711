package common

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/domain/entities"
)

// TourResult is the client view of a tour. Fields left out by a
// projection are omitted.
type TourResult struct {
	Id              primitive.ObjectID   `json:"_id"`
	Name            string               `json:"name,omitempty"`
	Slug            string               `json:"slug,omitempty"`
	Duration        int                  `json:"duration,omitempty"`
	DurationWeeks   float64              `json:"durationWeeks,omitempty"`
	MaxGroupSize    int                  `json:"maxGroupSize,omitempty"`
	Difficulty      entities.Difficulty  `json:"difficulty,omitempty"`
	RatingsAverage  float64              `json:"ratingsAverage,omitempty"`
	RatingsQuantity int                  `json:"ratingsQuantity"`
	Price           float64              `json:"price,omitempty"`
	CustomerPrice   float64              `json:"customerPrice,omitempty"`
	PriceDiscount   *float64             `json:"priceDiscount,omitempty"`
	Summary         string               `json:"summary,omitempty"`
	Description     string               `json:"description,omitempty"`
	ImageCover      string               `json:"imageCover,omitempty"`
	Images          []string             `json:"images,omitempty"`
	StartDates      []time.Time          `json:"startDates,omitempty"`
	SecretTour      bool                 `json:"secretTour,omitempty"`
	StartLocation   *entities.GeoPoint   `json:"startLocation,omitempty"`
	Locations       []entities.GeoPoint  `json:"locations,omitempty"`
	Guides          []primitive.ObjectID `json:"guides,omitempty"`
}

// TourDetailResult is a single tour with guides and reviews populated.
type TourDetailResult struct {
	*TourResult
	Guides  []*UserRef      `json:"guides"`
	Reviews []*ReviewResult `json:"reviews"`
}
