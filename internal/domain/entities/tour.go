package entities

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

const (
	TourNameMinLength = 10
	TourNameMaxLength = 40

	customerPriceFactor = 1.07
)

// GeoPoint is a GeoJSON point. Coordinates are [lng, lat].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

// Tour is stored in the tours collection. RatingsAverage and
// RatingsQuantity are written only by the rating ledger.
type Tour struct {
	Id              primitive.ObjectID   `bson:"_id,omitempty"`
	Name            string               `bson:"name,omitempty"`
	Slug            string               `bson:"slug,omitempty"`
	Duration        int                  `bson:"duration,omitempty"`
	MaxGroupSize    int                  `bson:"maxGroupSize,omitempty"`
	Difficulty      Difficulty           `bson:"difficulty,omitempty"`
	RatingsAverage  float64              `bson:"ratingsAverage,omitempty"`
	RatingsQuantity int                  `bson:"ratingsQuantity"`
	Price           float64              `bson:"price,omitempty"`
	PriceDiscount   *float64             `bson:"priceDiscount,omitempty"`
	Summary         string               `bson:"summary,omitempty"`
	Description     string               `bson:"description,omitempty"`
	ImageCover      string               `bson:"imageCover,omitempty"`
	Images          []string             `bson:"images,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt,omitempty"`
	StartDates      []time.Time          `bson:"startDates,omitempty"`
	SecretTour      bool                 `bson:"secretTour"`
	StartLocation   *GeoPoint            `bson:"startLocation,omitempty"`
	Locations       []GeoPoint           `bson:"locations,omitempty"`
	Guides          []primitive.ObjectID `bson:"guides,omitempty"`
	Version         int                  `bson:"__v"`
}

// TourSpec carries the client-settable fields of a tour.
type TourSpec struct {
	Name          string      `json:"name"`
	Duration      int         `json:"duration"`
	MaxGroupSize  int         `json:"maxGroupSize"`
	Difficulty    Difficulty  `json:"difficulty"`
	Price         float64     `json:"price"`
	PriceDiscount *float64    `json:"priceDiscount,omitempty"`
	Summary       string      `json:"summary"`
	Description   string      `json:"description,omitempty"`
	ImageCover    string      `json:"imageCover"`
	Images        []string    `json:"images,omitempty"`
	StartDates    []time.Time `json:"startDates,omitempty"`
	SecretTour    bool        `json:"secretTour,omitempty"`
	StartLocation *GeoPoint   `json:"startLocation,omitempty"`
	Locations     []GeoPoint  `json:"locations,omitempty"`
	Guides        []string    `json:"guides,omitempty"`
}

// TourPatch is a partial update. Nil fields are left unchanged.
type TourPatch struct {
	Name          *string     `json:"name,omitempty"`
	Duration      *int        `json:"duration,omitempty"`
	MaxGroupSize  *int        `json:"maxGroupSize,omitempty"`
	Difficulty    *Difficulty `json:"difficulty,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	PriceDiscount *float64    `json:"priceDiscount,omitempty"`
	Summary       *string     `json:"summary,omitempty"`
	Description   *string     `json:"description,omitempty"`
	ImageCover    *string     `json:"imageCover,omitempty"`
	Images        []string    `json:"images,omitempty"`
	StartDates    []time.Time `json:"startDates,omitempty"`
	SecretTour    *bool       `json:"secretTour,omitempty"`
	StartLocation *GeoPoint   `json:"startLocation,omitempty"`
	Locations     []GeoPoint  `json:"locations,omitempty"`
	Guides        []string    `json:"guides,omitempty"`
}

// TourSummary is the populated form of a tour reference.
type TourSummary struct {
	Id   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}

// NewTour builds a tour from client input with default ratings.
func NewTour(spec TourSpec, now time.Time) (*Tour, error) {
	guides, err := parseObjectIDs("guides", spec.Guides)
	if err != nil {
		return nil, err
	}

	t := &Tour{
		Id:              primitive.NewObjectID(),
		Name:            strings.TrimSpace(spec.Name),
		Duration:        spec.Duration,
		MaxGroupSize:    spec.MaxGroupSize,
		Difficulty:      spec.Difficulty,
		RatingsAverage:  DefaultRatingsAverage,
		RatingsQuantity: 0,
		Price:           spec.Price,
		PriceDiscount:   spec.PriceDiscount,
		Summary:         strings.TrimSpace(spec.Summary),
		Description:     strings.TrimSpace(spec.Description),
		ImageCover:      spec.ImageCover,
		Images:          spec.Images,
		CreatedAt:       now,
		StartDates:      spec.StartDates,
		SecretTour:      spec.SecretTour,
		StartLocation:   spec.StartLocation,
		Locations:       spec.Locations,
		Guides:          guides,
	}
	t.normalizePoints()
	t.Slug = Slugify(t.Name)

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ApplyPatch merges a partial update and re-validates the whole tour.
func (t *Tour) ApplyPatch(p TourPatch) error {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
		t.Slug = Slugify(t.Name)
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.MaxGroupSize != nil {
		t.MaxGroupSize = *p.MaxGroupSize
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.PriceDiscount != nil {
		t.PriceDiscount = p.PriceDiscount
	}
	if p.Summary != nil {
		t.Summary = strings.TrimSpace(*p.Summary)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.ImageCover != nil {
		t.ImageCover = *p.ImageCover
	}
	if p.Images != nil {
		t.Images = p.Images
	}
	if p.StartDates != nil {
		t.StartDates = p.StartDates
	}
	if p.SecretTour != nil {
		t.SecretTour = *p.SecretTour
	}
	if p.StartLocation != nil {
		t.StartLocation = p.StartLocation
	}
	if p.Locations != nil {
		t.Locations = p.Locations
	}
	if p.Guides != nil {
		guides, err := parseObjectIDs("guides", p.Guides)
		if err != nil {
			return err
		}
		t.Guides = guides
	}
	t.normalizePoints()
	return t.Validate()
}

func (t *Tour) Validate() error {
	var fields []apperrors.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperrors.FieldError{Field: field, Msg: msg})
	}

	switch n := utf8.RuneCountInString(t.Name); {
	case n == 0:
		add("name", "Tour must have a name")
	case n < TourNameMinLength:
		add("name", "Tour name must be 10 or more characters")
	case n > TourNameMaxLength:
		add("name", "Tour name must be less than 40 characters")
	}
	if t.Duration <= 0 {
		add("duration", "Tour must have a duration")
	}
	if t.MaxGroupSize <= 0 {
		add("maxGroupSize", "Tour must have a group size")
	}
	if !t.Difficulty.Valid() {
		add("difficulty", "Difficulty is either: easy, medium, difficult")
	}
	if t.Price <= 0 {
		add("price", "A tour must have a price")
	}
	if t.PriceDiscount != nil && *t.PriceDiscount >= t.Price {
		add("priceDiscount", "Discount price should be below regular price")
	}
	if t.Summary == "" {
		add("summary", "A tour must have a summary")
	}
	if t.ImageCover == "" {
		add("imageCover", "A tour must have a cover image")
	}
	if t.StartLocation != nil && !validPoint(*t.StartLocation) {
		add("startLocation", "Start location must be a [lng, lat] point")
	}
	for _, loc := range t.Locations {
		if !validPoint(loc) {
			add("locations", "Locations must be [lng, lat] points")
			break
		}
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError("Invalid tour data", fields...)
	}
	return nil
}

// CustomerPrice is the price shown to customers, rounded to cents.
func (t *Tour) CustomerPrice() float64 {
	return math.Round(t.Price*customerPriceFactor*100) / 100
}

func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

func (t *Tour) normalizePoints() {
	if t.StartLocation != nil && t.StartLocation.Type == "" {
		t.StartLocation.Type = "Point"
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = "Point"
		}
	}
}

func validPoint(p GeoPoint) bool {
	if p.Type != "Point" || len(p.Coordinates) != 2 {
		return false
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// Slugify lowercases and hyphenates a tour name.
func Slugify(name string) string {
	return slug.Make(name)
}

func parseObjectIDs(field string, ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, apperrors.NewFieldError(field, "Invalid "+field+" id: "+id)
		}
		out = append(out, oid)
	}
	return out, nil
}

// ParseObjectID converts a path parameter into an ObjectID.
func ParseObjectID(field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewFieldError(field, "Invalid "+field+" for "+id)
	}
	return oid, nil
}
