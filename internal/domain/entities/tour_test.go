package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
)

func validSpec() TourSpec {
	return TourSpec{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   DifficultyEasy,
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
		StartLocation: &GeoPoint{
			Coordinates: []float64{-115.570154, 51.178456},
			Address:     "224 Banff Ave, Banff, AB, Canada",
		},
	}
}

func TestNewTour_DerivesSlugAndDefaults(t *testing.T) {
	tour, err := NewTour(validSpec(), testNow)
	require.NoError(t, err)

	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, DefaultRatingsAverage, tour.RatingsAverage)
	assert.Zero(t, tour.RatingsQuantity)
	assert.Equal(t, "Point", tour.StartLocation.Type)
	assert.Equal(t, testNow, tour.CreatedAt)
}

func TestNewTour_Validation(t *testing.T) {
	discount := 500.0
	tests := []struct {
		name  string
		mut   func(*TourSpec)
		field string
	}{
		{"short name", func(s *TourSpec) { s.Name = "Short" }, "name"},
		{"long name", func(s *TourSpec) { s.Name = "A tour name that is far too long to be accepted" }, "name"},
		{"bad difficulty", func(s *TourSpec) { s.Difficulty = "extreme" }, "difficulty"},
		{"discount above price", func(s *TourSpec) { s.PriceDiscount = &discount }, "priceDiscount"},
		{"missing cover", func(s *TourSpec) { s.ImageCover = "" }, "imageCover"},
		{"bad point", func(s *TourSpec) { s.StartLocation.Coordinates = []float64{200, 10} }, "startLocation"},
		{"bad guide id", func(s *TourSpec) { s.Guides = []string{"nope"} }, "guides"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mut(&spec)

			_, err := NewTour(spec, testNow)
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Fields[0].Field)
		})
	}
}

func TestTour_DerivedFields(t *testing.T) {
	tour := &Tour{Price: 397, Duration: 14}

	assert.Equal(t, 424.79, tour.CustomerPrice())
	assert.Equal(t, 2.0, tour.DurationWeeks())
}

func TestTour_ApplyPatch(t *testing.T) {
	tour, err := NewTour(validSpec(), testNow)
	require.NoError(t, err)

	name := "The Sea Explorer Tour"
	price := 120.0
	require.NoError(t, tour.ApplyPatch(TourPatch{Name: &name, Price: &price}))
	assert.Equal(t, "the-sea-explorer-tour", tour.Slug)
	assert.Equal(t, 120.0, tour.Price)

	discount := 150.0
	err = tour.ApplyPatch(TourPatch{PriceDiscount: &discount})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestTour_ApplyPatchGuides(t *testing.T) {
	tour, err := NewTour(validSpec(), testNow)
	require.NoError(t, err)

	guide := primitive.NewObjectID()
	require.NoError(t, tour.ApplyPatch(TourPatch{Guides: []string{guide.Hex()}}))
	assert.Equal(t, []primitive.ObjectID{guide}, tour.Guides)
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseObjectID("id", id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseObjectID("id", "123")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
