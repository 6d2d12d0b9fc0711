package entities

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
)

// DistanceUnit is a unit accepted by the geospatial tour endpoints.
type DistanceUnit string

const (
	UnitMiles      DistanceUnit = "mi"
	UnitKilometers DistanceUnit = "km"

	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch DistanceUnit(s) {
	case UnitMiles, UnitKilometers:
		return DistanceUnit(s), nil
	}
	return "", apperrors.NewFieldError("unit", "Unit must be either mi or km")
}

// EarthRadius is the sphere radius in this unit, used to turn a distance
// into radians for $centerSphere.
func (u DistanceUnit) EarthRadius() float64 {
	if u == UnitMiles {
		return earthRadiusMiles
	}
	return earthRadiusKm
}

// RadiansFor converts a distance in this unit into a spherical radius.
func (u DistanceUnit) RadiansFor(distance float64) float64 {
	return distance / u.EarthRadius()
}

// MetersMultiplier converts $geoNear meters into this unit.
func (u DistanceUnit) MetersMultiplier() float64 {
	if u == UnitMiles {
		return 0.000621371
	}
	return 0.001
}

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, apperrors.NewFieldError("latlng", "Please provide latitude and longitude in the format lat,lng")
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, apperrors.NewFieldError("latlng", "Please provide latitude and longitude in the format lat,lng")
	}
	return lat, lng, nil
}

// ValidatePlanYear accepts the years a monthly plan can be built for.
func ValidatePlanYear(year int) error {
	if year < 1970 || year > 9999 {
		return apperrors.NewFieldError("year", "Year must be between 1970 and 9999")
	}
	return nil
}

// DifficultyStats is one row of the tour-stats aggregation.
type DifficultyStats struct {
	Difficulty Difficulty `bson:"_id" json:"difficulty"`
	NumTours   int        `bson:"numTours" json:"numTours"`
	NumRatings int        `bson:"numRatings" json:"numRatings"`
	AvgRating  float64    `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64    `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64    `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64    `bson:"maxPrice" json:"maxPrice"`
}

// MonthPlan is one row of the monthly-plan aggregation.
type MonthPlan struct {
	MonthNumber int      `bson:"_id" json:"-"`
	Month       string   `bson:"-" json:"month"`
	CountTours  int      `bson:"countTours" json:"countTours"`
	Tours       []string `bson:"tours" json:"tours"`
}

// TourDistance is one row of the distances aggregation.
type TourDistance struct {
	Id       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}
