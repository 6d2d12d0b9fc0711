package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tour-service/internal/domain/entities"
)

const (
	top5MinRating  = 4.8
	statsMinRating = 4.5
	monthsInYear   = 12
)

var top5Projection = bson.M{
	"name":           1,
	"price":          1,
	"difficulty":     1,
	"summary":        1,
	"ratingsAverage": 1,
}

func top5Query() *TourQuery {
	return &TourQuery{
		Filter:     nonSecret(bson.M{"ratingsAverage": bson.M{"$gte": top5MinRating}}),
		Sort:       bson.D{{Key: "ratingsAverage", Value: -1}, {Key: "price", Value: -1}, {Key: "_id", Value: 1}},
		Projection: top5Projection,
		Limit:      5,
	}
}

func statsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: nonSecret(bson.M{"ratingsAverage": bson.M{"$gt": statsMinRating}})}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$difficulty"},
			{Key: "numTours", Value: bson.M{"$sum": 1}},
			{Key: "numRatings", Value: bson.M{"$sum": "$ratingsQuantity"}},
			{Key: "avgRating", Value: bson.M{"$avg": "$ratingsAverage"}},
			{Key: "avgPrice", Value: bson.M{"$avg": "$price"}},
			{Key: "minPrice", Value: bson.M{"$min": "$price"}},
			{Key: "maxPrice", Value: bson.M{"$max": "$price"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	}
}

func monthlyPlanPipeline(year int) mongo.Pipeline {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	return mongo.Pipeline{
		{{Key: "$match", Value: nonSecret(bson.M{})}},
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": start, "$lt": end}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$month": "$startDates"}},
			{Key: "countTours", Value: bson.M{"$sum": 1}},
			{Key: "tours", Value: bson.M{"$push": "$name"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: monthsInYear}},
	}
}

// labelMonths fills the three-letter month name of every row.
func labelMonths(plans []entities.MonthPlan) {
	for i := range plans {
		n := plans[i].MonthNumber
		if n >= 1 && n <= monthsInYear {
			plans[i].Month = time.Month(n).String()[:3]
		}
	}
}

func withinFilter(distance, lat, lng float64, unit entities.DistanceUnit) bson.M {
	return nonSecret(bson.M{
		"startLocation": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, unit.RadiansFor(distance)},
			},
		},
	})
}

func distancesPipeline(lat, lng float64, unit entities.DistanceUnit) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.M{"type": "Point", "coordinates": bson.A{lng, lat}}},
			{Key: "distanceField", Value: "distance"},
			{Key: "distanceMultiplier", Value: unit.MetersMultiplier()},
			{Key: "spherical", Value: true},
			{Key: "query", Value: nonSecret(bson.M{})},
		}}},
		{{Key: "$project", Value: bson.M{"name": 1, "distance": 1}}},
	}
}
