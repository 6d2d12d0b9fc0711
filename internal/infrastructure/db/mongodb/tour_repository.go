package mongodb

import (
	"context"
	"net/url"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tour-service/internal/apperrors"
	"tour-service/internal/db"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/repositories"
)

const duplicateTourMsg = "A tour with this name already exists!"

type TourRepository struct {
	tours *mongo.Collection
	users *mongo.Collection
}

func NewTourRepository(database *mongo.Database) repositories.TourRepository {
	return &TourRepository{
		tours: database.Collection(db.ToursCollection),
		users: database.Collection(db.UsersCollection),
	}
}

func (r *TourRepository) Create(ctx context.Context, tour *entities.Tour) (*entities.Tour, error) {
	if _, err := r.tours.InsertOne(ctx, tour); err != nil {
		return nil, mapWriteError(err, duplicateTourMsg)
	}
	return tour, nil
}

// FindById does not apply the secret filter.
func (r *TourRepository) FindById(ctx context.Context, id primitive.ObjectID) (*entities.Tour, error) {
	var tour entities.Tour
	err := r.tours.FindOne(ctx, bson.M{"_id": id}).Decode(&tour)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *TourRepository) List(ctx context.Context, params url.Values) ([]*entities.Tour, error) {
	q, err := BuildTourQuery(params)
	if err != nil {
		return nil, err
	}

	// The first page is never out of range, even when nothing matches.
	if q.PageRequested && q.Skip > 0 {
		count, err := r.tours.CountDocuments(ctx, q.Filter)
		if err != nil {
			return nil, err
		}
		if q.Skip >= count {
			return nil, apperrors.NewNotFoundError("This page does not exist!")
		}
	}

	return r.find(ctx, q)
}

func (r *TourRepository) find(ctx context.Context, q *TourQuery) ([]*entities.Tour, error) {
	opts := options.Find().
		SetSort(q.Sort).
		SetProjection(q.Projection).
		SetSkip(q.Skip).
		SetLimit(q.Limit)

	cursor, err := r.tours.Find(ctx, nonSecret(q.Filter), opts)
	if err != nil {
		return nil, err
	}
	tours := []*entities.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

// Update writes the client-settable fields and bumps the version. Rating
// fields are not part of the update.
func (r *TourRepository) Update(ctx context.Context, tour *entities.Tour) (*entities.Tour, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$set": tourUpdateFields(tour),
		"$inc": bson.M{"__v": 1},
	}

	var updated entities.Tour
	err := r.tours.FindOneAndUpdate(ctx, bson.M{"_id": tour.Id}, update, opts).Decode(&updated)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapWriteError(err, duplicateTourMsg)
	}
	return &updated, nil
}

func tourUpdateFields(t *entities.Tour) bson.M {
	set := bson.M{
		"name":         t.Name,
		"slug":         t.Slug,
		"duration":     t.Duration,
		"maxGroupSize": t.MaxGroupSize,
		"difficulty":   t.Difficulty,
		"price":        t.Price,
		"summary":      t.Summary,
		"description":  t.Description,
		"imageCover":   t.ImageCover,
		"images":       t.Images,
		"startDates":   t.StartDates,
		"secretTour":   t.SecretTour,
		"locations":    t.Locations,
		"guides":       t.Guides,
	}
	if t.PriceDiscount != nil {
		set["priceDiscount"] = *t.PriceDiscount
	}
	if t.StartLocation != nil {
		set["startLocation"] = t.StartLocation
	}
	return set
}

func (r *TourRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.tours.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *TourRepository) FindGuides(ctx context.Context, ids []primitive.ObjectID) ([]entities.UserSummary, error) {
	guides := []entities.UserSummary{}
	if len(ids) == 0 {
		return guides, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "role": 1, "photo": 1})
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &guides); err != nil {
		return nil, err
	}
	return guides, nil
}

func (r *TourRepository) Top5(ctx context.Context) ([]*entities.Tour, error) {
	return r.find(ctx, top5Query())
}

func (r *TourRepository) Stats(ctx context.Context) ([]entities.DifficultyStats, error) {
	cursor, err := r.tours.Aggregate(ctx, statsPipeline())
	if err != nil {
		return nil, err
	}
	stats := []entities.DifficultyStats{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]entities.MonthPlan, error) {
	if err := entities.ValidatePlanYear(year); err != nil {
		return nil, err
	}
	cursor, err := r.tours.Aggregate(ctx, monthlyPlanPipeline(year))
	if err != nil {
		return nil, err
	}
	plans := []entities.MonthPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	labelMonths(plans)
	return plans, nil
}

func (r *TourRepository) Within(ctx context.Context, distance, lat, lng float64, unit entities.DistanceUnit) ([]*entities.Tour, error) {
	cursor, err := r.tours.Find(ctx, withinFilter(distance, lat, lng, unit))
	if err != nil {
		return nil, err
	}
	tours := []*entities.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *TourRepository) Distances(ctx context.Context, lat, lng float64, unit entities.DistanceUnit) ([]entities.TourDistance, error) {
	cursor, err := r.tours.Aggregate(ctx, distancesPipeline(lat, lng, unit))
	if err != nil {
		return nil, err
	}
	distances := []entities.TourDistance{}
	if err := cursor.All(ctx, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}
