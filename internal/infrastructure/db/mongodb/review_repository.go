package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tour-service/internal/db"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/repositories"
)

const duplicateReviewMsg = "You have already reviewed this tour!"

type ReviewRepository struct {
	reviews *mongo.Collection
	users   *mongo.Collection
	tours   *mongo.Collection
}

func NewReviewRepository(database *mongo.Database) repositories.ReviewRepository {
	return &ReviewRepository{
		reviews: database.Collection(db.ReviewsCollection),
		users:   database.Collection(db.UsersCollection),
		tours:   database.Collection(db.ToursCollection),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *entities.Review) (*entities.Review, error) {
	if _, err := r.reviews.InsertOne(ctx, review); err != nil {
		return nil, mapWriteError(err, duplicateReviewMsg)
	}
	return review, nil
}

func (r *ReviewRepository) FindById(ctx context.Context, id primitive.ObjectID) (*entities.Review, error) {
	var review entities.Review
	err := r.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FindAll returns every review with its author and tour name.
func (r *ReviewRepository) FindAll(ctx context.Context) ([]*entities.ReviewWithRefs, error) {
	reviews, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	out, err := r.populateUsers(ctx, reviews)
	if err != nil {
		return nil, err
	}
	if err := r.populateTours(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByTour returns the reviews of one tour with their authors.
func (r *ReviewRepository) FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]*entities.ReviewWithRefs, error) {
	reviews, err := r.find(ctx, bson.M{"tour": tourID})
	if err != nil {
		return nil, err
	}
	return r.populateUsers(ctx, reviews)
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*entities.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	reviews := []*entities.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// populateUsers attaches the author name and photo of each review.
func (r *ReviewRepository) populateUsers(ctx context.Context, reviews []*entities.Review) ([]*entities.ReviewWithRefs, error) {
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.User)
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "photo": 1})
	var authors []entities.UserSummary
	if err := r.findSummaries(ctx, r.users, ids, opts, &authors); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*entities.UserSummary, len(authors))
	for i := range authors {
		byID[authors[i].Id] = &authors[i]
	}

	out := make([]*entities.ReviewWithRefs, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, &entities.ReviewWithRefs{Review: rv, Author: byID[rv.User]})
	}
	return out, nil
}

// populateTours attaches the tour name of each review.
func (r *ReviewRepository) populateTours(ctx context.Context, reviews []*entities.ReviewWithRefs) error {
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.Review.Tour)
	}

	opts := options.Find().SetProjection(bson.M{"name": 1})
	var tours []entities.TourSummary
	if err := r.findSummaries(ctx, r.tours, ids, opts, &tours); err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*entities.TourSummary, len(tours))
	for i := range tours {
		byID[tours[i].Id] = &tours[i]
	}

	for _, rv := range reviews {
		rv.Tour = byID[rv.Review.Tour]
	}
	return nil
}

func (r *ReviewRepository) findSummaries(ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID, opts *options.FindOptions, dst interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": uniqueIDs(ids)}}, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, dst)
}

func (r *ReviewRepository) Update(ctx context.Context, review *entities.Review) (*entities.Review, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"description": review.Description,
		"rating":      review.Rating,
	}}

	var updated entities.Review
	err := r.reviews.FindOneAndUpdate(ctx, bson.M{"_id": review.Id}, update, opts).Decode(&updated)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *ReviewRepository) DeleteByTour(ctx context.Context, tourID primitive.ObjectID) (int64, error) {
	res, err := r.reviews.DeleteMany(ctx, bson.M{"tour": tourID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ReviewRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"user": userID}
	raw, err := r.reviews.Distinct(ctx, "tour", filter)
	if err != nil {
		return nil, err
	}
	if _, err := r.reviews.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}

	tours := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			tours = append(tours, id)
		}
	}
	return tours, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
