package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tour-service/internal/db"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/repositories"
)

const duplicateUserMsg = "This user/email already exists!"

// publicUserProjection hides credentials from ordinary reads.
var publicUserProjection = bson.M{
	"password":             0,
	"passwordResetToken":   0,
	"passwordResetExpires": 0,
}

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(database *mongo.Database) repositories.UserRepository {
	return &UserRepository{
		collection: database.Collection(db.UsersCollection),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return nil, mapWriteError(err, duplicateUserMsg)
	}
	return user, nil
}

func (r *UserRepository) FindById(ctx context.Context, id primitive.ObjectID) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(publicUserProjection))
}

func (r *UserRepository) FindByIdWithPassword(ctx context.Context, id primitive.ObjectID) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"email": entities.NormalizeEmail(email)}, nil)
}

func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*entities.User, error) {
	filter := bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": now},
	}
	return r.findOne(ctx, filter, nil)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*entities.User, error) {
	if opts == nil {
		opts = options.FindOne()
	}
	var user entities.User
	err := r.collection.FindOne(ctx, filter, opts).Decode(&user)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindActive(ctx context.Context) ([]*entities.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "email": 1, "role": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"active": bson.M{"$ne": false}}, opts)
	if err != nil {
		return nil, err
	}
	users := []*entities.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*entities.User, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicUserProjection)
	update := bson.M{"$set": bson.M{"name": name, "email": email}}

	var user entities.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapWriteError(err, duplicateUserMsg)
	}
	return &user, nil
}

func (r *UserRepository) SaveCredentials(ctx context.Context, user *entities.User) error {
	_, err := r.collection.UpdateByID(ctx, user.Id, credentialsUpdate(user))
	return err
}

// credentialsUpdate sets the password fields and either stores or clears
// the reset token. $unset is left out when there is nothing to clear.
func credentialsUpdate(user *entities.User) bson.M {
	set := bson.M{"password": user.Password}
	unset := bson.M{}

	if user.PasswordChangedAt != nil {
		set["passwordChangedAt"] = *user.PasswordChangedAt
	}
	if user.PasswordResetToken != "" && user.PasswordResetExpires != nil {
		set["passwordResetToken"] = user.PasswordResetToken
		set["passwordResetExpires"] = *user.PasswordResetExpires
	} else {
		unset["passwordResetToken"] = ""
		unset["passwordResetExpires"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *UserRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"active": active}})
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
