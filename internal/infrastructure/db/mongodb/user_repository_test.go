package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"tour-service/internal/domain/entities"
)

func TestCredentialsUpdate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(10 * time.Minute)

	t.Run("storing a reset token", func(t *testing.T) {
		u := userWithPassword()
		u.PasswordResetToken = "hashed"
		u.PasswordResetExpires = &expires

		update := credentialsUpdate(u)
		set := update["$set"].(bson.M)
		assert.Equal(t, "hashed", set["passwordResetToken"])
		assert.Equal(t, expires, set["passwordResetExpires"])
		assert.NotContains(t, update, "$unset")
	})

	t.Run("clearing the reset token", func(t *testing.T) {
		u := userWithPassword()
		u.PasswordChangedAt = &now

		update := credentialsUpdate(u)
		set := update["$set"].(bson.M)
		assert.Equal(t, "$2a$hash", set["password"])
		assert.Equal(t, now, set["passwordChangedAt"])
		assert.NotContains(t, set, "passwordResetToken")
		assert.Equal(t, bson.M{"passwordResetToken": "", "passwordResetExpires": ""}, update["$unset"])
	})
}

func TestUserRepository_SaveCredentials(t *testing.T) {
	mt := newMockDB(t)
	ctx := context.Background()

	mt.Run("reset clears the token", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(1))
		repo := NewUserRepository(mt.DB)
		u := userWithPassword()

		require.NoError(mt, repo.SaveCredentials(ctx, u))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, u.Id, cmd.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, "$2a$hash", cmd.Lookup("updates", "0", "u", "$set", "password").StringValue())
		_, err := cmd.LookupErr("updates", "0", "u", "$unset", "passwordResetToken")
		assert.NoError(mt, err)
	})

	mt.Run("forgot password sends no empty unset", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(1))
		repo := NewUserRepository(mt.DB)
		u := userWithPassword()
		expires := time.Now().Add(10 * time.Minute)
		u.PasswordResetToken = "hashed"
		u.PasswordResetExpires = &expires

		require.NoError(mt, repo.SaveCredentials(ctx, u))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "hashed", cmd.Lookup("updates", "0", "u", "$set", "passwordResetToken").StringValue())
		_, err := cmd.LookupErr("updates", "0", "u", "$unset")
		assert.Error(mt, err)
	})
}

func userWithPassword() *entities.User {
	return &entities.User{Id: primitive.NewObjectID(), Name: "Alex", Email: "alex@example.com", Password: "$2a$hash"}
}
