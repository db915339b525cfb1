package handlers

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cyclestore/internal/models"
)

func loadUser(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.User, error) {
	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrUserNotFound
	}
	return user, err
}

// saveUserFields writes back the given top-level fields of a user loaded by
// loadUser. The write only lands if nobody else saved the user in between;
// otherwise models.ErrStaleWrite is returned and nothing changes.
func saveUserFields(ctx context.Context, db *mongo.Database, user *models.User, fields bson.M) error {
	now := time.Now()
	fields["updatedAt"] = now

	res, err := db.Collection("users").UpdateOne(ctx, versionFilter(user.ID, user.Version), bson.M{
		"$set": fields,
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrStaleWrite
	}

	user.Version++
	user.UpdatedAt = now
	return nil
}

// versionFilter also matches documents written before the version field
// existed when the loaded version is zero.
func versionFilter(id primitive.ObjectID, version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": id, "version": bson.M{"$in": bson.A{0, nil}}}
	}
	return bson.M{"_id": id, "version": version}
}
