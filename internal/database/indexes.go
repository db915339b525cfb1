package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ProductTextIndex = "product_text"

// EnsureIndexes creates every index the API relies on. Failures are logged and
// the first one is returned; later indexes are still attempted.
func EnsureIndexes(db *mongo.Database) error {
	var first error
	for _, ensure := range []func(*mongo.Database) error{
		EnsureProductIndexes,
		EnsureUserIndexes,
		EnsureAdminIndexes,
		EnsureOrderIndexes,
	} {
		if err := ensure(db); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	textIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "brand", Value: "text"},
			{Key: "model", Value: "text"},
			{Key: "categories", Value: "text"},
			{Key: "tags", Value: "text"},
		},
		Options: options.Index().SetName(ProductTextIndex),
	}
	filterIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "type", Value: 1}, {Key: "brand", Value: 1}, {Key: "price", Value: 1}},
		Options: options.Index().SetName("type_brand_price"),
	}

	log.Println("EnsureProductIndexes: creating product_text and type_brand_price indexes")
	if _, err := indexes.CreateMany(ctx, []mongo.IndexModel{textIndex, filterIndex}); err != nil {
		log.Println("EnsureProductIndexes: index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: indexes created")
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	return ensureUniqueEmail(db, "users", "EnsureUserIndexes")
}

func EnsureAdminIndexes(db *mongo.Database) error {
	return ensureUniqueEmail(db, "admins", "EnsureAdminIndexes")
}

func ensureUniqueEmail(db *mongo.Database, collection, caller string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Printf("%s: creating email_unique index", caller)
	if _, err := db.Collection(collection).Indexes().CreateOne(ctx, emailIndex); err != nil {
		log.Printf("%s: email index error: %v", caller, err)
		return err
	}
	log.Printf("%s: email_unique index created", caller)
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userId_createdAt"),
	}

	log.Println("EnsureOrderIndexes: creating userId_createdAt index")
	if _, err := indexes.CreateOne(ctx, userIDIndex); err != nil {
		log.Println("EnsureOrderIndexes: userId index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: userId_createdAt index created")
	return nil
}
