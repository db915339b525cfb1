package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/auth"
	"cyclestore/internal/models"
)

// PrincipalStore resolves token principals against the users and admins
// collections.
type PrincipalStore struct {
	db *mongo.Database
}

func NewPrincipalStore(db *mongo.Database) *PrincipalStore {
	return &PrincipalStore{db: db}
}

func (s *PrincipalStore) ResolvePrincipal(ctx context.Context, p auth.Principal) error {
	collection, missing := "users", models.ErrUserNotFound
	if p.Kind == auth.KindAdmin {
		collection, missing = "admins", models.ErrAdminNotFound
	}

	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": p.ID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", p, err)
	}
	if count == 0 {
		return missing
	}
	return nil
}
