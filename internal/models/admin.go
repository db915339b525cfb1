package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin lives in its own collection; it never shares identity with User.
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
