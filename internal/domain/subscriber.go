package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscriber is an email captured on a user's public page.
type Subscriber struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"owner_id"      json:"owner_id"`
	Email     string             `bson:"email"         json:"email"`
	CreatedAt time.Time          `bson:"created_at"    json:"created_at"`
}
