package queue

import "go.mongodb.org/mongo-driver/bson/primitive"

// Routing keys on the linkbio.events topic exchange.
const (
	KeyUserRegistered  = "user.registered"
	KeyLinkClicked     = "link.clicked"
	KeySubscriberAdded = "subscriber.added"
)

type UserRegistered struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Email    string             `json:"email"`
	Username string             `json:"username"`
}

type LinkClicked struct {
	LinkID  primitive.ObjectID `json:"link_id"`
	OwnerID primitive.ObjectID `json:"owner_id"`
	Referer string             `json:"referer,omitempty"`
}

type SubscriberAdded struct {
	OwnerID    primitive.ObjectID `json:"owner_id"`
	OwnerEmail string             `json:"owner_email"`
	Email      string             `json:"email"`
	Username   string             `json:"username"`
}
