package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type SocialIcon struct {
	Platform string `bson:"platform" json:"platform"` // "github", "x", "instagram", ...
	URL      string `bson:"url"      json:"url"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email"         json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Username     string             `bson:"username"      json:"username"` // public page slug
	DisplayName  string             `bson:"display_name"  json:"display_name"`
	Bio          string             `bson:"bio"           json:"bio"`
	Socials      []SocialIcon       `bson:"socials,omitempty" json:"socials,omitempty"`
	Provider     string             `bson:"provider"      json:"provider"`    // "local" | "google"
	ExternalID   string             `bson:"external_id"   json:"external_id"` // Google sub
	Role         string             `bson:"role"          json:"role"`
	Banned       bool               `bson:"banned"        json:"banned"`
	CreatedAt    time.Time          `bson:"created_at"    json:"created_at"`
}
