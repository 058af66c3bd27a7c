package domain

import "time"

// FeatureFlag is an admin-managed kill switch keyed by name.
type FeatureFlag struct {
	Name      string    `bson:"_id"        json:"name"`
	Enabled   bool      `bson:"enabled"    json:"enabled"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
