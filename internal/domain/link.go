package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Link is one outbound URL on a user's public page.
//
// IsActive is the operator-controlled visibility flag. It is a
// denormalized materialization of the schedule window: the cron sweep
// flips it when ScheduledAt or ExpiresAt passes, so cheap list queries
// can filter on the flag alone. Security-sensitive paths (password
// unlock) must not trust it and re-derive visibility from the schedule
// fields instead.
type Link struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id"       json:"user_id"`
	Title        string             `bson:"title"         json:"title"`
	URL          string             `bson:"url"           json:"url"`
	Position     int                `bson:"position"      json:"position"`
	IsActive     bool               `bson:"is_active"     json:"is_active"`
	ScheduledAt  *time.Time         `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`
	ExpiresAt    *time.Time         `bson:"expires_at,omitempty"   json:"expires_at,omitempty"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Clicks       int64              `bson:"clicks"        json:"clicks"`
	CreatedAt    time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"    json:"updated_at"`
}

func (l *Link) Protected() bool { return l.PasswordHash != "" }
