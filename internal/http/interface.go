package http

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/linkbio/internal/domain"
	"github.com/tazhibayda/linkbio/internal/repo"
)

// Store is the slice of *repo.Store the handlers use. Kept as an
// interface so handler tests run against an in-memory fake instead of
// a mongo container.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, displayName, bio string) error
	SetSocials(ctx context.Context, id primitive.ObjectID, socials []domain.SocialIcon) error
	ListUsers(ctx context.Context, p repo.ListParams) ([]domain.User, error)
	SetUserBanned(ctx context.Context, id primitive.ObjectID, banned bool) error
	SetUserRole(ctx context.Context, id primitive.ObjectID, role string) error

	SaveRefresh(ctx context.Context, userID primitive.ObjectID, plain string, ttl time.Duration) error
	FindValidRefresh(ctx context.Context, plain string) (*repo.RefreshToken, error)
	RevokeRefresh(ctx context.Context, plain string) error

	CreateLink(ctx context.Context, l *domain.Link) error
	FindLinkByID(ctx context.Context, id primitive.ObjectID) (*domain.Link, error)
	ListLinksByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Link, error)
	ListActiveLinks(ctx context.Context, owner primitive.ObjectID) ([]domain.Link, error)
	UpdateLink(ctx context.Context, id, owner primitive.ObjectID, p repo.LinkPatch) error
	DeleteLink(ctx context.Context, id, owner primitive.ObjectID) error
	ReorderLinks(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) error
	IncLinkClicks(ctx context.Context, id primitive.ObjectID) error
	ActivateDueLinks(ctx context.Context, now time.Time) (int64, error)
	DeactivateExpiredLinks(ctx context.Context, now time.Time) (int64, error)
	CountDueLinks(ctx context.Context, now time.Time) (activate, deactivate int64, err error)

	AddSubscriber(ctx context.Context, sub *domain.Subscriber) error
	ListSubscribers(ctx context.Context, owner primitive.ObjectID, p repo.ListParams) ([]domain.Subscriber, error)

	ListFlags(ctx context.Context) ([]domain.FeatureFlag, error)
	SetFlag(ctx context.Context, name string, enabled bool) error
}

// Limiter is what the public endpoints need from redis.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
	IncrClick(ctx context.Context, linkID string, day time.Time) error
}

// noopLimiter stands in when redis is not configured.
type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string, int, time.Duration) bool { return true }
func (noopLimiter) IncrClick(context.Context, string, time.Time) error { return nil }
