package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrDupSubscriber  = errors.New("already subscribed")
)

type Store struct {
	Client     *mongo.Client
	DB         *mongo.Database
	colUsers   *mongo.Collection
	colLinks   *mongo.Collection
	colRefresh *mongo.Collection
	colSubs    *mongo.Collection
	colFlags   *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:     cli,
		DB:         db,
		colUsers:   db.Collection("users"),
		colLinks:   db.Collection("links"),
		colRefresh: db.Collection("refresh_tokens"),
		colSubs:    db.Collection("subscribers"),
		colFlags:   db.Collection("feature_flags"),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.colUsers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_username"),
		},
	})
	if err != nil {
		return err
	}

	// the sweep scans these two; partial indexes keep them small since
	// most links carry no schedule at all
	_, err = s.colLinks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetName("owner_position"),
		},
		{
			Keys: bson.D{{Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("sched_due").
				SetPartialFilterExpression(bson.M{"scheduled_at": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("exp_due").
				SetPartialFilterExpression(bson.M{"expires_at": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return err
	}

	// refresh tokens expire via mongo TTL
	_, err = s.colRefresh.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expire"),
		},
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_token"),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.colSubs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_owner_email"),
	})
	return err
}

func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce *mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return false
}
