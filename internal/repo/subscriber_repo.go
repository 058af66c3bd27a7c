package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/linkbio/internal/domain"
)

func (s *Store) AddSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	sub.CreatedAt = time.Now().UTC()
	res, err := s.colSubs.InsertOne(ctx, sub)
	if IsDup(err) {
		return ErrDupSubscriber
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sub.ID = oid
	}
	return nil
}

func (s *Store) ListSubscribers(ctx context.Context, owner primitive.ObjectID, p ListParams) ([]domain.Subscriber, error) {
	p.clamp()
	filter := bson.M{}
	if !owner.IsZero() {
		filter["owner_id"] = owner
	}
	cur, err := s.colSubs.Find(ctx, filter,
		options.Find().SetLimit(int64(p.Limit)).SetSkip(int64(p.Skip)).
			SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Subscriber
	for cur.Next(ctx) {
		var sub domain.Subscriber
		if err := cur.Decode(&sub); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, cur.Err()
}
