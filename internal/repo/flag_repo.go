package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/linkbio/internal/domain"
)

func (s *Store) ListFlags(ctx context.Context) ([]domain.FeatureFlag, error) {
	cur, err := s.colFlags.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.FeatureFlag
	for cur.Next(ctx) {
		var f domain.FeatureFlag
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, cur.Err()
}

func (s *Store) SetFlag(ctx context.Context, name string, enabled bool) error {
	_, err := s.colFlags.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$set": bson.M{"enabled": enabled, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}
