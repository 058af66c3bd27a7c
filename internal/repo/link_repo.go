package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/linkbio/internal/domain"
)

func (s *Store) CreateLink(ctx context.Context, l *domain.Link) error {
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Position == 0 {
		n, err := s.colLinks.CountDocuments(ctx, bson.M{"user_id": l.UserID})
		if err != nil {
			return err
		}
		l.Position = int(n)
	}
	res, err := s.colLinks.InsertOne(ctx, l)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		l.ID = oid
	}
	return nil
}

func (s *Store) FindLinkByID(ctx context.Context, id primitive.ObjectID) (*domain.Link, error) {
	var l domain.Link
	err := s.colLinks.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &l, err
}

func (s *Store) ListLinksByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Link, error) {
	return s.listLinks(ctx, bson.M{"user_id": owner})
}

// ListActiveLinks is the public list path. It filters on the stored
// flag only; the sweep keeps the flag consistent with the schedule
// window, so a just-expired link may linger here until the next tick.
func (s *Store) ListActiveLinks(ctx context.Context, owner primitive.ObjectID) ([]domain.Link, error) {
	return s.listLinks(ctx, bson.M{"user_id": owner, "is_active": true})
}

func (s *Store) listLinks(ctx context.Context, filter bson.M) ([]domain.Link, error) {
	cur, err := s.colLinks.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Link
	for cur.Next(ctx) {
		var l domain.Link
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, cur.Err()
}

// LinkPatch carries a validated partial update. Clear* distinguishes
// "remove the bound" from "leave it alone".
type LinkPatch struct {
	Title         *string
	URL           *string
	IsActive      *bool
	ScheduledAt   *time.Time
	ClearSchedule bool
	ExpiresAt     *time.Time
	ClearExpiry   bool
	PasswordHash  *string // empty string clears the password
}

func (s *Store) UpdateLink(ctx context.Context, id, owner primitive.ObjectID, p LinkPatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.URL != nil {
		set["url"] = *p.URL
	}
	if p.IsActive != nil {
		set["is_active"] = *p.IsActive
	}
	if p.ClearSchedule {
		unset["scheduled_at"] = ""
	} else if p.ScheduledAt != nil {
		set["scheduled_at"] = p.ScheduledAt.UTC()
	}
	if p.ClearExpiry {
		unset["expires_at"] = ""
	} else if p.ExpiresAt != nil {
		set["expires_at"] = p.ExpiresAt.UTC()
	}
	if p.PasswordHash != nil {
		if *p.PasswordHash == "" {
			unset["password_hash"] = ""
		} else {
			set["password_hash"] = *p.PasswordHash
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.colLinks.UpdateOne(ctx, bson.M{"_id": id, "user_id": owner}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLink removes an owner's link. Admin moderation passes
// primitive.NilObjectID as owner to skip the ownership check.
func (s *Store) DeleteLink(ctx context.Context, id, owner primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	if !owner.IsZero() {
		filter["user_id"] = owner
	}
	res, err := s.colLinks.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ReorderLinks(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) error {
	models := make([]mongo.WriteModel, 0, len(ids))
	for pos, id := range ids {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "user_id": owner}).
			SetUpdate(bson.M{"$set": bson.M{"position": pos}}))
	}
	if len(models) == 0 {
		return nil
	}
	_, err := s.colLinks.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (s *Store) IncLinkClicks(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.colLinks.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"clicks": 1}})
	return err
}

// ActivateDueLinks flips is_active on for every link whose scheduled
// start has passed. The schedule predicate lives in the filter, so a
// racing owner edit can only be overwritten in the direction the
// schedule already dictates.
func (s *Store) ActivateDueLinks(ctx context.Context, now time.Time) (int64, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.links.activate_due")
	defer sp.Finish()

	res, err := s.colLinks.UpdateMany(ctx,
		bson.M{
			"scheduled_at": bson.M{"$exists": true, "$lte": now.UTC()},
			"is_active":    false,
		},
		bson.M{"$set": bson.M{"is_active": true}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeactivateExpiredLinks flips is_active off for every link past its
// expiry. Independent of ActivateDueLinks; a failure in one never
// blocks the other.
func (s *Store) DeactivateExpiredLinks(ctx context.Context, now time.Time) (int64, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.links.deactivate_expired")
	defer sp.Finish()

	res, err := s.colLinks.UpdateMany(ctx,
		bson.M{
			"expires_at": bson.M{"$exists": true, "$lte": now.UTC()},
			"is_active":  true,
		},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountDueLinks reports the sizes of both transition sets without
// mutating anything, for the read-only cron probe.
func (s *Store) CountDueLinks(ctx context.Context, now time.Time) (activate, deactivate int64, err error) {
	activate, err = s.colLinks.CountDocuments(ctx, bson.M{
		"scheduled_at": bson.M{"$exists": true, "$lte": now.UTC()},
		"is_active":    false,
	})
	if err != nil {
		return 0, 0, err
	}
	deactivate, err = s.colLinks.CountDocuments(ctx, bson.M{
		"expires_at": bson.M{"$exists": true, "$lte": now.UTC()},
		"is_active":  true,
	})
	return activate, deactivate, err
}
