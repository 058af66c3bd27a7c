package repo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/linkbio/internal/domain"
)

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	u.Username = normalizeUsername(u.Username)
	u.CreatedAt = time.Now().UTC()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	res, err := s.colUsers.InsertOne(ctx, u)
	if IsDup(err) {
		// the unique index that tripped decides which conflict to report
		if ex, _ := s.FindUserByUsername(ctx, u.Username); ex != nil {
			return ErrUsernameExists
		}
		return ErrEmailExists
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"username": normalizeUsername(username)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"provider": provider, "external_id": externalID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, displayName, bio string) error {
	_, err := s.colUsers.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"display_name": displayName,
		"bio":          bio,
	}})
	return err
}

func (s *Store) SetSocials(ctx context.Context, id primitive.ObjectID, socials []domain.SocialIcon) error {
	_, err := s.colUsers.UpdateByID(ctx, id, bson.M{"$set": bson.M{"socials": socials}})
	return err
}

type ListParams struct {
	Limit int
	Skip  int
}

func (p *ListParams) clamp() {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
}

func (s *Store) ListUsers(ctx context.Context, p ListParams) ([]domain.User, error) {
	p.clamp()
	cur, err := s.colUsers.Find(ctx, bson.M{},
		options.Find().SetLimit(int64(p.Limit)).SetSkip(int64(p.Skip)).
			SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.User
	for cur.Next(ctx) {
		var u domain.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, cur.Err()
}

func (s *Store) SetUserBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	res, err := s.colUsers.UpdateByID(ctx, id, bson.M{"$set": bson.M{"banned": banned}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetUserRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := s.colUsers.UpdateByID(ctx, id, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
