package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/linkbio/internal/domain"
	api "github.com/tazhibayda/linkbio/internal/http"
	"github.com/tazhibayda/linkbio/internal/repo"
)

const testJWTSecret = "test_secret"
const testCronSecret = "cron_s3cret"

type testEnv struct {
	T      *testing.T
	Store  *fakeStore
	Router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	h := api.NewHandler(store, testJWTSecret, 14, nil, 0, nil, "linkbio.events", testCronSecret)
	r := api.NewRouter(h)

	return &testEnv{T: t, Store: store, Router: r}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

// registerAndLogin provisions a user through the API and returns a
// bearer header map.
func (e *testEnv) registerAndLogin(email, username string) map[string]string {
	e.T.Helper()
	w := e.do("POST", "/api/auth/register",
		`{"email":"`+email+`","password":"StrongP@ss1","username":"`+username+`","name":"T"}`, nil)
	if w.Code != 201 {
		e.T.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w = e.do("POST", "/api/auth/login",
		`{"email":"`+email+`","password":"StrongP@ss1"}`, nil)
	if w.Code != 200 {
		e.T.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var lr struct{ Access, Refresh string }
	if err := json.Unmarshal(w.Body.Bytes(), &lr); err != nil || lr.Access == "" {
		e.T.Fatalf("login resp: %v %s", err, w.Body.String())
	}
	return map[string]string{"Authorization": "Bearer " + lr.Access}
}

// fakeStore is an in-memory Store with the same observable semantics
// as the mongo-backed one.
type fakeStore struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]*domain.User
	links   map[primitive.ObjectID]*domain.Link
	refresh map[string]*repo.RefreshToken // keyed by plain token
	subs    []domain.Subscriber
	flags   map[string]domain.FeatureFlag
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[primitive.ObjectID]*domain.User{},
		links:   map[primitive.ObjectID]*domain.Link{},
		refresh: map[string]*repo.RefreshToken{},
		flags:   map[string]domain.FeatureFlag{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) CreateUser(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return repo.ErrEmailExists
		}
		if ex.Username == u.Username {
			return repo.ErrUsernameExists
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByExternalID(_ context.Context, provider, externalID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Provider == provider && u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id primitive.ObjectID, name, bio string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.DisplayName, u.Bio = name, bio
	}
	return nil
}

func (f *fakeStore) SetSocials(_ context.Context, id primitive.ObjectID, socials []domain.SocialIcon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Socials = socials
	}
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context, _ repo.ListParams) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) SetUserBanned(_ context.Context, id primitive.ObjectID, banned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Banned = banned
	return nil
}

func (f *fakeStore) SetUserRole(_ context.Context, id primitive.ObjectID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeStore) SaveRefresh(_ context.Context, userID primitive.ObjectID, plain string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh[plain] = &repo.RefreshToken{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl).UTC(),
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (f *fakeStore) FindValidRefresh(_ context.Context, plain string) (*repo.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.refresh[plain]
	if !ok || rt.Revoked || !rt.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (f *fakeStore) RevokeRefresh(_ context.Context, plain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rt, ok := f.refresh[plain]; ok {
		rt.Revoked = true
	}
	return nil
}

func (f *fakeStore) CreateLink(_ context.Context, l *domain.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	if l.Position == 0 {
		for _, ex := range f.links {
			if ex.UserID == l.UserID {
				l.Position++
			}
		}
	}
	cp := *l
	f.links[l.ID] = &cp
	return nil
}

func (f *fakeStore) FindLinkByID(_ context.Context, id primitive.ObjectID) (*domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) listLinks(owner primitive.ObjectID, activeOnly bool) []domain.Link {
	var out []domain.Link
	for _, l := range f.links {
		if l.UserID != owner {
			continue
		}
		if activeOnly && !l.IsActive {
			continue
		}
		out = append(out, *l)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Position < out[i].Position {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (f *fakeStore) ListLinksByOwner(_ context.Context, owner primitive.ObjectID) ([]domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listLinks(owner, false), nil
}

func (f *fakeStore) ListActiveLinks(_ context.Context, owner primitive.ObjectID) ([]domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listLinks(owner, true), nil
}

func (f *fakeStore) UpdateLink(_ context.Context, id, owner primitive.ObjectID, p repo.LinkPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok || l.UserID != owner {
		return repo.ErrNotFound
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.URL != nil {
		l.URL = *p.URL
	}
	if p.IsActive != nil {
		l.IsActive = *p.IsActive
	}
	if p.ClearSchedule {
		l.ScheduledAt = nil
	} else if p.ScheduledAt != nil {
		t := p.ScheduledAt.UTC()
		l.ScheduledAt = &t
	}
	if p.ClearExpiry {
		l.ExpiresAt = nil
	} else if p.ExpiresAt != nil {
		t := p.ExpiresAt.UTC()
		l.ExpiresAt = &t
	}
	if p.PasswordHash != nil {
		l.PasswordHash = *p.PasswordHash
	}
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) DeleteLink(_ context.Context, id, owner primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok || (!owner.IsZero() && l.UserID != owner) {
		return repo.ErrNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeStore) ReorderLinks(_ context.Context, owner primitive.ObjectID, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pos, id := range ids {
		if l, ok := f.links[id]; ok && l.UserID == owner {
			l.Position = pos
		}
	}
	return nil
}

func (f *fakeStore) IncLinkClicks(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[id]; ok {
		l.Clicks++
	}
	return nil
}

func (f *fakeStore) ActivateDueLinks(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.links {
		if l.ScheduledAt != nil && !l.ScheduledAt.After(now) && !l.IsActive {
			l.IsActive = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeactivateExpiredLinks(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.links {
		if l.ExpiresAt != nil && !l.ExpiresAt.After(now) && l.IsActive {
			l.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountDueLinks(_ context.Context, now time.Time) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var a, d int64
	for _, l := range f.links {
		if l.ScheduledAt != nil && !l.ScheduledAt.After(now) && !l.IsActive {
			a++
		}
		if l.ExpiresAt != nil && !l.ExpiresAt.After(now) && l.IsActive {
			d++
		}
	}
	return a, d, nil
}

func (f *fakeStore) AddSubscriber(_ context.Context, sub *domain.Subscriber) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.subs {
		if ex.OwnerID == sub.OwnerID && ex.Email == sub.Email {
			return repo.ErrDupSubscriber
		}
	}
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = time.Now().UTC()
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeStore) ListSubscribers(_ context.Context, owner primitive.ObjectID, _ repo.ListParams) ([]domain.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Subscriber
	for _, s := range f.subs {
		if owner.IsZero() || s.OwnerID == owner {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListFlags(_ context.Context) ([]domain.FeatureFlag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FeatureFlag
	for _, fl := range f.flags {
		out = append(out, fl)
	}
	return out, nil
}

func (f *fakeStore) SetFlag(_ context.Context, name string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[name] = domain.FeatureFlag{Name: name, Enabled: enabled, UpdatedAt: time.Now().UTC()}
	return nil
}

// mutateLink reaches under the API to set up schedule states directly.
func (f *fakeStore) mutateLink(id primitive.ObjectID, fn func(*domain.Link)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[id]; ok {
		fn(l)
	}
}

// promote flips a user to the admin role directly.
func (f *fakeStore) promote(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.Role = domain.RoleAdmin
		}
	}
}
