package http_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/linkbio/internal/domain"
	"github.com/tazhibayda/linkbio/internal/repo"
)

func TestPublicProfileListsOnlyActiveLinks(t *testing.T) {
	e := newTestEnv(t)
	hdr := e.registerAndLogin("a@b.com", "alice")
	e.createLink(hdr, `{"title":"Visible","url":"https://a.com"}`)
	e.createLink(hdr, `{"title":"Hidden","url":"https://b.com","is_active":false}`)
	e.createLink(hdr, `{"title":"Locked","url":"https://secret.com","password":"open sesame"}`)

	w := e.do("GET", "/api/public/u/alice", "", nil)
	require.Equal(t, 200, w.Code)
	var out struct {
		Username string `json:"username"`
		Links    []struct {
			Title     string `json:"title"`
			URL       string `json:"url"`
			Protected bool   `json:"protected"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "alice", out.Username)
	require.Len(t, out.Links, 2)
	assert.Equal(t, "Visible", out.Links[0].Title)
	assert.Equal(t, "https://a.com", out.Links[0].URL)
	// destination of a locked link never appears in the listing
	assert.Equal(t, "Locked", out.Links[1].Title)
	assert.True(t, out.Links[1].Protected)
	assert.Empty(t, out.Links[1].URL)

	w = e.do("GET", "/api/public/u/nobody", "", nil)
	assert.Equal(t, 404, w.Code)
}

func TestClickCountsAndReturnsURL(t *testing.T) {
	e := newTestEnv(t)
	hdr := e.registerAndLogin("a@b.com", "alice")
	l := e.createLink(hdr, `{"title":"X","url":"https://x.com"}`)

	w := e.do("POST", "/api/public/links/"+l.ID.Hex()+"/click", "", nil)
	require.Equal(t, 200, w.Code)
	var out struct{ URL string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "https://x.com", out.URL)

	got, err := e.Store.FindLinkByID(nil, l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Clicks)

	// inactive links do not resolve
	e.Store.mutateLink(l.ID, func(l *domain.Link) { l.IsActive = false })
	w = e.do("POST", "/api/public/links/"+l.ID.Hex()+"/click", "", nil)
	assert.Equal(t, 404, w.Code)
}

func TestUnlockHappyPath(t *testing.T) {
	e := newTestEnv(t)
	hdr := e.registerAndLogin("a@b.com", "alice")
	l := e.createLink(hdr, `{"title":"Locked","url":"https://secret.com","password":"open sesame"}`)

	w := e.do("POST", "/api/public/links/"+l.ID.Hex()+"/unlock", `{"password":"open sesame"}`, nil)
	require.Equal(t, 200, w.Code)
	var out struct{ URL string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "https://secret.com", out.URL)

	got, err := e.Store.FindLinkByID(nil, l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Clicks, "unlock counts as a click")
}

func TestUnlockDeniesLookIdentical(t *testing.T) {
	e := newTestEnv(t)
	hdr := e.registerAndLogin("a@b.com", "alice")
	l := e.createLink(hdr, `{"title":"Locked","url":"https://secret.com","password":"open sesame"}`)

	// wrong password
	w := e.do("POST", "/api/public/links/"+l.ID.Hex()+"/unlock", `{"password":"guess"}`, nil)
	assert.Equal(t, 404, w.Code)

	// expired link: the correct password still yields the same 404
	past := time.Now().Add(-time.Hour).UTC()
	e.Store.mutateLink(l.ID, func(l *domain.Link) { l.ExpiresAt = &past })
	w = e.do("POST", "/api/public/links/"+l.ID.Hex()+"/unlock", `{"password":"open sesame"}`, nil)
	assert.Equal(t, 404, w.Code)
	wrong := e.do("POST", "/api/public/links/"+l.ID.Hex()+"/unlock", `{"password":"guess"}`, nil)
	assert.Equal(t, w.Body.String(), wrong.Body.String(), "deny responses are indistinguishable")

	got, err := e.Store.FindLinkByID(nil, l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Clicks, "denied unlocks never count")
}

func TestUnlockReDerivesVisibilityFromLiveRow(t *testing.T) {
	e := newTestEnv(t)
	hdr := e.registerAndLogin("a@b.com", "alice")
	l := e.createLink(hdr, `{"title":"Locked","url":"https://secret.com","password":"open sesame"}`)

	// the sweep has not run yet: flag still true but the row is expired
	past := time.Now().Add(-time.Minute).UTC()
	e.Store.mutateLink(l.ID, func(l *domain.Link) { l.ExpiresAt = &past; l.IsActive = true })

	w := e.do("POST", "/api/public/links/"+l.ID.Hex()+"/unlock", `{"password":"open sesame"}`, nil)
	assert.Equal(t, 404, w.Code)
}

func TestUnlockNotFoundForBannedOwner(t *testing.T) {
	e := newTestEnv(t)
	hdr := e.registerAndLogin("a@b.com", "alice")
	l := e.createLink(hdr, `{"title":"Locked","url":"https://secret.com","password":"open sesame"}`)

	u, err := e.Store.FindUserByEmail(nil, "a@b.com")
	require.NoError(t, err)
	require.NoError(t, e.Store.SetUserBanned(nil, u.ID, true))

	w := e.do("POST", "/api/public/links/"+l.ID.Hex()+"/unlock", `{"password":"open sesame"}`, nil)
	assert.Equal(t, 404, w.Code)
}

func TestSubscribe(t *testing.T) {
	e := newTestEnv(t)
	e.registerAndLogin("a@b.com", "alice")

	w := e.do("POST", "/api/public/u/alice/subscribe", `{"email":"fan@example.com"}`, nil)
	assert.Equal(t, 201, w.Code)

	// repeat submission is acknowledged identically
	w = e.do("POST", "/api/public/u/alice/subscribe", `{"email":"fan@example.com"}`, nil)
	assert.Equal(t, 201, w.Code)

	w = e.do("POST", "/api/public/u/alice/subscribe", `{"email":"not-an-email"}`, nil)
	assert.Equal(t, 400, w.Code)

	w = e.do("POST", "/api/public/u/nobody/subscribe", `{"email":"fan@example.com"}`, nil)
	assert.Equal(t, 404, w.Code)

	owner, err := e.Store.FindUserByEmail(nil, "a@b.com")
	require.NoError(t, err)
	subs, err := e.Store.ListSubscribers(nil, owner.ID, repo.ListParams{})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "fan@example.com", subs[0].Email)
}
