package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tazhibayda/linkbio/internal/security"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "uid1", "a@b.com", "admin", time.Minute)
	require.NoError(t, err)

	c, err := security.ParseAccess("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "uid1", c.UID)
	assert.Equal(t, "a@b.com", c.Email)
	assert.Equal(t, "admin", c.Role)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "uid1", "a@b.com", "user", time.Minute)
	require.NoError(t, err)

	_, err = security.ParseAccess("other", tok)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "uid1", "a@b.com", "user", -time.Minute)
	require.NoError(t, err)

	_, err = security.ParseAccess("s3cret", tok)
	assert.Error(t, err)
}

func TestLinkPasswordHash(t *testing.T) {
	h, err := security.HashLinkPassword("open sesame")
	require.NoError(t, err)
	assert.True(t, security.CheckPassword(h, "open sesame"))
	assert.False(t, security.CheckPassword(h, "wrong"))
}
