package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.False(t, NeedsRehash(hash))

	assert.NoError(t, VerifyPassword(hash, "s3cret"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong"), ErrMismatch)

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestHashAndVerify_LongPassword(t *testing.T) {
	long := strings.Repeat("a", 80)
	samePrefix := strings.Repeat("a", 72) + "bbbbbbbb"

	hash, err := HashPassword(long)
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))

	assert.NoError(t, VerifyPassword(hash, long))
	assert.ErrorIs(t, VerifyPassword(hash, samePrefix), ErrMismatch)
	assert.ErrorIs(t, VerifyPassword(hash, strings.Repeat("a", 72)), ErrMismatch)
}

func TestVerifyLegacyDigest(t *testing.T) {
	sum := sha256.Sum256([]byte("pw"))
	legacy := hex.EncodeToString(sum[:])

	assert.True(t, NeedsRehash(legacy))
	assert.NoError(t, VerifyPassword(legacy, "pw"))
	assert.ErrorIs(t, VerifyPassword(legacy, "nope"), ErrMismatch)
}

func TestIdentity_RoundTrip(t *testing.T) {
	id := NewIdentity([]byte("secret"), time.Hour)

	token, err := id.Issue("user-1", " Prem ")
	require.NoError(t, err)

	name, err := id.Parse(token, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Prem", name)

	_, err = id.Parse(token, "user-2")
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = NewIdentity([]byte("other"), time.Hour).Parse(token, "user-1")
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = id.Parse("not-a-token", "user-1")
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = id.Issue("user-1", "  ")
	assert.Error(t, err)
}

func TestIdentity_Expires(t *testing.T) {
	id := NewIdentity([]byte("secret"), time.Hour)
	start := time.Now()
	id.now = func() time.Time { return start }

	token, err := id.Issue("user-1", "Prem")
	require.NoError(t, err)

	id.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = id.Parse(token, "user-1")
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}
