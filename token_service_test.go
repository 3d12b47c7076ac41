package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"), 24, "go-account", nil)
	user := &User{ID: uuid.New(), Role: RoleAdmin}

	raw, err := ts.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := ts.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "go-account", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenServiceRejectsWrongKey(t *testing.T) {
	minter := NewTokenService([]byte("key-one"), 24, "go-account", nil)
	verifier := NewTokenService([]byte("key-two"), 24, "go-account", nil)

	raw, err := minter.Generate(&User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = verifier.Validate(raw)
	assert.Error(t, err)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"), -1, "go-account", nil)

	raw, err := ts.Generate(&User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = ts.Validate(raw)
	assert.Error(t, err)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"), 24, "go-account", nil)

	_, err := ts.Validate("not-a-token")
	assert.Error(t, err)
}

func TestTokenServiceRequiresUser(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"), 24, "go-account", nil)

	_, err := ts.Generate(nil)
	assert.Error(t, err)
}
