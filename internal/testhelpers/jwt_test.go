package testhelpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Generate(Account{ID: 7, Email: "a@b.com", Role: "ADMIN"})
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestTokenIssuer_RejectsWrongSecretAndExpired(t *testing.T) {
	token, err := NewTokenIssuer("secret", time.Hour).Generate(Account{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).Validate(token)
	assert.Error(t, err)

	expired, err := NewTokenIssuer("secret", -time.Minute).Generate(Account{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)
	_, err = NewTokenIssuer("secret", time.Hour).Validate(expired)
	assert.Error(t, err)
}

func TestTokenIssuer_EmptySecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour).Generate(Account{})
	assert.Error(t, err)
}
