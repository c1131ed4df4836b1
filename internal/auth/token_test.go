package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assistance-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 30)
	user := &domain.User{ID: "user-1", Email: "ops@proveedor.test", Role: domain.RoleProviderOperator}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.RoleProviderOperator, claims.Role)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 30)
	verifier := NewTokenManager("secret-b", 30)

	token, _, err := issuer.GenerateToken(&domain.User{ID: "user-1", Role: domain.RoleClientAdmin})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 30)
	_, err := tm.ParseToken("not-a-token")
	assert.Error(t, err)
}
