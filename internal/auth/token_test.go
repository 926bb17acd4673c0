package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1", []string{RoleAdmin, RoleReviewer})
	require.NoError(t, err)

	actor, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", actor.ID)
	assert.Equal(t, []string{RoleAdmin, RoleReviewer}, actor.Roles)
	assert.True(t, actor.IsAdmin())
	assert.True(t, actor.CanReview())
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1", nil)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok := jwt.New(jwt.SigningMethodHS256)
	claims := tok.Claims.(jwt.MapClaims)
	claims["user_id"] = "u1"
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	signed, err := tok.SignedString(testSecret)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, signed)
	assert.Error(t, err)
}

func TestParseTokenRequiresUserID(t *testing.T) {
	tok := jwt.New(jwt.SigningMethodHS256)
	claims := tok.Claims.(jwt.MapClaims)
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	signed, err := tok.SignedString(testSecret)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, signed)
	assert.Error(t, err)
}

func TestParseTokenRejectsUnsignedAlg(t *testing.T) {
	tok := jwt.New(jwt.SigningMethodNone)
	claims := tok.Claims.(jwt.MapClaims)
	claims["user_id"] = "u1"
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, signed)
	assert.Error(t, err)
}

func TestActorRoles(t *testing.T) {
	assert.False(t, Actor{}.IsAdmin())
	assert.False(t, Actor{Roles: []string{RoleContributor}}.CanReview())
	assert.True(t, Actor{Roles: []string{RoleReviewer}}.CanReview())
	assert.False(t, Actor{Roles: []string{RoleReviewer}}.IsAdmin())
	assert.True(t, Actor{Roles: []string{RoleAdmin}}.CanReview())
}
