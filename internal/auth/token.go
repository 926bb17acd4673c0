package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the default validity of generated access tokens.
const TokenTTL = 12 * time.Hour

// GenerateToken creates a signed HS256 access token for a user with the
// given roles. Used by operators and tests; production tokens normally
// come from the external identity provider.
func GenerateToken(secret []byte, userID string, roles []string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = userID
	claims["roles"] = roles
	claims["exp"] = time.Now().Add(TokenTTL).Unix()
	return token.SignedString(secret)
}

// ParseToken verifies a signed token and extracts the Actor from its
// user_id and roles claims.
func ParseToken(secret []byte, tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Actor{}, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Actor{}, fmt.Errorf("invalid token claims")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Actor{}, fmt.Errorf("token missing user_id claim")
	}

	actor := Actor{ID: userID}
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				actor.Roles = append(actor.Roles, s)
			}
		}
	}
	return actor, nil
}
