package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session tokens are opaque database rows; reset tokens are the one place a
// signed stateless token fits, because the link travels out of band and must
// not require a server-side row.

type ResetClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func SignResetToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "password-reset",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

func ParseResetToken(secret, tokenStr string) (*ResetClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid reset token")
	}

	claims, ok := token.Claims.(*ResetClaims)
	if !ok || claims.UserID == "" || claims.Subject != "password-reset" {
		return nil, fmt.Errorf("invalid reset token")
	}
	return claims, nil
}
