package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/classattend/attendance-server/users"
)

// AccessClaims are the JWT claims carried by issued access tokens.
type AccessClaims struct {
	UserID string         `json:"uid"`
	Role   users.RoleType `json:"role"`
	jwt.RegisteredClaims
}

func issueAccessToken(user *users.User, secret string, expiry time.Duration) (string, error) {
	claims := AccessClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "[issueAccessToken] signing failed")
	}
	return signed, nil
}

func parseAccessToken(raw, secret string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[parseAccessToken] parse failed")
	}
	if !token.Valid {
		return nil, errors.New("[parseAccessToken] token invalid")
	}
	return claims, nil
}
