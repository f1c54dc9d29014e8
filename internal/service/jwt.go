package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleScorekeeper may mutate games when token checks are on.
const RoleScorekeeper = "scorekeeper"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrJWTDisabled  = errors.New("JWT_SECRET is not set")
)

var jwtSecret []byte

// InitJWT sets the signing secret. An empty secret disables token checks.
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// JWTEnabled reports whether mutations require a scorekeeper token.
func JWTEnabled() bool {
	return len(jwtSecret) > 0
}

type ScorekeeperClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a scorekeeper token for subject valid for ttl.
func GenerateJWT(subject string, ttl time.Duration) (string, error) {
	if !JWTEnabled() {
		return "", ErrJWTDisabled
	}
	now := time.Now()
	claims := ScorekeeperClaims{
		Role: RoleScorekeeper,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates a scorekeeper token and returns its subject.
func ParseJWT(tokenString string) (string, error) {
	if !JWTEnabled() {
		return "", ErrJWTDisabled
	}
	claims := &ScorekeeperClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Role != RoleScorekeeper {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
