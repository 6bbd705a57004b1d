package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminAudience = "irdesk-admin"

// HS256Validator validates admin tokens signed with a shared key.
type HS256Validator struct {
	key []byte
}

func NewHS256Validator(signingKey string) *HS256Validator {
	return &HS256Validator{key: []byte(signingKey)}
}

func (v *HS256Validator) ValidateToken(tokenString string) (*AdminClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(adminAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse admin token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("admin token has no subject")
	}
	return &AdminClaims{Subject: claims.Subject}, nil
}

// IssueAdminToken signs a short-lived admin token. Used by ops tooling and tests.
func IssueAdminToken(signingKey, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{adminAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}
