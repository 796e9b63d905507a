package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/possuite/backoffice/internal/core/domain"
)

// JWTCodec issues HS256 tokens whose subject is the principal id.
type JWTCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTCodec(secret, issuer string, ttl time.Duration) *JWTCodec {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &JWTCodec{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (c *JWTCodec) Issue(principalID string) (string, error) {
	if principalID == "" {
		return "", errors.New("issue token: empty principal id")
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   principalID,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Parse rejects tokens signed with anything but HS256 and the configured
// secret, expired tokens, and tokens without a subject.
func (c *JWTCodec) Parse(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}
