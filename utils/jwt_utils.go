package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for cookies that fail signature, expiry or shape checks.
var ErrInvalidToken = errors.New("invalid visitor token")

const visitorTokenIssuer = "portfolio-api"

// VisitorTokens signs and verifies the visitorId cookie. The cookie value is an
// HS256 JWT whose subject is the visitor identifier.
type VisitorTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewVisitorTokens uses secret as the HMAC key; an empty secret gets a random
// per-process key, which invalidates cookies across restarts.
func NewVisitorTokens(secret string, ttl time.Duration) (*VisitorTokens, error) {
	key := []byte(secret)
	if len(key) == 0 {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("failed to generate visitor cookie secret: %w", err)
		}
		key = []byte(hex.EncodeToString(b))
	}
	return &VisitorTokens{secret: key, ttl: ttl, now: time.Now}, nil
}

// NewVisitorID returns a fresh random (v4) identifier.
func NewVisitorID() string {
	return uuid.NewString()
}

// Issue returns a signed token carrying visitorID.
func (v *VisitorTokens) Issue(visitorID string) (string, error) {
	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   visitorID,
		Issuer:    visitorTokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign visitor token: %w", err)
	}
	return tokenString, nil
}

// Parse validates tokenString and returns the visitor identifier it carries.
func (v *VisitorTokens) Parse(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithIssuer(visitorTokenIssuer),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not a visitor id", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Identify returns the visitor id carried by cookieValue when it is valid;
// otherwise a new id. fresh reports whether a new id was minted.
func (v *VisitorTokens) Identify(cookieValue string) (visitorID string, fresh bool) {
	if id, err := v.Parse(cookieValue); err == nil {
		return id, false
	}
	return NewVisitorID(), true
}
