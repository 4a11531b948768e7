// Package auth — access token service.
//
// WHY JWT?
// JWT (JSON Web Token) is stateless: the server stores no session table.
// Everything needed to authenticate a request (subject, expiry) travels
// inside the signed token, and the HMAC signature ensures nobody can
// tamper with it without the secret key. The tradeoff is deliberate:
// a token cannot be revoked before its expiry — validity is decided by
// signature and expiry alone, on any node, with no coordination.
//
// TOKEN STRUCTURE (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:    {"alg":"HS256","typ":"JWT"}
//	- Payload:   {"sub":"<email>","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The subject claim carries the user's email — the unique login key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService mints and validates access tokens.
//
// It holds the HMAC secret and the token lifetime, both fixed at process
// start. Rotating the key invalidates all outstanding tokens, so there is
// no rotation support. Safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production. Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. jwt.RegisteredClaims provides the standard
// fields; we populate Subject ("sub") and ExpiresAt ("exp") to match the
// wire format consumed by existing clients, and nothing else.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for the given subject (email).
// The embedded expiry is now + the configured TTL.
func (s *TokenService) Generate(subject string) (string, error) {
	return s.GenerateWithDuration(subject, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests (a negative duration yields an already-expired token).
func (s *TokenService) GenerateWithDuration(subject string, d time.Duration) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(d)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns its subject.
//
// Checks, in order:
//   - the signature is valid and the algorithm is HS256 (passing
//     jwt.WithValidMethods prevents algorithm-confusion attacks where an
//     attacker submits a token signed with "none")
//   - the token is not expired, and an expiry claim is present at all
//   - the subject claim is non-empty
//
// Any structural malformation — wrong segment count, bad base64, missing
// claims — comes back as an error, never a panic.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
