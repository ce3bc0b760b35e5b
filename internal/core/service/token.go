package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is one year, matching the session length of the web client.
const DefaultTokenTTL = 365 * 24 * time.Hour

// TokenService issues and verifies HS256-signed session tokens. The payload
// carries only the subject user id and an absolute expiry; it is visible,
// integrity-protected only.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user id expiring ttl from now.
func (s *TokenService) Issue(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the subject user id when the signature is valid and the
// token has not expired. Malformed, forged, expired, or alg-confused tokens
// all yield ok=false; verification never raises.
func (s *TokenService) Verify(token string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
