package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const formTokenPurpose = "search"

var errInvalidFormToken = errors.New("invalid form token")

type formClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// FormTokens issues and checks short lived HS256 tokens embedded in the search form.
type FormTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewFormTokens(secret string, ttl time.Duration) *FormTokens {
	return &FormTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token valid for the configured TTL.
func (f *FormTokens) Issue() (string, error) {
	now := f.now().UTC()
	claims := formClaims{
		Purpose: formTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(f.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		return "", fmt.Errorf("sign form token: %w", err)
	}
	return signed, nil
}

// Verify rejects tokens that are malformed, expired, signed with another key or method,
// or issued for another purpose.
func (f *FormTokens) Verify(raw string) error {
	if raw == "" {
		return errInvalidFormToken
	}
	token, err := jwt.ParseWithClaims(raw, &formClaims{}, func(*jwt.Token) (interface{}, error) {
		return f.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(f.now), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidFormToken, err)
	}
	claims, ok := token.Claims.(*formClaims)
	if !ok || !token.Valid || claims.Purpose != formTokenPurpose {
		return errInvalidFormToken
	}
	return nil
}
