package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenTTL is the lifetime of every issued token.
	TokenTTL = time.Hour

	// IdentityClaim carries the user id inside the token.
	IdentityClaim = "_id"
)

var ErrMissingSecret = errors.New("token signing secret is not configured")

// TokenData is a signed token together with its lifetime in seconds.
type TokenData struct {
	ExpiresIn int    `json:"expiresIn"`
	Token     string `json:"token"`
}

// TokenIssuer signs identity claims with a shared HS256 secret.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &TokenIssuer{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

// Auth exposes the underlying jwtauth instance for the verifier middleware.
func (i *TokenIssuer) Auth() *jwtauth.JWTAuth {
	return i.auth
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token whose only application claim is the user id.
func (i *TokenIssuer) Issue(userID string) (TokenData, error) {
	if i == nil || i.auth == nil {
		return TokenData{}, ErrMissingSecret
	}
	now := i.now()
	claims := jwt.MapClaims{
		IdentityClaim: userID,
		"iat":         now.Unix(),
		"exp":         now.Add(i.ttl).Unix(),
	}
	_, tokenString, err := i.auth.Encode(claims)
	if err != nil {
		return TokenData{}, err
	}
	return TokenData{ExpiresIn: int(i.ttl / time.Second), Token: tokenString}, nil
}

// Helper to extract the identity claim, used by the auth middleware
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[IdentityClaim].(string)
	if !ok || id == "" {
		return "", errors.New("_id claim is missing or not a string")
	}
	return id, nil
}
