// Package jwt issues and verifies the HS256 session tokens handed out in
// exchange for a valid API key.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingToken      = errors.New("jwt: missing bearer token")
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrMissingSubject    = errors.New("jwt: token has no subject")
)

// DefaultTTL is the session lifetime: 30 days.
const DefaultTTL = 30 * 24 * time.Hour

// Config is loaded from the environment by pkg/config.
type Config struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"720h"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"gems-simce-api"`
}

// Claims is the session payload. Email doubles as the subject.
type Claims struct {
	Email     string `json:"email"`
	APIKey    string `json:"apiKey"`
	Plan      string `json:"plan"`
	GemsLimit int    `json:"gems_limit"`
	jwt.RegisteredClaims
}

// Service signs and parses session tokens.
type Service struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service. An empty secret is rejected.
func New(cfg Config, opts ...Option) (*Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		key:    []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate signs claims, filling the subject, issuer, issued-at and expiry.
// It returns the token and its expiry time.
func (s *Service) Generate(claims Claims) (string, time.Time, error) {
	if claims.Email == "" {
		return "", time.Time{}, ErrMissingSubject
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.Email,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign token: %w", err)
	}
	return token, exp, nil
}

// Parse verifies the signature, algorithm, issuer and expiry of token.
// Expired tokens yield ErrExpiredToken; every other failure ErrInvalidToken.
func (s *Service) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	case claims.Email == "" || claims.Subject != claims.Email:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
