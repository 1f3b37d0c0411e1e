package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pilltrack/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrNotConfigured = errors.New("jwt verifier not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims del token emitido por el servicio de identidad.
// El usuario va en "sub"; "user_id" se acepta por compatibilidad.
type Claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"user_id,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// Verifier implementa auth.AuthVerifier con JWT HS256 y secreto compartido.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type Option func(*Verifier)

func WithIssuer(iss string) Option {
	return func(v *Verifier) { v.issuer = strings.TrimSpace(iss) }
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

func New(secret string, opts ...Option) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNotConfigured
	}
	v := &Verifier{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("jwt verify failed: %w", err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		userID = strings.TrimSpace(claims.UserID)
	}
	if userID == "" {
		return auth.Claims{}, errors.New("jwt claims missing user id")
	}

	return auth.Claims{
		UserID: userID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}

// Sign emite un token HS256 (tests y herramientas locales).
func (v *Verifier) Sign(userID, email string, roles []string, ttl time.Duration) (string, error) {
	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Roles: roles,
	})
	return token.SignedString(v.secret)
}
