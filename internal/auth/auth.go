package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the session token claims identifying a viewer.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies viewer session tokens.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &TokenIssuer{
		Secret: []byte(secret),
		TTL:    ttl,
		Issuer: "expense-portal",
		now:    time.Now,
	}
}

// WithClock replaces the issuer's time source.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// Issue creates a signed token for the viewer.
func (t *TokenIssuer) Issue(v Viewer) (string, error) {
	if v.ID == "" {
		return "", errors.New("viewer id is required")
	}
	if _, ok := user.ParseRole(string(v.Role)); !ok {
		return "", fmt.Errorf("unknown role %q", v.Role)
	}

	now := t.now()
	claims := &Claims{
		UserID: v.ID,
		Name:   v.Name,
		Role:   string(v.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.Issuer,
			Subject:   v.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// Parse verifies the token and returns the viewer it identifies.
func (t *TokenIssuer) Parse(tokenString string) (*Viewer, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, internal.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithIssuer(t.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	role, ok := user.ParseRole(claims.Role)
	if !ok || claims.UserID == "" {
		return nil, internal.ErrInvalidToken
	}

	return &Viewer{ID: claims.UserID, Name: claims.Name, Role: role}, nil
}

type ctxKey string

const ContextViewerKey ctxKey = "viewer"

func ContextWithViewer(ctx context.Context, v *Viewer) context.Context {
	return context.WithValue(ctx, ContextViewerKey, v)
}

// ViewerFromContext is only used at the HTTP edge; screens receive the viewer
// as an explicit argument.
func ViewerFromContext(ctx context.Context) (*Viewer, bool) {
	v, ok := ctx.Value(ContextViewerKey).(*Viewer)
	return v, ok && v != nil
}
