// Package auth supplies the authenticated actor to every core
// operation and hosts the authorization guard. Identity is derived
// exactly once, at the transport boundary; the core never re-derives
// it.
package auth

import (
	"context"
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"foodMarketplace/models"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   int64
	Role models.Role
}

type actorKey struct{}

// WithActor stores the actor in context.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext retrieves the actor from context (if any).
func FromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(*Actor)
	return a, ok
}

// ParseBearer extracts and validates a Bearer JWT from an Authorization
// header value and returns the actor it asserts.
func ParseBearer(header, secret string) (*Actor, error) {
	if header == "" {
		return nil, errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid authorization header")
	}
	return parseJWT(strings.TrimSpace(parts[1]), secret)
}

// parseJWT validates and extracts claims from a JWT token.
func parseJWT(tokenStr, secret string) (*Actor, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	type claims struct {
		UserID int64  `json:"uid"`
		Role   string `json:"role"`
		jwt.RegisteredClaims
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	c, _ := tok.Claims.(*claims)
	if c == nil || c.UserID == 0 {
		return nil, errors.New("invalid claims")
	}
	role := models.Role(strings.ToLower(c.Role))
	if !role.Valid() {
		return nil, errors.New("unknown role")
	}
	return &Actor{ID: c.UserID, Role: role}, nil
}
