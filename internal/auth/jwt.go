package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harborline/portgate/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Actor is the identity attached to every call into the core. The core
// trusts these values; issuing and verifying credentials is the identity
// provider's job, this package only unpacks its tokens.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
	// CarrierID scopes ownership checks for carrier users; uuid.Nil for
	// operators and admins.
	CarrierID uuid.UUID
}

type Claims struct {
	Role      string `json:"role"`
	CarrierID string `json:"carrier_id,omitempty"`
	jwt.RegisteredClaims
}

// ParseValidate verifies the bearer token and unpacks the actor.
func ParseValidate(secret, token string) (Actor, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Actor{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, ErrInvalidToken
	}

	actor := Actor{ID: id, Role: model.Role(claims.Role)}
	if claims.CarrierID != "" {
		cid, err := uuid.Parse(claims.CarrierID)
		if err != nil {
			return Actor{}, ErrInvalidToken
		}
		actor.CarrierID = cid
	}
	return actor, nil
}

// Sign issues a token for an actor. Used by the seed tooling and tests;
// production tokens come from the identity provider.
func Sign(secret string, actor Actor, ttl time.Duration) (string, error) {
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	if actor.CarrierID != uuid.Nil {
		claims.CarrierID = actor.CarrierID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
