package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind tags which identity space a token belongs to.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Kind Kind
	ID   primitive.ObjectID
}

func (p Principal) String() string {
	return string(p.Kind) + ":" + p.ID.Hex()
}

// Issue signs a token for p. A zero ttl produces a token without expiry.
func Issue(p Principal, secret string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"kind": string(p.Kind),
		"iat":  now.Unix(),
	}
	switch p.Kind {
	case KindUser:
		claims["userId"] = p.ID.Hex()
	case KindAdmin:
		claims["adminId"] = p.ID.Hex()
		claims["role"] = "admin"
	default:
		return "", fmt.Errorf("unknown principal kind %q", p.Kind)
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse verifies raw with secret and extracts the principal from its claims.
func Parse(raw, secret string) (Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}

	kind, _ := claims["kind"].(string)
	var idClaim string
	switch Kind(kind) {
	case KindUser:
		idClaim = "userId"
	case KindAdmin:
		idClaim = "adminId"
	default:
		// tokens issued before the kind claim existed
		if _, ok := claims["adminId"]; ok {
			kind, idClaim = string(KindAdmin), "adminId"
		} else {
			kind, idClaim = string(KindUser), "userId"
		}
	}

	value, _ := claims[idClaim].(string)
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %s claim", ErrInvalidToken, idClaim)
	}
	return Principal{Kind: Kind(kind), ID: id}, nil
}

// FromHeader extracts the bearer token from an Authorization header value.
func FromHeader(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(raw)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
