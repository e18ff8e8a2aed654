package middleware

import (
	"fmt"
	"strings"
	"time"

	"ppv-marketplace/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const viewerKey = "viewer"

// SessionClaims identify the wallet a browser session is connected with.
type SessionClaims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

func IssueToken(secret, issuer, address string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, issuer, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if claims.Address == "" {
		return nil, fmt.Errorf("token carries no address")
	}
	return claims, nil
}

// Session reads the bearer token when present. With required set, a
// missing or invalid token ends the request with not_authorized.
func Session(secret, issuer string, required bool, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			if required {
				return errors.HandleError(c, log, errors.ErrNotAuthorized(fmt.Errorf("missing bearer token")))
			}
			return c.Next()
		}
		claims, err := parseToken(secret, issuer, raw)
		if err != nil {
			return errors.HandleError(c, log, errors.ErrNotAuthorized(err))
		}
		c.Locals(viewerKey, claims.Address)
		return c.Next()
	}
}

// Viewer is the session wallet address, empty for anonymous callers.
func Viewer(c *fiber.Ctx) string {
	v, _ := c.Locals(viewerKey).(string)
	return v
}
