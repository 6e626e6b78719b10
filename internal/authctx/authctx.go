package authctx

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// The auth provider is external; this package only reads its access tokens to
// attribute requests. Missing or invalid tokens mean a guest, not an error,
// except on admin routes.

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Middleware struct {
	JWTSecret []byte
}

func (m *Middleware) parse(c echo.Context) (*Claims, error) {
	raw := ""
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimPrefix(h, "Bearer ")
	} else if ck, err := c.Cookie("accessToken"); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		return nil, jwt.ErrTokenMalformed
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Attribute resolves the current user onto the context when a valid token is
// present, and lets guests through untouched.
func (m *Middleware) Attribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, err := m.parse(c); err == nil {
			c.Set("user_id", claims.Subject)
			c.Set("role", claims.Role)
		}
		return next(c)
	}
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.parse(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		if claims.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}

// CurrentUser returns the authenticated user id, or nil for guests.
func CurrentUser(c echo.Context) *uuid.UUID {
	v, ok := c.Get("user_id").(string)
	if !ok || v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
