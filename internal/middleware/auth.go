package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vidtube/vidtube/internal/cookies"
	"github.com/vidtube/vidtube/internal/tokens"
)

const userIDKey = "user_id"

type Auth struct {
	JWTSecret []byte
}

func NewAuth(secret []byte) *Auth {
	return &Auth{JWTSecret: secret}
}

// RequireAuth accepts the access token from the accessToken cookie or an
// Authorization: Bearer header and attaches the caller's id to the echo
// context. Invalid or expired tokens clear both cookies.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := accessTokenFromRequest(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			c.SetCookie(cookies.Delete(cookies.AccessToken, "/"))
			c.SetCookie(cookies.Delete(cookies.RefreshToken, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

// OptionalAuth attaches the caller's id when a valid access token is
// present and lets the request through anonymously otherwise.
func (m *Auth) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := accessTokenFromRequest(c)
		if raw != "" {
			if claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret); err == nil {
				if userID, err := uuid.Parse(claims.Subject); err == nil {
					c.Set(userIDKey, userID)
				}
			}
		}
		return next(c)
	}
}

// UserID returns the authenticated caller's id, if any.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(userIDKey).(uuid.UUID)
	return id, ok
}

func accessTokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(cookies.AccessToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}
