package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
)

const (
	// ClaimsContextKey is a gin context key for the authenticated session claims.
	ClaimsContextKey = "claims"
	// UserCookieName carries customer sessions.
	UserCookieName = "returnearn_token"
	// AdminCookieName carries admin sessions.
	AdminCookieName = "returnearn_admin_token"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Claims, error)
}

// AuthRequired lets the request through only with a live session of the given role.
// Missing or invalid sessions get 401, sessions of another role get 403.
func AuthRequired(parser TokenParser, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, role)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if claims.Role != role {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the session claims stored by AuthRequired.
func CurrentClaims(c *gin.Context) (pkgAuth.Claims, bool) {
	val, ok := c.Get(ClaimsContextKey)
	if !ok {
		return pkgAuth.Claims{}, false
	}
	claims, ok := val.(pkgAuth.Claims)
	return claims, ok
}

func extractToken(c *gin.Context, role model.Role) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(cookieName(role)); err == nil {
		return cookie
	}
	return ""
}

func cookieName(role model.Role) string {
	if role == model.RoleAdmin {
		return AdminCookieName
	}
	return UserCookieName
}

// SetAuthCookie writes the session token for role to the response.
func SetAuthCookie(c *gin.Context, role model.Role, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName(role), token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClearAuthCookie expires the session cookie for role.
func ClearAuthCookie(c *gin.Context, role model.Role) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName(role), "", -1, "/", "", false, true)
}
