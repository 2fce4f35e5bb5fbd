package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classora/classora-auth/internal/domain"
	"github.com/classora/classora-auth/internal/service"
)

const currentUserKey = "currentUser"

// SessionCookieName is the cookie consulted when no bearer header is present.
const SessionCookieName = "token"

// Auth guards routes behind a valid session token.
type Auth struct {
	AuthService *service.AuthService
}

// RequireAuth extracts a token (Authorization bearer header first, `token`
// cookie second), verifies it, resolves the acting user, and attaches it to
// the request context. Missing, invalid, and stale tokens all produce the
// same 401.
func (m *Auth) RequireAuth(c *gin.Context) {
	raw := extractToken(c)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": service.MsgNotAuthorized})
		return
	}

	user, err := m.AuthService.Authenticate(c.Request.Context(), raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": service.MsgNotAuthorized})
		return
	}

	c.Set(currentUserKey, user)
	c.Next()
}

// RequireRoles gates an already-authenticated request on role membership.
// Must run after RequireAuth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": service.MsgNotAuthorized})
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   fmt.Sprintf("User role '%s' is not authorized to access this route", user.Role),
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by RequireAuth.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := value.(domain.User)
	return user, ok
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}
