package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/response"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "storefront_session"

const currentSessionKey = "current_session"

// SessionResolver turns a session token into the caller's identity.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Current, error)
}

// SessionMiddleware attaches the caller's session, when one is presented and
// valid, to both the gin context and the request context. It never aborts.
func SessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		cur, err := resolver.Resolve(c.Request.Context(), token)
		if err == nil && cur != nil {
			c.Set(currentSessionKey, cur)
			c.Request = c.Request.WithContext(session.WithCurrent(c.Request.Context(), cur))
		}
		c.Next()
	}
}

// RequireSession aborts with 401 when no session is attached.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			response.Error(c, apperror.NewUnauthorizedError("Please sign in to continue"))
			return
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the session holds one of roles.
func RequireRole(roles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		cur, ok := CurrentSession(c)
		if !ok {
			response.Error(c, apperror.NewUnauthorizedError("Please sign in to continue"))
			return
		}
		for _, r := range roles {
			if cur.Role == r {
				c.Next()
				return
			}
		}
		response.Error(c, apperror.NewForbiddenError("You do not have access to this resource"))
	}
}

// CurrentSession returns the session attached by SessionMiddleware.
func CurrentSession(c *gin.Context) (*session.Current, bool) {
	v, ok := c.Get(currentSessionKey)
	if !ok {
		return nil, false
	}
	cur, ok := v.(*session.Current)
	return cur, ok && cur != nil
}

// SessionToken reads the session token from the cookie or an Authorization header.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
