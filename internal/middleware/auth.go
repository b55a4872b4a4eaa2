package middleware

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
)

const identityKey = "identity"

// Authenticate decodes the bearer token when one is sent. Requests without an
// Authorization header pass through anonymously; a header that fails verification
// is rejected with 401.
func Authenticate(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		id, err := v.Verify(header)
		if err != nil {
			_ = c.Error(apperror.Unauthorized("invalid token"))
			c.Abort()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. It must run after Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			_ = c.Error(apperror.Unauthorized("missing token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			_ = c.Error(apperror.Unauthorized("missing token"))
			c.Abort()
			return
		}
		if !v.IsAdmin(id) {
			_ = c.Error(apperror.Forbidden("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
