package middlewares

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/bistro/internal/domain/user"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after RequireAuth. It loads the caller's user
// record and lets the request through only for role "admin".
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := EmailFromContext(c)
		if !ok {
			m.reject(c, http.StatusForbidden)
			return
		}

		u, err := m.users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				m.reject(c, http.StatusForbidden)
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "admin lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		if !user.IsAdmin(u) {
			m.reject(c, http.StatusForbidden)
			return
		}

		c.Next()
	}
}

// RequireSelf must run after RequireAuth. The path parameter param has to
// equal the caller's own email.
func (m *AuthMiddleware) RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := EmailFromContext(c)
		if !ok || c.Param(param) != email {
			m.reject(c, http.StatusForbidden)
			return
		}

		c.Next()
	}
}
