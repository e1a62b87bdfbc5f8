package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/geocoder89/bistro/internal/actorctx"
	"github.com/geocoder89/bistro/internal/auth"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (store.Document, error)
}

type FailureCounter interface {
	AuthFailed(reason string)
}

type AuthMiddleware struct {
	jwt      TokenVerifier
	users    UserLookup
	failures FailureCounter
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLookup, failures FailureCounter) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, failures: failures}
}

// RequireAuth accepts "Authorization: Bearer <token>", with the scheme in any
// case, and stores the decoded claims on the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.reject(c, http.StatusUnauthorized)
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			m.reject(c, http.StatusUnauthorized)
			return
		}

		c.Set(CtxClaims, claims)

		if email, ok := claims.Email(); ok {
			c.Set(CtxEmail, email)
			c.Request = c.Request.WithContext(actorctx.WithEmail(c.Request.Context(), email))
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func (m *AuthMiddleware) reject(c *gin.Context, status int) {
	msg, reason := MsgUnauthorized, "unauthorized"
	if status == http.StatusForbidden {
		msg, reason = MsgForbidden, "forbidden"
	}

	if m.failures != nil {
		m.failures.AuthFailed(reason)
	}

	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// Optional helpers so handlers don't need to know the magic keys.

func ClaimsFromContext(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	email := c.GetString(CtxEmail)
	return email, email != ""
}
