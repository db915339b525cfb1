package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cyclestore/internal/auth"
	"cyclestore/internal/models"
)

const (
	PrincipalKey = "principal"
	UserIDKey    = "userId"
	AdminIDKey   = "adminId"
)

// PrincipalResolver confirms that a verified principal still exists.
// Implementations return models.ErrUserNotFound or models.ErrAdminNotFound
// when it does not.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, p auth.Principal) error
}

// AuthGuard verifies the bearer token, checks the principal kind against
// allowed, resolves the principal and stores it in the context.
func AuthGuard(secret string, resolver PrincipalResolver, allowed ...auth.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			log.Println("[AUTH] [ERROR]", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		principal, err := auth.Parse(raw, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if !kindAllowed(principal.Kind, allowed) {
			log.Printf("[AUTH] [ERROR] %s token rejected on %s", principal.Kind, c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := resolver.ResolvePrincipal(ctx, principal); err != nil {
			switch {
			case errors.Is(err, models.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			case errors.Is(err, models.ErrAdminNotFound):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied - admin not found"})
			default:
				log.Println("[AUTH] [ERROR] principal lookup failed:", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			}
			return
		}

		c.Set(PrincipalKey, principal)
		switch principal.Kind {
		case auth.KindUser:
			c.Set(UserIDKey, principal.ID)
		case auth.KindAdmin:
			c.Set(AdminIDKey, principal.ID)
		}
		c.Next()
	}
}

func kindAllowed(kind auth.Kind, allowed []auth.Kind) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, k := range allowed {
		if k == kind {
			return true
		}
	}
	return false
}

func AdminAuth(secret string, resolver PrincipalResolver) gin.HandlerFunc {
	return AuthGuard(secret, resolver, auth.KindAdmin)
}
