package middleware

import (
	"github.com/gin-gonic/gin"

	"cyclestore/internal/auth"
)

// UserAuth admits only user tokens whose user still exists and injects the
// userId into the context.
func UserAuth(secret string, resolver PrincipalResolver) gin.HandlerFunc {
	return AuthGuard(secret, resolver, auth.KindUser)
}
