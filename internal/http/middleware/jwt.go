package middleware

import (
	"net/http"
	"strings"

	"github.com/ethioska/sqboom/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT validates the bearer token and stores the account id and role in the
// request context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		accountID, role, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("account_id", accountID)
		c.Set("role", role)
		c.Next()
	}
}

// RequireRole aborts unless the token carried one of the given roles.
// Must run after JWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, _ := c.Get("role")
		r, ok := role.(string)
		if !ok || !allowed[r] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
