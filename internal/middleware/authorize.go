package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/models"
)

// RequireRoles allows the request through iff the authenticated caller's
// role is in the allowed set. Comparison is case-insensitive: roles are
// stored lowercase, but a record written with other casing must not lock
// its owner out. Ownership checks are layered per-route in handlers, not
// here.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[models.Role(strings.ToLower(string(role)))] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		caller := models.Role(strings.ToLower(string(user.Role)))
		if _, allowed := roleSet[caller]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden: insufficient role"})
			return
		}

		c.Next()
	}
}
