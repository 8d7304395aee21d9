package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and stamps the operator onto
// the request context. Requests without a token pass through untouched;
// RequireAuth gates the routes that must not run anonymously.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		token, err := utils.JwtValidate(auth)
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := token.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = utils.SetTokenInContext(ctx, auth)
		ctx = utils.SetOperatorIdInContext(ctx, claim.ID)
		ctx = utils.SetIsAdminInContext(ctx, claim.Role == "Admin")

		// resolve the display name for audit columns
		if user, err := models.GetUser(ctx, claim.ID); err == nil {
			ctx = utils.SetUsernameInContext(ctx, user.Username)
			ctx = utils.SetOperatorNameInContext(ctx, user.Username)
		} else {
			ctx = utils.SetOperatorNameInContext(ctx, "user-"+strconv.Itoa(claim.ID))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth aborts anonymous requests. Installed after AuthMiddleware
// on routes that mutate state. AUTH_DISABLED=true bypasses the gate for
// local development.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.AuthDisabled() {
			c.Next()
			return
		}
		if _, ok := utils.GetOperatorIdFromContext(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
