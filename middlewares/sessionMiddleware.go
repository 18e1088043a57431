package middlewares

import (
	"net/http"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/models"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the session token into the acting user and puts
// the identity (plus the approval capability) on the request context. Requests
// without a token pass through; handlers that need an identity will fail on
// the missing user id.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		user, err := models.GetUserByUsername(c.Request.Context(), username)
		if err != nil || user.IsActive == nil || !*user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetUsernameInContext(c.Request.Context(), user.Username)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetCanApproveInContext(ctx, user.CanApprove || user.Role == models.UserRoleAdmin)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
