package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

// ContextUserKey is the gin context key storing the signed-in user.
const ContextUserKey = "currentUser"

type sessionReader interface {
	Current(ctx context.Context) (*models.User, error)
}

// RequireSession rejects requests made while nobody is signed in.
func RequireSession(sessions sessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := sessions.Current(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireSession.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
