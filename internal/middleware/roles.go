package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-agenda-api/internal/access"
	"github.com/noah-isme/sma-agenda-api/internal/models"
	appErrors "github.com/noah-isme/sma-agenda-api/pkg/errors"
	"github.com/noah-isme/sma-agenda-api/pkg/response"
)

// RequireOperation rejects requests whose role the gate denies for the given
// operation. Services re-check the gate before mutating, so a misrouted
// request can never slip past on the transport layer alone.
func RequireOperation(gate *access.Gate, op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if err := gate.Authorize(claims.Role, op); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
