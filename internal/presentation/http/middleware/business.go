package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// RequireBusiness ensures the authenticated caller belongs to a business
func RequireBusiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetBusinessID(c) == uuid.Nil {
			response.Forbidden(c, "Business context required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetBusinessID retrieves the business ID from gin context
func GetBusinessID(c *gin.Context) uuid.UUID {
	businessID, exists := c.Get("business_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := businessID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
