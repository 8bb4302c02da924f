package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/homebudget-guard/internal/api/dto"
)

// OwnerHeader names the header carrying the authenticated user id. An
// upstream gateway is expected to set it after authentication.
const OwnerHeader = "X-User-ID"

const ownerKey = "owner_id"

// Owner rejects requests without a positive integer user id with 401.
func Owner() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(OwnerHeader))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.UnauthorizedError())
			return
		}
		c.Set(ownerKey, id)
		c.Next()
	}
}

// OwnerID returns the id stored by Owner, or 0.
func OwnerID(c *gin.Context) int64 {
	return c.GetInt64(ownerKey)
}
