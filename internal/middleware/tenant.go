package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const tenantIDKey = "tenantID"

// TenantHeader is the request header carrying the owning school's identifier.
const TenantHeader = "X-Tenant-ID"

// Tenant attaches the tenant identifier from the request header, when
// present, to the gin context. The identifier is an opaque string; it is not
// checked against any registry.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenantID := strings.TrimSpace(c.GetHeader(TenantHeader)); tenantID != "" {
			c.Set(tenantIDKey, tenantID)
		}
		c.Next()
	}
}

// TenantID returns the tenant identifier attached by Tenant.
func TenantID(c *gin.Context) (string, bool) {
	value, ok := c.Get(tenantIDKey)
	if !ok {
		return "", false
	}
	tenantID, ok := value.(string)
	return tenantID, ok
}
