package security

import (
	"mime"

	"github.com/gin-gonic/gin"
)

// NoStoreMiddleware marks responses as not cacheable by browsers or proxies
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// SetAttachment sets a download Content-Disposition for filename
func SetAttachment(c *gin.Context, filename string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
}
