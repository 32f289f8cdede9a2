package response

import "github.com/gin-gonic/gin"

// Error writes the uniform error body. Success responses carry their
// documented payloads directly; only failures get wrapped.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}
