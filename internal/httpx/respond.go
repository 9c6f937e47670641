// Package httpx provides the shared JSON response envelope.
package httpx

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// OK writes a success envelope with the given payload.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// Error writes a failure envelope with a caller-facing message.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// AbortError writes a failure envelope and stops the handler chain.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// InternalError logs the underlying fault and responds with a generic 500.
// Internals are never surfaced to the caller.
func InternalError(c *gin.Context, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	Error(c, http.StatusInternalServerError, "server error")
}

// ParamID parses a numeric id from the named route parameter, responding
// 400 itself on a malformed value.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
