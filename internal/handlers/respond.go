package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Fail sends the panel's standard failure envelope
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// OK sends the standard success envelope, merged with extra payload fields
func OK(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
