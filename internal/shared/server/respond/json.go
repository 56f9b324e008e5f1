package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 Created JSON response.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Accepted writes a 202 for work handed to a queue.
func Accepted(c *gin.Context, payload any) {
	JSON(c, http.StatusAccepted, payload)
}

// Items wraps a list as {"items": [...]}, never null.
func Items[T any](c *gin.Context, list []T) {
	if list == nil {
		list = []T{}
	}
	OK(c, gin.H{"items": list})
}

// NoContent writes a bodiless 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
