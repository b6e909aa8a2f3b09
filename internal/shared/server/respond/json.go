// Package respond writes the API's JSON bodies. Success payloads go out
// as-is; failures use the error envelope in errors.go so analysis,
// similarity and batch handlers all report problems the same way.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}
