package middleware

import (
	"net/http"

	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrorInfo{
				Code:      dto.ErrCodeRequestTooLarge,
				Message:   "Request body exceeds maximum allowed size",
				RequestID: GetRequestID(c),
			}))
			return
		}

		// chunked bodies are cut off while reading
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
