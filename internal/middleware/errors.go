package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
)

// ErrorHandler renders the last error pushed with c.Error. Internal errors are
// logged with their cause and reported to the caller with a generic message.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var ae *apperror.Error
		if !errors.As(err, &ae) {
			ae = apperror.Internal(err)
		}

		if ae.Kind == apperror.KindInternal {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", RequestIDFrom(c)),
			)
		}

		body := gin.H{"error": ae.Message}
		if ae.Field != "" {
			body["field"] = ae.Field
		}
		if len(ae.Details) > 0 {
			body["details"] = ae.Details
		}
		c.JSON(apperror.StatusCode(ae), body)
	}
}

// Recovery turns panics into 500 responses instead of dropping the connection.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", RequestIDFrom(c)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
