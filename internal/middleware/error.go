package middleware

import (
	"errors"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/apperrors"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler translates errors attached to the context into the structured
// failure body. Nothing below this layer writes raw errors to the wire.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperrors.AppError

		if !errors.As(err, &appErr) {
			appErr = apperrors.New(apperrors.ErrInternal, err.Error(), err)
		}

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
		}

		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "Internal Server Error", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		c.JSON(appErr.HTTPStatus, gin.H{
			"success": false,
			"message": appErr.Message,
			"error":   appErr,
		})
	}
}
