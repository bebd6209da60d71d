package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
)

// Recovery turns a panic into a logged internal error. When the handler has
// already started a response (an open event stream) the connection is only
// aborted, since a JSON body can no longer be sent.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger.Error(c.Request.Context(), "panic recovered",
				"error", rec,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			appErr := apperr.Internal("서버 내부 오류가 발생했습니다.")
			appErr.RequestID = GetRequestID(c)
			c.AbortWithStatusJSON(http.StatusInternalServerError, apperr.ErrorResponse{Error: appErr})
		}()

		c.Next()
	}
}
