package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/middleware"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apperr.SuccessResponse{Data: data, Success: true})
}

// respondError writes the error envelope with the status of the error code.
// Unknown errors are logged and reported as internal.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal {
		logger.Error(c.Request.Context(), "request failed", "error", err)
	}

	// Copy so the request id never leaks into a shared error value.
	out := *appErr
	out.RequestID = middleware.GetRequestID(c)
	c.JSON(out.StatusCode, apperr.ErrorResponse{Error: &out})
}
