package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
)

type ReportSource interface {
	ReportPreview(ctx context.Context, period string, includeAI bool) (*model.ReportPreview, error)
}

type ReportHandler struct {
	reports   ReportSource
	includeAI bool
}

func NewReportHandler(reports ReportSource, includeAI bool) *ReportHandler {
	return &ReportHandler{reports: reports, includeAI: includeAI}
}

// Preview shows what the report for ?period would contain.
func (h *ReportHandler) Preview(c *gin.Context) {
	preview, err := h.reports.ReportPreview(c.Request.Context(), c.Query("period"), h.includeAI)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, preview)
}
