package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/middleware"
	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

// AnalysisHandler runs the analyses that feed the view store.
type AnalysisHandler struct {
	registry *service.Registry
}

func NewAnalysisHandler(registry *service.Registry) *AnalysisHandler {
	return &AnalysisHandler{registry: registry}
}

func (h *AnalysisHandler) analysis(c *gin.Context) *service.AnalysisService {
	return h.registry.Get(middleware.GetWorkspace(c)).Analysis
}

type monthlyRequest struct {
	BaseMonth    string `json:"base_month" form:"base_month"`
	CompareMonth string `json:"compare_month" form:"compare_month"`
}

// Monthly accepts the months as JSON or query parameters; both empty lets
// the backend pick the two latest periods.
func (h *AnalysisHandler) Monthly(c *gin.Context) {
	var req monthlyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validation("잘못된 요청입니다."))
			return
		}
	} else if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, apperr.Validation("잘못된 요청입니다."))
		return
	}

	result, err := h.analysis(c).Monthly(c.Request.Context(), service.MonthlyQuery{
		BaseMonth:    req.BaseMonth,
		CompareMonth: req.CompareMonth,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *AnalysisHandler) ProductCost(c *gin.Context) {
	result, err := h.analysis(c).ProductCost(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// Simulation takes the change rates in percent as the JSON body.
func (h *AnalysisHandler) Simulation(c *gin.Context) {
	var input model.CostSimulationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("잘못된 요청입니다."))
		return
	}

	result, err := h.analysis(c).SimulateCost(c.Request.Context(), input, c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *AnalysisHandler) Sensitivity(c *gin.Context) {
	result, err := h.analysis(c).Sensitivity(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
