package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

// LedgerSource serves receivables and payables.
type LedgerSource interface {
	ListReceivables(ctx context.Context, f service.LedgerFilter) (*model.ReceivablePage, error)
	ReceivableSummary(ctx context.Context) (*model.ReceivableSummary, error)
	ReceivableAging(ctx context.Context) ([]model.CustomerAging, error)
	ListPayables(ctx context.Context, f service.LedgerFilter) (*model.PayablePage, error)
	PayableSummary(ctx context.Context) (*model.PayableSummary, error)
}

type LedgerHandler struct {
	ledger LedgerSource
}

func NewLedgerHandler(ledger LedgerSource) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// ledgerFilter reads status, limit and the party parameter named partyKey.
func ledgerFilter(c *gin.Context, partyKey string) (service.LedgerFilter, error) {
	filter := service.LedgerFilter{Party: c.Query(partyKey)}
	if s := c.Query("status"); s != "" {
		st, err := model.ParseLedgerStatus(s)
		if err != nil {
			return filter, apperr.Validation(err.Error())
		}
		filter.Status = st
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return filter, apperr.Validation("limit는 1 이상의 정수여야 합니다.")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func (h *LedgerHandler) Receivables(c *gin.Context) {
	filter, err := ledgerFilter(c, "customer")
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.ledger.ListReceivables(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *LedgerHandler) ReceivableSummary(c *gin.Context) {
	summary, err := h.ledger.ReceivableSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

func (h *LedgerHandler) ReceivableAging(c *gin.Context) {
	aging, err := h.ledger.ReceivableAging(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, aging)
}

func (h *LedgerHandler) Payables(c *gin.Context) {
	filter, err := ledgerFilter(c, "supplier")
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.ledger.ListPayables(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *LedgerHandler) PayableSummary(c *gin.Context) {
	summary, err := h.ledger.PayableSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}
