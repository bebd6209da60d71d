package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/model"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

type DocumentSource interface {
	ListDocuments(ctx context.Context, f service.DocumentFilter) ([]model.TradeDocument, error)
	GetDocument(ctx context.Context, fileID string) (*model.TradeDocument, error)
}

type DocumentHandler struct {
	docs DocumentSource
}

func NewDocumentHandler(docs DocumentSource) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// documentView adds the reference number taken from the parsed payload when
// the listing itself has none.
type documentView struct {
	model.TradeDocument
	Reference string `json:"reference"`
}

func viewOf(doc model.TradeDocument) documentView {
	ref := doc.ReferenceNo
	if ref == "" {
		ref = model.ReferenceNo(doc.Data)
	}
	return documentView{TradeDocument: doc, Reference: ref}
}

func (h *DocumentHandler) List(c *gin.Context) {
	var filter service.DocumentFilter
	if s := c.Query("doc_type"); s != "" {
		t, err := model.ParseDocumentType(s)
		if err != nil {
			respondError(c, apperr.Validation(err.Error()))
			return
		}
		filter.DocType = t
	}
	filter.Status = model.DocumentStatus(c.Query("status"))
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			respondError(c, apperr.Validation("limit는 1 이상의 정수여야 합니다."))
			return
		}
		filter.Limit = limit
	}

	docs, err := h.docs.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		out = append(out, viewOf(doc))
	}
	respondOK(c, out)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.docs.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, viewOf(*doc))
}
