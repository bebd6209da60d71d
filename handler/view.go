package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/melaka-ybbae/pnl-ai-sync/middleware"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/apperr"
	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

// ViewHandler exposes the view store of the caller's workspace.
type ViewHandler struct {
	registry *service.Registry
}

func NewViewHandler(registry *service.Registry) *ViewHandler {
	return &ViewHandler{registry: registry}
}

// Get returns one slot. An empty slot is not an error.
func (h *ViewHandler) Get(c *gin.Context) {
	slot, err := service.ParseSlot(c.Param("slot"))
	if err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	value, ok := h.registry.Get(middleware.GetWorkspace(c)).View.Get(slot)
	if !ok {
		value = nil
	}
	respondOK(c, gin.H{
		"slot":    slot,
		"present": ok,
		"value":   value,
	})
}

// Stream pushes slot values as datastar signals under "view". All slots are
// sent once on connect, then each slot again whenever it changes.
func (h *ViewHandler) Stream(c *gin.Context) {
	ctx, stop := context.WithCancel(c.Request.Context())
	defer stop()
	view := h.registry.Get(middleware.GetWorkspace(c)).View

	// Subscribe before the first snapshot so no write falls in between.
	changed := make(chan service.Slot, len(service.Slots))
	for _, slot := range service.Slots {
		ch, cancel := view.Subscribe(slot)
		defer cancel()
		go forwardSlot(ctx, slot, ch, changed)
	}

	sse := datastar.NewSSE(c.Writer, c.Request)
	if err := patchSlots(sse, view, service.Slots...); err != nil {
		logger.Debug(ctx, "view stream closed", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case slot := <-changed:
			if err := patchSlots(sse, view, slot); err != nil {
				logger.Debug(ctx, "view stream closed", "error", err)
				return
			}
		}
	}
}

func forwardSlot(ctx context.Context, slot service.Slot, in <-chan struct{}, out chan<- service.Slot) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-in:
			select {
			case out <- slot:
			case <-ctx.Done():
				return
			}
		}
	}
}

func patchSlots(sse *datastar.ServerSentEventGenerator, view *service.ViewStore, slots ...service.Slot) error {
	values := make(map[service.Slot]any, len(slots))
	for _, slot := range slots {
		if v, ok := view.Get(slot); ok {
			values[slot] = v
		} else {
			values[slot] = nil
		}
	}
	payload, err := json.Marshal(map[string]any{"view": values})
	if err != nil {
		return err
	}
	return sse.PatchSignals(payload)
}
