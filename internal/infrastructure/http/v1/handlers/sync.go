package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
)

// SyncHandler is the server half of the POS synchronization protocol.
type SyncHandler struct {
	*BaseHandler
	engine *possync.Engine
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(base *BaseHandler, engine *possync.Engine) *SyncHandler {
	return &SyncHandler{BaseHandler: base, engine: engine}
}

// Sync applies the device's queued changes in order and returns the
// snapshot of everything changed since the device's cursor.
// POST /api/pos/sync
func (h *SyncHandler) Sync(c *gin.Context) {
	var req possync.Request
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.engine.Sync(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, resp)
}
