package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// AuditHandler exposes the audit trail to managers.
type AuditHandler struct {
	*BaseHandler
	reader audit.Reader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, reader audit.Reader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// Recent returns the newest audit entries.
// GET /api/audit?limit=
func (h *AuditHandler) Recent(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 100)

	entries, err := h.reader.Recent(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: entries, Count: len(entries)})
}
