package handlers

import (
	"github.com/gin-gonic/gin"

	"warebase/internal/core/apperror"
	"warebase/internal/infrastructure/http/v1/dto"
	"warebase/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the audit trail per entity.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		audit:       audit,
	}
}

// GetEntityHistory handles GET /audit/:entity/:id - newest first.
func (h *AuditHandler) GetEntityHistory(c *gin.Context) {
	entityType := c.Param("entity")
	entityID := c.Param("id")
	if entityType == "" || entityID == "" {
		h.Error(c, apperror.NewValidation("entity and id are required"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	records, err := h.audit.GetEntityHistory(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromAuditRecords(records)})
}
