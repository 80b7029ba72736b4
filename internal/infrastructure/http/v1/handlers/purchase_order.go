package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warebase/internal/domain"
	"warebase/internal/domain/orders/purchase"
	"warebase/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler exposes the purchase order workflow:
// draft -> approved -> received, with cancel from the non-terminal states.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /purchase-orders.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		ListFilter: domain.ListFilter{
			Search:  c.Query("search"),
			OrderBy: c.Query("orderBy"),
			Limit:   h.ParseIntQuery(c, "limit", 50),
			Offset:  h.ParseIntQuery(c, "offset", 0),
		},
	}

	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if supplierParam := c.Query("supplier"); supplierParam != "" {
		supplierID, err := dto.ParseID("supplier", supplierParam)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.SupplierID = &supplierID
	}

	var ok bool
	if filter.DateFrom, ok = h.ParseTimeQuery(c, "from"); !ok {
		return
	}
	if filter.DateTo, ok = h.ParseTimeQuery(c, "to"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, order := range result.Items {
		items[i] = dto.FromPurchaseOrder(order)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(order))
}

// Create handles POST /purchase-orders.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.Create(c.Request.Context(), input, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromPurchaseOrder(order))
}

// Update handles PUT /purchase-orders/:id (drafts only).
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req dto.UpdatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.Update(c.Request.Context(), orderID, input, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(order))
}

// Approve handles POST /purchase-orders/:id/approve.
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	req := dto.ApprovePurchaseOrderRequest{}
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.Approve(c.Request.Context(), orderID, req.Notes, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(order))
}

// Receive handles POST /purchase-orders/:id/receive.
// This is the single point where a purchase order affects stock.
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	req := dto.ReceivePurchaseOrderRequest{}
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.Receive(c.Request.Context(), orderID, req.ToInput(), h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(order))
}

// Cancel handles POST /purchase-orders/:id/cancel.
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), orderID, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(order))
}

// Delete handles DELETE /purchase-orders/:id.
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), orderID, h.UserID(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
