package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warebase/internal/domain"
	"warebase/internal/domain/orders/sales"
	"warebase/internal/infrastructure/http/v1/dto"
)

// SalesOrderHandler exposes the sales order workflow:
// draft -> confirmed -> fulfilled, with cancel from the non-terminal
// states. Confirmation checks stock; fulfillment debits it.
type SalesOrderHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesOrderHandler creates a new sales order handler.
func NewSalesOrderHandler(base *BaseHandler, service *sales.Service) *SalesOrderHandler {
	return &SalesOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /sales-orders.
func (h *SalesOrderHandler) List(c *gin.Context) {
	filter := sales.ListFilter{
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
	if customer := c.Query("customer"); customer != "" {
		filter.CustomerName = &customer
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
		items[i] = dto.FromSalesOrder(order)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /sales-orders/:id.
func (h *SalesOrderHandler) Get(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesOrder(order))
}

// Create handles POST /sales-orders.
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req dto.CreateSalesOrderRequest
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

	c.JSON(http.StatusCreated, dto.FromSalesOrder(order))
}

// Update handles PUT /sales-orders/:id (drafts only).
func (h *SalesOrderHandler) Update(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req dto.UpdateSalesOrderRequest
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

	h.OK(c, dto.FromSalesOrder(order))
}

// Confirm handles POST /sales-orders/:id/confirm.
// Availability is checked for every line; nothing is posted.
func (h *SalesOrderHandler) Confirm(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	req := dto.ConfirmSalesOrderRequest{}
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.Confirm(c.Request.Context(), orderID, req.Notes, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesOrder(order))
}

// Fulfill handles POST /sales-orders/:id/fulfill.
// This is the single point where a sales order affects stock.
func (h *SalesOrderHandler) Fulfill(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	req := dto.FulfillSalesOrderRequest{}
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.Fulfill(c.Request.Context(), orderID, req.ToInput(), h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesOrder(order))
}

// Cancel handles POST /sales-orders/:id/cancel.
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.PathID(c)
	if !ok {
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), orderID, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesOrder(order))
}

// Delete handles DELETE /sales-orders/:id.
func (h *SalesOrderHandler) Delete(c *gin.Context) {
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
