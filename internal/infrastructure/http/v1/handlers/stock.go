package handlers

import (
	"github.com/gin-gonic/gin"

	"warebase/internal/core/apperror"
	"warebase/internal/domain/ledger"
	"warebase/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the stock ledger: derived levels, movement
// history, manual adjustments and inter-warehouse transfers.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetLevels handles GET /stock/levels.
// Requires product, warehouse, or both; levels are always derived from
// movements, never read from a stored counter.
func (h *StockHandler) GetLevels(c *gin.Context) {
	ctx := c.Request.Context()

	productParam := c.Query("product")
	warehouseParam := c.Query("warehouse")

	switch {
	case productParam != "" && warehouseParam != "":
		productID, err := dto.ParseID("product", productParam)
		if err != nil {
			h.Error(c, err)
			return
		}
		warehouseID, err := dto.ParseID("warehouse", warehouseParam)
		if err != nil {
			h.Error(c, err)
			return
		}
		level, err := h.service.GetLevel(ctx, productID, warehouseID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.StockLevelResponse{
			ProductID:   productID.String(),
			WarehouseID: warehouseID.String(),
			Quantity:    level,
		})

	case warehouseParam != "":
		warehouseID, err := dto.ParseID("warehouse", warehouseParam)
		if err != nil {
			h.Error(c, err)
			return
		}
		levels, err := h.service.GetLevelsByWarehouse(ctx, warehouseID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, gin.H{"items": dto.FromLevels(levels)})

	case productParam != "":
		productID, err := dto.ParseID("product", productParam)
		if err != nil {
			h.Error(c, err)
			return
		}
		levels, err := h.service.GetLevelsByProduct(ctx, productID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, gin.H{"items": dto.FromLevels(levels)})

	default:
		h.Error(c, apperror.NewValidation("product or warehouse query parameter is required"))
	}
}

// GetMovements handles GET /stock/movements - movement history.
func (h *StockHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if productParam := c.Query("product"); productParam != "" {
		productID, err := dto.ParseID("product", productParam)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ProductID = &productID
	}
	if warehouseParam := c.Query("warehouse"); warehouseParam != "" {
		warehouseID, err := dto.ParseID("warehouse", warehouseParam)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.WarehouseID = &warehouseID
	}
	if directionParam := c.Query("direction"); directionParam != "" {
		direction := ledger.Direction(directionParam)
		filter.Direction = &direction
	}
	if reasonParam := c.Query("reason"); reasonParam != "" {
		reason := ledger.Reason(reasonParam)
		filter.Reason = &reason
	}

	var ok bool
	if filter.FromDate, ok = h.ParseTimeQuery(c, "from"); !ok {
		return
	}
	if filter.ToDate, ok = h.ParseTimeQuery(c, "to"); !ok {
		return
	}

	result, err := h.service.ListMovements(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromMovements(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// PostAdjustment handles POST /stock/adjustments.
func (h *StockHandler) PostAdjustment(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	input.PerformedBy = h.UserID(c)

	movement, err := h.service.PostAdjustment(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, dto.FromMovement(*movement))
}

// PostTransfer handles POST /stock/transfers.
func (h *StockHandler) PostTransfer(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	input.PerformedBy = h.UserID(c)

	transfer, err := h.service.PostTransfer(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, dto.FromTransfer(transfer))
}
