package dto

import (
	"time"

	"warebase/internal/core/types"
	"warebase/internal/domain/orders/purchase"
)

// --- Request DTOs ---

// PurchaseOrderLineRequest is one requested line.
type PurchaseOrderLineRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int64   `json:"quantity" binding:"required,gt=0"`
	UnitCost  float64 `json:"unitCost" binding:"min=0"`
}

func purchaseLineInputs(lines []PurchaseOrderLineRequest) ([]purchase.LineInput, error) {
	inputs := make([]purchase.LineInput, 0, len(lines))
	for _, line := range lines {
		productID, err := ParseID("lines.productId", line.ProductID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, purchase.LineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitCost:  types.NewMoney(line.UnitCost),
		})
	}
	return inputs, nil
}

// CreatePurchaseOrderRequest creates a draft purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID           string                     `json:"supplierId" binding:"required"`
	WarehouseID          string                     `json:"warehouseId" binding:"required"`
	ExpectedDeliveryDate *time.Time                 `json:"expectedDeliveryDate"`
	Notes                string                     `json:"notes"`
	Lines                []PurchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts the request to a service input.
func (r *CreatePurchaseOrderRequest) ToInput() (purchase.CreateInput, error) {
	supplierID, err := ParseID("supplierId", r.SupplierID)
	if err != nil {
		return purchase.CreateInput{}, err
	}
	warehouseID, err := ParseID("warehouseId", r.WarehouseID)
	if err != nil {
		return purchase.CreateInput{}, err
	}
	lines, err := purchaseLineInputs(r.Lines)
	if err != nil {
		return purchase.CreateInput{}, err
	}

	return purchase.CreateInput{
		SupplierID:           supplierID,
		WarehouseID:          warehouseID,
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		Notes:                r.Notes,
		Lines:                lines,
	}, nil
}

// UpdatePurchaseOrderRequest patches a draft order. Absent fields stay
// unchanged; lines, when present, replace the table part wholesale.
type UpdatePurchaseOrderRequest struct {
	SupplierID           *string                    `json:"supplierId"`
	WarehouseID          *string                    `json:"warehouseId"`
	ExpectedDeliveryDate *time.Time                 `json:"expectedDeliveryDate"`
	Notes                *string                    `json:"notes"`
	Lines                []PurchaseOrderLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// ToInput converts the request to a service input.
func (r *UpdatePurchaseOrderRequest) ToInput() (purchase.UpdateInput, error) {
	input := purchase.UpdateInput{
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		Notes:                r.Notes,
	}

	if r.SupplierID != nil {
		supplierID, err := ParseID("supplierId", *r.SupplierID)
		if err != nil {
			return purchase.UpdateInput{}, err
		}
		input.SupplierID = &supplierID
	}
	if r.WarehouseID != nil {
		warehouseID, err := ParseID("warehouseId", *r.WarehouseID)
		if err != nil {
			return purchase.UpdateInput{}, err
		}
		input.WarehouseID = &warehouseID
	}
	if r.Lines != nil {
		lines, err := purchaseLineInputs(r.Lines)
		if err != nil {
			return purchase.UpdateInput{}, err
		}
		input.Lines = lines
	}

	return input, nil
}

// ApprovePurchaseOrderRequest carries the optional approval note.
type ApprovePurchaseOrderRequest struct {
	Notes string `json:"notes"`
}

// ReceivePurchaseOrderRequest carries the optional receive fields.
type ReceivePurchaseOrderRequest struct {
	ReceivedDate *time.Time `json:"receivedDate"`
	Notes        string     `json:"notes"`
}

// ToInput converts the request to a service input.
func (r *ReceivePurchaseOrderRequest) ToInput() purchase.ReceiveInput {
	return purchase.ReceiveInput{
		ReceivedDate: r.ReceivedDate,
		Notes:        r.Notes,
	}
}

// --- Response DTOs ---

// PurchaseOrderLineResponse is one order line.
type PurchaseOrderLineResponse struct {
	LineID    string      `json:"lineId"`
	LineNo    int         `json:"lineNo"`
	ProductID string      `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitCost  types.Money `json:"unitCost"`
	TotalCost types.Money `json:"totalCost"`
}

// PurchaseOrderResponse is the response body for a purchase order.
type PurchaseOrderResponse struct {
	ID                   string                      `json:"id"`
	Number               string                      `json:"number"`
	Date                 time.Time                   `json:"date"`
	Status               string                      `json:"status"`
	SupplierID           string                      `json:"supplierId"`
	WarehouseID          string                      `json:"warehouseId"`
	ExpectedDeliveryDate *time.Time                  `json:"expectedDeliveryDate,omitempty"`
	ReceivedDate         *time.Time                  `json:"receivedDate,omitempty"`
	TotalAmount          types.Money                 `json:"totalAmount"`
	Notes                string                      `json:"notes,omitempty"`
	Version              int                         `json:"version"`
	CreatedAt            time.Time                   `json:"createdAt"`
	UpdatedAt            time.Time                   `json:"updatedAt"`
	Lines                []PurchaseOrderLineResponse `json:"lines"`
}

// FromPurchaseOrder creates response DTO from domain entity.
func FromPurchaseOrder(o *purchase.PurchaseOrder) *PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(o.Lines))
	for i, line := range o.Lines {
		lines[i] = PurchaseOrderLineResponse{
			LineID:    line.LineID.String(),
			LineNo:    line.LineNo,
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			TotalCost: line.TotalCost,
		}
	}

	return &PurchaseOrderResponse{
		ID:                   o.ID.String(),
		Number:               o.Number,
		Date:                 o.Date,
		Status:               o.Status,
		SupplierID:           o.SupplierID.String(),
		WarehouseID:          o.WarehouseID.String(),
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ReceivedDate:         o.ReceivedDate,
		TotalAmount:          o.TotalAmount,
		Notes:                o.Notes,
		Version:              o.Version,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Lines:                lines,
	}
}
