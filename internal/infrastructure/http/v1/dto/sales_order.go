package dto

import (
	"time"

	"warebase/internal/core/types"
	"warebase/internal/domain/orders/sales"
)

// --- Request DTOs ---

// SalesOrderLineRequest is one requested line.
type SalesOrderLineRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int64   `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unitPrice" binding:"min=0"`
}

func salesLineInputs(lines []SalesOrderLineRequest) ([]sales.LineInput, error) {
	inputs := make([]sales.LineInput, 0, len(lines))
	for _, line := range lines {
		productID, err := ParseID("lines.productId", line.ProductID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, sales.LineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitPrice: types.NewMoney(line.UnitPrice),
		})
	}
	return inputs, nil
}

// CreateSalesOrderRequest creates a draft sales order.
type CreateSalesOrderRequest struct {
	CustomerName  string                  `json:"customerName" binding:"required"`
	CustomerEmail string                  `json:"customerEmail"`
	CustomerPhone string                  `json:"customerPhone"`
	WarehouseID   string                  `json:"warehouseId" binding:"required"`
	Notes         string                  `json:"notes"`
	Lines         []SalesOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts the request to a service input.
func (r *CreateSalesOrderRequest) ToInput() (sales.CreateInput, error) {
	warehouseID, err := ParseID("warehouseId", r.WarehouseID)
	if err != nil {
		return sales.CreateInput{}, err
	}
	lines, err := salesLineInputs(r.Lines)
	if err != nil {
		return sales.CreateInput{}, err
	}

	return sales.CreateInput{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		WarehouseID:   warehouseID,
		Notes:         r.Notes,
		Lines:         lines,
	}, nil
}

// UpdateSalesOrderRequest patches a draft order. Absent fields stay
// unchanged; lines, when present, replace the table part wholesale.
type UpdateSalesOrderRequest struct {
	CustomerName  *string                 `json:"customerName"`
	CustomerEmail *string                 `json:"customerEmail"`
	CustomerPhone *string                 `json:"customerPhone"`
	WarehouseID   *string                 `json:"warehouseId"`
	Notes         *string                 `json:"notes"`
	Lines         []SalesOrderLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// ToInput converts the request to a service input.
func (r *UpdateSalesOrderRequest) ToInput() (sales.UpdateInput, error) {
	input := sales.UpdateInput{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		Notes:         r.Notes,
	}

	if r.WarehouseID != nil {
		warehouseID, err := ParseID("warehouseId", *r.WarehouseID)
		if err != nil {
			return sales.UpdateInput{}, err
		}
		input.WarehouseID = &warehouseID
	}
	if r.Lines != nil {
		lines, err := salesLineInputs(r.Lines)
		if err != nil {
			return sales.UpdateInput{}, err
		}
		input.Lines = lines
	}

	return input, nil
}

// ConfirmSalesOrderRequest carries the optional confirmation note.
type ConfirmSalesOrderRequest struct {
	Notes string `json:"notes"`
}

// FulfillSalesOrderRequest carries the optional fulfill fields.
type FulfillSalesOrderRequest struct {
	FulfilledDate *time.Time `json:"fulfilledDate"`
	Notes         string     `json:"notes"`
}

// ToInput converts the request to a service input.
func (r *FulfillSalesOrderRequest) ToInput() sales.FulfillInput {
	return sales.FulfillInput{
		FulfilledDate: r.FulfilledDate,
		Notes:         r.Notes,
	}
}

// --- Response DTOs ---

// SalesOrderLineResponse is one order line.
type SalesOrderLineResponse struct {
	LineID     string      `json:"lineId"`
	LineNo     int         `json:"lineNo"`
	ProductID  string      `json:"productId"`
	Quantity   int64       `json:"quantity"`
	UnitPrice  types.Money `json:"unitPrice"`
	TotalPrice types.Money `json:"totalPrice"`
}

// SalesOrderResponse is the response body for a sales order.
type SalesOrderResponse struct {
	ID            string                   `json:"id"`
	Number        string                   `json:"number"`
	Date          time.Time                `json:"date"`
	Status        string                   `json:"status"`
	CustomerName  string                   `json:"customerName"`
	CustomerEmail string                   `json:"customerEmail,omitempty"`
	CustomerPhone string                   `json:"customerPhone,omitempty"`
	WarehouseID   string                   `json:"warehouseId"`
	FulfilledDate *time.Time               `json:"fulfilledDate,omitempty"`
	TotalAmount   types.Money              `json:"totalAmount"`
	Notes         string                   `json:"notes,omitempty"`
	Version       int                      `json:"version"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
	Lines         []SalesOrderLineResponse `json:"lines"`
}

// FromSalesOrder creates response DTO from domain entity.
func FromSalesOrder(o *sales.SalesOrder) *SalesOrderResponse {
	lines := make([]SalesOrderLineResponse, len(o.Lines))
	for i, line := range o.Lines {
		lines[i] = SalesOrderLineResponse{
			LineID:     line.LineID.String(),
			LineNo:     line.LineNo,
			ProductID:  line.ProductID.String(),
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
		}
	}

	return &SalesOrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		Date:          o.Date,
		Status:        o.Status,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		WarehouseID:   o.WarehouseID.String(),
		FulfilledDate: o.FulfilledDate,
		TotalAmount:   o.TotalAmount,
		Notes:         o.Notes,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Lines:         lines,
	}
}
