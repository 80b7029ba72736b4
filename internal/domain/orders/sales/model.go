// Package sales provides the SalesOrder document and its workflow.
// State machine: draft -(confirm)-> confirmed -(fulfill)-> fulfilled;
// draft|confirmed -(cancel)-> cancelled. Fulfilled and cancelled are
// terminal. Confirmation checks availability without touching stock;
// fulfillment is the single point where a sales order affects stock.
package sales

import (
	"context"
	"time"

	"warebase/internal/core/apperror"
	"warebase/internal/core/entity"
	"warebase/internal/core/id"
	"warebase/internal/core/types"
)

// Sales order statuses.
const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusFulfilled = "fulfilled"
	StatusCancelled = "cancelled"
)

// SalesOrder represents an outbound order for a customer. Customer
// contact details are captured on the order itself rather than in a
// separate catalog.
type SalesOrder struct {
	entity.Document

	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerEmail string `db:"customer_email" json:"customerEmail,omitempty"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone,omitempty"`

	// WarehouseID is the explicit source warehouse chosen at creation;
	// confirmation checks and fulfillment posts against it.
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	FulfilledDate *time.Time `db:"fulfilled_date" json:"fulfilledDate,omitempty"`

	// TotalAmount is always recomputed from lines, never settable.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: sold goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one sold product.
type Line struct {
	LineID     id.ID       `db:"line_id" json:"lineId"`
	LineNo     int         `db:"line_no" json:"lineNo"`
	ProductID  id.ID       `db:"product_id" json:"productId"`
	Quantity   int64       `db:"quantity" json:"quantity"`
	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`
}

// NewSalesOrder creates a draft order for a customer and source warehouse.
func NewSalesOrder(customerName string, warehouseID id.ID) *SalesOrder {
	return &SalesOrder{
		Document:     entity.NewDocument(StatusDraft),
		CustomerName: customerName,
		WarehouseID:  warehouseID,
		TotalAmount:  types.Zero(),
		Lines:        make([]Line, 0),
	}
}

// AddLine adds a line and recalculates totals.
func (o *SalesOrder) AddLine(productID id.ID, quantity int64, unitPrice types.Money) {
	line := Line{
		LineID:     id.New(),
		LineNo:     len(o.Lines) + 1,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: types.LineTotal(quantity, unitPrice),
	}
	o.Lines = append(o.Lines, line)
	o.RecalculateTotals()
}

// SetLines replaces the table part and recalculates totals.
func (o *SalesOrder) SetLines(lines []Line) {
	o.Lines = make([]Line, 0, len(lines))
	for _, line := range lines {
		o.AddLine(line.ProductID, line.Quantity, line.UnitPrice)
	}
}

// RecalculateTotals recomputes line totals and the order total from lines.
func (o *SalesOrder) RecalculateTotals() {
	total := types.Zero()
	for i := range o.Lines {
		o.Lines[i].LineNo = i + 1
		o.Lines[i].TotalPrice = types.LineTotal(o.Lines[i].Quantity, o.Lines[i].UnitPrice)
		total = total.Add(o.Lines[i].TotalPrice)
	}
	o.TotalAmount = total
}

// Validate implements entity.Validatable.
func (o *SalesOrder) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if o.CustomerName == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}

	if id.IsNil(o.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range o.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- State machine gates ---

// CanUpdate permits edits only while draft.
func (o *SalesOrder) CanUpdate() error {
	if o.Status != StatusDraft {
		return apperror.NewBadRequest("Can only update draft sales orders")
	}
	return nil
}

// CanConfirm permits the draft -> confirmed transition.
func (o *SalesOrder) CanConfirm() error {
	if o.Status != StatusDraft {
		return apperror.NewBadRequest("Can only confirm draft sales orders")
	}
	return nil
}

// CanFulfill permits the confirmed -> fulfilled transition.
func (o *SalesOrder) CanFulfill() error {
	if o.Status != StatusConfirmed {
		return apperror.NewBadRequest("Can only fulfill confirmed sales orders")
	}
	return nil
}

// CanCancel permits cancellation from draft or confirmed.
func (o *SalesOrder) CanCancel() error {
	switch o.Status {
	case StatusFulfilled:
		return apperror.NewBadRequest("Cannot cancel fulfilled sales orders")
	case StatusCancelled:
		return apperror.NewBadRequest("Sales order is already cancelled")
	}
	return nil
}

// CanDelete forbids deleting fulfilled orders: their movements are
// ledger history that must not lose its reference document.
func (o *SalesOrder) CanDelete() error {
	if o.Status == StatusFulfilled {
		return apperror.NewBadRequest("Cannot delete fulfilled sales orders")
	}
	return nil
}

// Snapshot returns a deep-enough copy for audit before/after payloads.
func (o *SalesOrder) Snapshot() *SalesOrder {
	clone := *o
	clone.Lines = make([]Line, len(o.Lines))
	copy(clone.Lines, o.Lines)
	return &clone
}
