// Package purchase provides the PurchaseOrder document and its workflow.
// State machine: draft -(approve)-> approved -(receive)-> received;
// draft|approved -(cancel)-> cancelled. Received and cancelled are terminal.
package purchase

import (
	"context"
	"time"

	"warebase/internal/core/apperror"
	"warebase/internal/core/entity"
	"warebase/internal/core/id"
	"warebase/internal/core/types"
)

// Purchase order statuses.
const (
	StatusDraft     = "draft"
	StatusApproved  = "approved"
	StatusReceived  = "received"
	StatusCancelled = "cancelled"
)

// PurchaseOrder represents an order placed with a supplier.
// Receiving it is the single point where a purchase order affects stock.
type PurchaseOrder struct {
	entity.Document

	// SupplierID references the supplier the order is placed with
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// WarehouseID is the explicit target warehouse chosen at creation;
	// receive posts all movements against it.
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	ExpectedDeliveryDate *time.Time `db:"expected_delivery_date" json:"expectedDeliveryDate,omitempty"`
	ReceivedDate         *time.Time `db:"received_date" json:"receivedDate,omitempty"`

	// TotalAmount is always recomputed from lines, never settable.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: ordered goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one ordered product.
type Line struct {
	LineID    id.ID       `db:"line_id" json:"lineId"`
	LineNo    int         `db:"line_no" json:"lineNo"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`
	TotalCost types.Money `db:"total_cost" json:"totalCost"`
}

// NewPurchaseOrder creates a draft order for a supplier and target warehouse.
func NewPurchaseOrder(supplierID, warehouseID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:    entity.NewDocument(StatusDraft),
		SupplierID:  supplierID,
		WarehouseID: warehouseID,
		TotalAmount: types.Zero(),
		Lines:       make([]Line, 0),
	}
}

// AddLine adds a line and recalculates totals.
func (o *PurchaseOrder) AddLine(productID id.ID, quantity int64, unitCost types.Money) {
	line := Line{
		LineID:    id.New(),
		LineNo:    len(o.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		TotalCost: types.LineTotal(quantity, unitCost),
	}
	o.Lines = append(o.Lines, line)
	o.RecalculateTotals()
}

// SetLines replaces the table part and recalculates totals.
func (o *PurchaseOrder) SetLines(lines []Line) {
	o.Lines = make([]Line, 0, len(lines))
	for _, line := range lines {
		o.AddLine(line.ProductID, line.Quantity, line.UnitCost)
	}
}

// RecalculateTotals recomputes line totals and the order total from lines.
func (o *PurchaseOrder) RecalculateTotals() {
	total := types.Zero()
	for i := range o.Lines {
		o.Lines[i].LineNo = i + 1
		o.Lines[i].TotalCost = types.LineTotal(o.Lines[i].Quantity, o.Lines[i].UnitCost)
		total = total.Add(o.Lines[i].TotalCost)
	}
	o.TotalAmount = total
}

// Validate implements entity.Validatable.
func (o *PurchaseOrder) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(o.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
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
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- State machine gates ---

// CanUpdate permits edits only while draft.
func (o *PurchaseOrder) CanUpdate() error {
	if o.Status != StatusDraft {
		return apperror.NewBadRequest("Can only update draft purchase orders")
	}
	return nil
}

// CanApprove permits the draft -> approved transition.
func (o *PurchaseOrder) CanApprove() error {
	if o.Status != StatusDraft {
		return apperror.NewBadRequest("Can only approve draft purchase orders")
	}
	return nil
}

// CanReceive permits the approved -> received transition.
func (o *PurchaseOrder) CanReceive() error {
	if o.Status != StatusApproved {
		return apperror.NewBadRequest("Can only receive approved purchase orders")
	}
	return nil
}

// CanCancel permits cancellation from draft or approved.
func (o *PurchaseOrder) CanCancel() error {
	switch o.Status {
	case StatusReceived:
		return apperror.NewBadRequest("Cannot cancel received purchase orders")
	case StatusCancelled:
		return apperror.NewBadRequest("Purchase order is already cancelled")
	}
	return nil
}

// CanDelete forbids deleting received orders: their movements are
// ledger history that must not lose its reference document.
func (o *PurchaseOrder) CanDelete() error {
	if o.Status == StatusReceived {
		return apperror.NewBadRequest("Cannot delete received purchase orders")
	}
	return nil
}

// Snapshot returns a deep-enough copy for audit before/after payloads.
func (o *PurchaseOrder) Snapshot() *PurchaseOrder {
	clone := *o
	clone.Lines = make([]Line, len(o.Lines))
	copy(clone.Lines, o.Lines)
	return &clone
}
