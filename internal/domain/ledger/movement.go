// Package ledger provides the stock ledger: an append-only log of stock
// movements and the single authority for computing quantity on hand.
package ledger

import (
	"context"
	"time"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Reason classifies why a movement happened.
type Reason string

const (
	ReasonPurchase   Reason = "purchase"
	ReasonSale       Reason = "sale"
	ReasonAdjustment Reason = "adjustment"
	ReasonTransfer   Reason = "transfer"
)

// RefKind identifies the document type a movement traces back to.
type RefKind string

const (
	RefPurchaseOrder RefKind = "purchase_order"
	RefSalesOrder    RefKind = "sales_order"
	RefAdjustment    RefKind = "adjustment"
	RefTransfer      RefKind = "transfer"
)

// Movement is one atomic in/out quantity event. Movements are immutable:
// they are appended exactly once per ledger-affecting event and never
// updated or deleted.
type Movement struct {
	ID          id.ID     `db:"id" json:"id"`
	ProductID   id.ID     `db:"product_id" json:"productId"`
	WarehouseID id.ID     `db:"warehouse_id" json:"warehouseId"`
	Direction   Direction `db:"direction" json:"direction"`
	Quantity    int64     `db:"quantity" json:"quantity"`
	Reason      Reason    `db:"reason" json:"reason"`

	// RefKind/RefID trace the movement to the order or transfer that
	// caused it. Empty for movements with no reference document.
	RefKind RefKind `db:"ref_kind" json:"refKind,omitempty"`
	RefID   id.ID   `db:"ref_id" json:"refId,omitempty"`

	Notes       string    `db:"notes" json:"notes,omitempty"`
	PerformedBy id.ID     `db:"performed_by" json:"performedBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement with generated ID and timestamp.
func NewMovement(productID, warehouseID id.ID, direction Direction, quantity int64, reason Reason) Movement {
	return Movement{
		ID:          id.New(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Direction:   direction,
		Quantity:    quantity,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
}

// Signed returns the quantity with sign: positive for in, negative for out.
func (m *Movement) Signed() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}

// Validate checks movement invariants.
func (m *Movement) Validate(ctx context.Context) error {
	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "productId")
	}
	if id.IsNil(m.WarehouseID) {
		return apperror.NewValidation("warehouse is required").WithDetail("field", "warehouseId")
	}
	if m.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	switch m.Direction {
	case DirectionIn, DirectionOut:
	default:
		return apperror.NewValidation("direction must be in or out").WithDetail("field", "direction")
	}
	switch m.Reason {
	case ReasonPurchase, ReasonSale, ReasonAdjustment, ReasonTransfer:
	default:
		return apperror.NewValidation("unknown movement reason").WithDetail("field", "reason")
	}
	if id.IsNil(m.PerformedBy) {
		return apperror.NewValidation("performedBy is required").WithDetail("field", "performedBy")
	}
	return nil
}

// Level is the derived quantity on hand for a (product, warehouse) pair.
// Levels are never stored; they are aggregated from movements on demand.
type Level struct {
	ProductID   id.ID `db:"product_id" json:"productId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`
	Quantity    int64 `db:"quantity" json:"quantity"`
}

// Transfer is the pair of movements produced by an inter-warehouse transfer.
type Transfer struct {
	Outbound Movement `json:"outbound"`
	Inbound  Movement `json:"inbound"`
}
