package dto

import (
	"time"

	"warebase/internal/domain/ledger"
)

// --- Level DTOs ---

// StockLevelResponse is one derived (product, warehouse) level.
type StockLevelResponse struct {
	ProductID   string `json:"productId"`
	WarehouseID string `json:"warehouseId"`
	Quantity    int64  `json:"quantity"`
}

// FromLevel creates response DTO from a derived level.
func FromLevel(l ledger.Level) StockLevelResponse {
	return StockLevelResponse{
		ProductID:   l.ProductID.String(),
		WarehouseID: l.WarehouseID.String(),
		Quantity:    l.Quantity,
	}
}

// FromLevels maps a level slice.
func FromLevels(levels []ledger.Level) []StockLevelResponse {
	out := make([]StockLevelResponse, len(levels))
	for i, l := range levels {
		out[i] = FromLevel(l)
	}
	return out
}

// --- Movement DTOs ---

// MovementResponse is one ledger entry.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	WarehouseID string    `json:"warehouseId"`
	Direction   string    `json:"direction"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason"`
	RefKind     string    `json:"refKind,omitempty"`
	RefID       string    `json:"refId,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	PerformedBy string    `json:"performedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromMovement creates response DTO from a movement.
func FromMovement(m ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		WarehouseID: m.WarehouseID.String(),
		Direction:   string(m.Direction),
		Quantity:    m.Quantity,
		Reason:      string(m.Reason),
		RefKind:     string(m.RefKind),
		RefID:       m.RefID.String(),
		Notes:       m.Notes,
		PerformedBy: m.PerformedBy.String(),
		CreatedAt:   m.CreatedAt,
	}
}

// FromMovements maps a movement slice.
func FromMovements(movements []ledger.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = FromMovement(m)
	}
	return out
}

// --- Adjustment ---

// CreateAdjustmentRequest posts a manual stock correction.
// Direction defaults to "in" when omitted.
type CreateAdjustmentRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	WarehouseID string `json:"warehouseId" binding:"required"`
	Direction   string `json:"direction" binding:"omitempty,oneof=in out"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
	Notes       string `json:"notes" binding:"required"`
}

// ToInput converts the request to a service input.
func (r *CreateAdjustmentRequest) ToInput() (ledger.AdjustmentInput, error) {
	productID, err := ParseID("productId", r.ProductID)
	if err != nil {
		return ledger.AdjustmentInput{}, err
	}
	warehouseID, err := ParseID("warehouseId", r.WarehouseID)
	if err != nil {
		return ledger.AdjustmentInput{}, err
	}

	return ledger.AdjustmentInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Direction:   ledger.Direction(r.Direction),
		Quantity:    r.Quantity,
		Notes:       r.Notes,
	}, nil
}

// --- Transfer ---

// CreateTransferRequest moves stock between two warehouses atomically.
type CreateTransferRequest struct {
	ProductID       string `json:"productId" binding:"required"`
	FromWarehouseID string `json:"fromWarehouseId" binding:"required"`
	ToWarehouseID   string `json:"toWarehouseId" binding:"required"`
	Quantity        int64  `json:"quantity" binding:"required,gt=0"`
	Notes           string `json:"notes"`
}

// ToInput converts the request to a service input.
func (r *CreateTransferRequest) ToInput() (ledger.TransferInput, error) {
	productID, err := ParseID("productId", r.ProductID)
	if err != nil {
		return ledger.TransferInput{}, err
	}
	fromID, err := ParseID("fromWarehouseId", r.FromWarehouseID)
	if err != nil {
		return ledger.TransferInput{}, err
	}
	toID, err := ParseID("toWarehouseId", r.ToWarehouseID)
	if err != nil {
		return ledger.TransferInput{}, err
	}

	return ledger.TransferInput{
		ProductID:       productID,
		FromWarehouseID: fromID,
		ToWarehouseID:   toID,
		Quantity:        r.Quantity,
		Notes:           r.Notes,
	}, nil
}

// TransferResponse returns both halves of a posted transfer.
type TransferResponse struct {
	Outbound MovementResponse `json:"outbound"`
	Inbound  MovementResponse `json:"inbound"`
}

// FromTransfer creates response DTO from a posted transfer.
func FromTransfer(t *ledger.Transfer) TransferResponse {
	return TransferResponse{
		Outbound: FromMovement(t.Outbound),
		Inbound:  FromMovement(t.Inbound),
	}
}
