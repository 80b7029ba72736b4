package ledger

import (
	"context"
	"time"

	"warebase/internal/core/id"
	"warebase/internal/domain"
)

// Repository defines storage operations for the ledger.
// The backing table is append-only: there is no update or delete.
type Repository interface {
	// Append batch inserts movements. All-or-nothing within the ambient
	// transaction.
	Append(ctx context.Context, movements []Movement) error

	// GetLevel returns sum(in) - sum(out) for the pair. No movements means 0.
	GetLevel(ctx context.Context, productID, warehouseID id.ID) (int64, error)

	// GetLevelLocked returns the level after taking a transaction-scoped
	// lock on the (product, warehouse) pair. Must be called inside a
	// transaction; the lock serializes concurrent check-then-append
	// sequences so two debits cannot both pass on the same stock.
	GetLevelLocked(ctx context.Context, productID, warehouseID id.ID) (int64, error)

	// GetLevelsByWarehouse returns one row per product with at least one
	// movement in the warehouse.
	GetLevelsByWarehouse(ctx context.Context, warehouseID id.ID) ([]Level, error)

	// GetLevelsByProduct returns one row per warehouse with at least one
	// movement of the product.
	GetLevelsByProduct(ctx context.Context, productID id.ID) ([]Level, error)

	// ListMovements returns movement history with filtering and pagination.
	ListMovements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error)

	// GetMovementsByRef returns all movements traced to a reference document.
	GetMovementsByRef(ctx context.Context, kind RefKind, refID id.ID) ([]Movement, error)
}

// MovementFilter for movement history queries.
type MovementFilter struct {
	ProductID   *id.ID
	WarehouseID *id.ID
	Direction   *Direction
	Reason      *Reason
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}
