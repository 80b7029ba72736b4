package purchase

import (
	"context"
	"time"

	"warebase/internal/core/id"
	"warebase/internal/domain"
)

// Repository defines persistence for purchase orders.
type Repository interface {
	// Create inserts the order header
	Create(ctx context.Context, order *PurchaseOrder) error

	// GetByID retrieves the order header (lines loaded separately)
	GetByID(ctx context.Context, orderID id.ID) (*PurchaseOrder, error)

	// GetByNumber retrieves the order by its unique number
	GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error)

	// Update modifies the header with optimistic locking
	Update(ctx context.Context, order *PurchaseOrder) error

	// Delete hard-deletes the order and its lines
	Delete(ctx context.Context, orderID id.ID) error

	// GetLines retrieves the table part ordered by line_no
	GetLines(ctx context.Context, orderID id.ID) ([]Line, error)

	// SaveLines replaces the table part
	SaveLines(ctx context.Context, orderID id.ID, lines []Line) error

	// List retrieves orders with filtering and pagination
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error)
}

// ListFilter extends the common filter with order-specific criteria.
type ListFilter struct {
	domain.ListFilter

	Status     *string
	SupplierID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
}
