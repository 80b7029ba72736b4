package sales

import (
	"context"
	"time"

	"warebase/internal/core/id"
	"warebase/internal/domain"
)

// Repository defines persistence for sales orders.
type Repository interface {
	// Create inserts the order header
	Create(ctx context.Context, order *SalesOrder) error

	// GetByID retrieves the order header (lines loaded separately)
	GetByID(ctx context.Context, orderID id.ID) (*SalesOrder, error)

	// GetByNumber retrieves the order by its unique number
	GetByNumber(ctx context.Context, number string) (*SalesOrder, error)

	// Update modifies the header with optimistic locking
	Update(ctx context.Context, order *SalesOrder) error

	// Delete hard-deletes the order and its lines
	Delete(ctx context.Context, orderID id.ID) error

	// GetLines retrieves the table part ordered by line_no
	GetLines(ctx context.Context, orderID id.ID) ([]Line, error)

	// SaveLines replaces the table part
	SaveLines(ctx context.Context, orderID id.ID, lines []Line) error

	// List retrieves orders with filtering and pagination
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesOrder], error)
}

// ListFilter extends the common filter with order-specific criteria.
type ListFilter struct {
	domain.ListFilter

	Status       *string
	CustomerName *string
	DateFrom     *time.Time
	DateTo       *time.Time
}
