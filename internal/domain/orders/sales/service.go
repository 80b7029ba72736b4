package sales

import (
	"context"
	"fmt"
	"time"

	"warebase/internal/core/id"
	"warebase/internal/core/numerator"
	"warebase/internal/core/tx"
	"warebase/internal/core/types"
	"warebase/internal/domain"
	"warebase/internal/domain/audit"
	"warebase/internal/domain/ledger"
	"warebase/pkg/logger"
)

// Directory provides the reference checks the workflow depends on.
// Absent, inactive and soft-deleted records all come back as NotFound.
type Directory interface {
	FindProduct(ctx context.Context, productID id.ID) (ledger.Ref, error)
	FindWarehouse(ctx context.Context, warehouseID id.ID) (ledger.Ref, error)
}

// Service drives sales orders through their lifecycle. Confirmation only
// verifies availability; fulfillment posts the out movements, with
// per-line sufficiency re-checked under lock so concurrent debits cannot
// drive a level negative.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	directory Directory
	numerator numerator.Generator
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new sales order service.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	directory Directory,
	gen numerator.Generator,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		directory: directory,
		numerator: gen,
		txManager: txManager,
		auditor:   auditor,
	}
}

// LineInput is one requested order line.
type LineInput struct {
	ProductID id.ID
	Quantity  int64
	UnitPrice types.Money
}

// CreateInput carries the fields settable at creation.
type CreateInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	WarehouseID   id.ID
	Notes         string
	Lines         []LineInput
}

// UpdateInput patches a draft order. Nil fields stay unchanged.
type UpdateInput struct {
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	WarehouseID   *id.ID
	Notes         *string
	Lines         []LineInput
}

// FulfillInput carries the optional fields of the fulfill transition.
type FulfillInput struct {
	FulfilledDate *time.Time
	Notes         string
}

// transition runs fn in a transaction and, on success, emits the audit
// record for the operation.
func (s *Service) transition(ctx context.Context, action audit.Action, before, after *SalesOrder, performedBy id.ID, fn func(ctx context.Context) error) error {
	if err := s.txManager.RunInTransaction(ctx, fn); err != nil {
		return err
	}

	entry := audit.Entry{
		Entity:       "SalesOrder",
		EntityID:     after.ID.String(),
		Action:       action,
		PayloadAfter: after,
		PerformedBy:  performedBy.String(),
	}
	if before != nil {
		entry.PayloadBefore = before
	}
	audit.Try(ctx, s.auditor, entry)
	return nil
}

// Create validates references, computes totals, assigns the order number
// and stores the order as draft.
func (s *Service) Create(ctx context.Context, input CreateInput, createdBy id.ID) (*SalesOrder, error) {
	if _, err := s.directory.FindWarehouse(ctx, input.WarehouseID); err != nil {
		return nil, err
	}
	for _, line := range input.Lines {
		if _, err := s.directory.FindProduct(ctx, line.ProductID); err != nil {
			return nil, err
		}
	}

	order := NewSalesOrder(input.CustomerName, input.WarehouseID)
	order.CustomerEmail = input.CustomerEmail
	order.CustomerPhone = input.CustomerPhone
	order.Notes = input.Notes
	order.CreatedBy = createdBy.String()
	order.UpdatedBy = createdBy.String()
	for _, line := range input.Lines {
		order.AddLine(line.ProductID, line.Quantity, line.UnitPrice)
	}

	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SO"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}
	order.Number = number

	err = s.transition(ctx, audit.ActionCreated, nil, order, createdBy, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, order.ID, order.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales order created",
		"id", order.ID,
		"number", order.Number,
		"customer", order.CustomerName,
	)

	return order, nil
}

// GetByID retrieves an order with lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*SalesOrder, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	order.Lines = lines

	return order, nil
}

// Update patches a draft order, re-validating any changed references and
// recomputing totals.
func (s *Service) Update(ctx context.Context, orderID id.ID, input UpdateInput, updatedBy id.ID) (*SalesOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanUpdate(); err != nil {
		return nil, err
	}
	before := order.Snapshot()

	if input.WarehouseID != nil {
		if _, err := s.directory.FindWarehouse(ctx, *input.WarehouseID); err != nil {
			return nil, err
		}
		order.WarehouseID = *input.WarehouseID
	}
	if input.Lines != nil {
		for _, line := range input.Lines {
			if _, err := s.directory.FindProduct(ctx, line.ProductID); err != nil {
				return nil, err
			}
		}
		lines := make([]Line, 0, len(input.Lines))
		for _, line := range input.Lines {
			lines = append(lines, Line{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
		}
		order.SetLines(lines)
	}
	if input.CustomerName != nil {
		order.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		order.CustomerEmail = *input.CustomerEmail
	}
	if input.CustomerPhone != nil {
		order.CustomerPhone = *input.CustomerPhone
	}
	if input.Notes != nil {
		order.Notes = *input.Notes
	}
	order.UpdatedBy = updatedBy.String()

	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.transition(ctx, audit.ActionUpdated, before, order, updatedBy, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, order.ID, order.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// orderLines resolves product names for error messages and builds the
// availability/posting view of the table part.
func (s *Service) orderLines(ctx context.Context, order *SalesOrder) ([]ledger.OrderLine, error) {
	lines := make([]ledger.OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		ref, err := s.directory.FindProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ledger.OrderLine{
			ProductID:   line.ProductID,
			ProductName: ref.Name,
			Quantity:    line.Quantity,
		})
	}
	return lines, nil
}

// Confirm transitions draft -> confirmed after verifying that every line
// can be satisfied from the warehouse. No movements are posted and no
// stock is reserved; the check can race with other debits, which is why
// fulfillment re-checks under lock.
func (s *Service) Confirm(ctx context.Context, orderID id.ID, notes string, confirmedBy id.ID) (*SalesOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanConfirm(); err != nil {
		return nil, err
	}
	before := order.Snapshot()

	lines, err := s.orderLines(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.CheckAvailability(ctx, order.WarehouseID, lines); err != nil {
		return nil, err
	}

	order.Status = StatusConfirmed
	order.AppendNote("Confirmed", notes)
	order.UpdatedBy = confirmedBy.String()

	err = s.transition(ctx, audit.ActionConfirmed, before, order, confirmedBy, func(ctx context.Context) error {
		return s.repo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales order confirmed", "id", order.ID, "number", order.Number)
	return order, nil
}

// Fulfill transitions confirmed -> fulfilled and posts one out movement
// per line from the order's source warehouse. The status change and the
// ledger appends commit as one unit; each line's sufficiency is
// re-checked under the pair lock, so a shortage that appeared after
// confirmation fails the whole operation with zero movements posted.
func (s *Service) Fulfill(ctx context.Context, orderID id.ID, input FulfillInput, fulfilledBy id.ID) (*SalesOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanFulfill(); err != nil {
		return nil, err
	}
	before := order.Snapshot()

	lines, err := s.orderLines(ctx, order)
	if err != nil {
		return nil, err
	}

	fulfilledDate := time.Now().UTC()
	if input.FulfilledDate != nil {
		fulfilledDate = *input.FulfilledDate
	}
	order.Status = StatusFulfilled
	order.FulfilledDate = &fulfilledDate
	order.AppendNote("Fulfilled", input.Notes)
	order.UpdatedBy = fulfilledBy.String()

	err = s.transition(ctx, audit.ActionFulfilled, before, order, fulfilledBy, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		_, err := s.ledger.PostForOrderLines(ctx, ledger.OrderPosting{
			RefKind:     ledger.RefSalesOrder,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			WarehouseID: order.WarehouseID,
			Direction:   ledger.DirectionOut,
			Reason:      ledger.ReasonSale,
			Notes:       fmt.Sprintf("Sold via sales order %s", order.Number),
			PerformedBy: fulfilledBy,
			Lines:       lines,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales order fulfilled",
		"id", order.ID,
		"number", order.Number,
		"lines", len(order.Lines),
	)

	return order, nil
}

// Cancel transitions draft or confirmed -> cancelled. Fulfilled orders
// cannot be cancelled: the goods have already left stock.
func (s *Service) Cancel(ctx context.Context, orderID id.ID, cancelledBy id.ID) (*SalesOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanCancel(); err != nil {
		return nil, err
	}
	before := order.Snapshot()

	order.Status = StatusCancelled
	order.UpdatedBy = cancelledBy.String()

	err = s.transition(ctx, audit.ActionCancelled, before, order, cancelledBy, func(ctx context.Context) error {
		return s.repo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// Delete hard-deletes an order unless it has reached fulfilled.
func (s *Service) Delete(ctx context.Context, orderID id.ID, deletedBy id.ID) error {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := order.CanDelete(); err != nil {
		return err
	}

	return s.transition(ctx, audit.ActionDeleted, order.Snapshot(), order, deletedBy, func(ctx context.Context) error {
		return s.repo.Delete(ctx, orderID)
	})
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesOrder], error) {
	return s.repo.List(ctx, filter)
}
