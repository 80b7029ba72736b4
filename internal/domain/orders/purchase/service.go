package purchase

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
	FindSupplier(ctx context.Context, supplierID id.ID) (ledger.Ref, error)
}

// Service drives purchase orders through their lifecycle. Transitions that
// post movements commit the status change and the ledger appends as one
// transaction; every transition emits an audit record.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	directory Directory
	numerator numerator.Generator
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new purchase order service.
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
	UnitCost  types.Money
}

// CreateInput carries the fields settable at creation.
type CreateInput struct {
	SupplierID           id.ID
	WarehouseID          id.ID
	ExpectedDeliveryDate *time.Time
	Notes                string
	Lines                []LineInput
}

// UpdateInput patches a draft order. Nil fields stay unchanged.
type UpdateInput struct {
	SupplierID           *id.ID
	WarehouseID          *id.ID
	ExpectedDeliveryDate *time.Time
	Notes                *string
	Lines                []LineInput
}

// ReceiveInput carries the optional fields of the receive transition.
type ReceiveInput struct {
	ReceivedDate *time.Time
	Notes        string
}

// transition runs fn in a transaction and, on success, emits the audit
// record for the operation. Routing every mutation through here makes
// audit coverage structural rather than per-call-site.
func (s *Service) transition(ctx context.Context, action audit.Action, before, after *PurchaseOrder, performedBy id.ID, fn func(ctx context.Context) error) error {
	if err := s.txManager.RunInTransaction(ctx, fn); err != nil {
		return err
	}

	entry := audit.Entry{
		Entity:       "PurchaseOrder",
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

// validateRefs checks supplier, warehouse and every line product.
func (s *Service) validateRefs(ctx context.Context, supplierID, warehouseID id.ID, lines []LineInput) error {
	if _, err := s.directory.FindSupplier(ctx, supplierID); err != nil {
		return err
	}
	if _, err := s.directory.FindWarehouse(ctx, warehouseID); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := s.directory.FindProduct(ctx, line.ProductID); err != nil {
			return err
		}
	}
	return nil
}

// Create validates references, computes totals, assigns the order number
// and stores the order as draft.
func (s *Service) Create(ctx context.Context, input CreateInput, createdBy id.ID) (*PurchaseOrder, error) {
	if err := s.validateRefs(ctx, input.SupplierID, input.WarehouseID, input.Lines); err != nil {
		return nil, err
	}

	order := NewPurchaseOrder(input.SupplierID, input.WarehouseID)
	order.ExpectedDeliveryDate = input.ExpectedDeliveryDate
	order.Notes = input.Notes
	order.CreatedBy = createdBy.String()
	order.UpdatedBy = createdBy.String()
	for _, line := range input.Lines {
		order.AddLine(line.ProductID, line.Quantity, line.UnitCost)
	}

	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PO"), nil, time.Now())
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

	logger.Info(ctx, "purchase order created",
		"id", order.ID,
		"number", order.Number,
		"supplier_id", order.SupplierID,
	)

	return order, nil
}

// GetByID retrieves an order with lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
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
func (s *Service) Update(ctx context.Context, orderID id.ID, input UpdateInput, updatedBy id.ID) (*PurchaseOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanUpdate(); err != nil {
		return nil, err
	}
	before := order.Snapshot()

	if input.SupplierID != nil {
		if _, err := s.directory.FindSupplier(ctx, *input.SupplierID); err != nil {
			return nil, err
		}
		order.SupplierID = *input.SupplierID
	}
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
			lines = append(lines, Line{ProductID: line.ProductID, Quantity: line.Quantity, UnitCost: line.UnitCost})
		}
		order.SetLines(lines)
	}
	if input.ExpectedDeliveryDate != nil {
		order.ExpectedDeliveryDate = input.ExpectedDeliveryDate
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

// Approve transitions draft -> approved. Notes are appended to the note
// log, never replacing it.
func (s *Service) Approve(ctx context.Context, orderID id.ID, notes string, approvedBy id.ID) (*PurchaseOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanApprove(); err != nil {
		return nil, err
	}
	before := order.Snapshot()

	order.Status = StatusApproved
	order.AppendNote("Approved", notes)
	order.UpdatedBy = approvedBy.String()

	err = s.transition(ctx, audit.ActionApproved, before, order, approvedBy, func(ctx context.Context) error {
		return s.repo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order approved", "id", order.ID, "number", order.Number)
	return order, nil
}

// Receive transitions approved -> received and posts one in movement per
// line against the order's target warehouse. The status change and the
// ledger appends commit as one unit; on any failure nothing is applied.
func (s *Service) Receive(ctx context.Context, orderID id.ID, input ReceiveInput, receivedBy id.ID) (*PurchaseOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanReceive(); err != nil {
		return nil, err
	}
	before := order.Snapshot()

	receivedDate := time.Now().UTC()
	if input.ReceivedDate != nil {
		receivedDate = *input.ReceivedDate
	}
	order.Status = StatusReceived
	order.ReceivedDate = &receivedDate
	order.AppendNote("Received", input.Notes)
	order.UpdatedBy = receivedBy.String()

	lines := make([]ledger.OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, ledger.OrderLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	err = s.transition(ctx, audit.ActionReceived, before, order, receivedBy, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		_, err := s.ledger.PostForOrderLines(ctx, ledger.OrderPosting{
			RefKind:     ledger.RefPurchaseOrder,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			WarehouseID: order.WarehouseID,
			Direction:   ledger.DirectionIn,
			Reason:      ledger.ReasonPurchase,
			Notes:       fmt.Sprintf("Received from purchase order %s", order.Number),
			PerformedBy: receivedBy,
			Lines:       lines,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order received",
		"id", order.ID,
		"number", order.Number,
		"lines", len(order.Lines),
	)

	return order, nil
}

// Cancel transitions draft or approved -> cancelled. Received orders
// cannot be cancelled: the goods are already accounted for.
func (s *Service) Cancel(ctx context.Context, orderID id.ID, cancelledBy id.ID) (*PurchaseOrder, error) {
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

// Delete hard-deletes an order unless it has reached received.
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
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}
