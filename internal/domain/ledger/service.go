package ledger

import (
	"context"
	"fmt"
	"sort"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
	"warebase/internal/core/tx"
	"warebase/internal/domain"
	"warebase/internal/domain/audit"
	"warebase/pkg/logger"
)

// Ref is the minimal view of a referenced catalog entity.
type Ref struct {
	ID   id.ID
	Name string
}

// Directory provides existence/status checks for entities referenced by
// movements. Absent, inactive and soft-deleted records are all reported
// as NotFound.
type Directory interface {
	FindProduct(ctx context.Context, productID id.ID) (Ref, error)
	FindWarehouse(ctx context.Context, warehouseID id.ID) (Ref, error)
}

// Service is the stock ledger engine: the single authority for computing
// and mutating stock quantity via movement records.
type Service struct {
	repo      Repository
	directory Directory
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new ledger service.
func NewService(repo Repository, directory Directory, txManager tx.Manager, auditor audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		txManager: txManager,
		auditor:   auditor,
	}
}

// GetLevel returns quantity on hand for a (product, warehouse) pair.
// Fails NotFound when either reference is absent.
func (s *Service) GetLevel(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	if _, err := s.directory.FindProduct(ctx, productID); err != nil {
		return 0, err
	}
	if _, err := s.directory.FindWarehouse(ctx, warehouseID); err != nil {
		return 0, err
	}
	return s.repo.GetLevel(ctx, productID, warehouseID)
}

// GetLevelsByWarehouse returns per-product levels for a warehouse.
func (s *Service) GetLevelsByWarehouse(ctx context.Context, warehouseID id.ID) ([]Level, error) {
	if _, err := s.directory.FindWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	return s.repo.GetLevelsByWarehouse(ctx, warehouseID)
}

// GetLevelsByProduct returns per-warehouse levels for a product.
func (s *Service) GetLevelsByProduct(ctx context.Context, productID id.ID) ([]Level, error) {
	if _, err := s.directory.FindProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.GetLevelsByProduct(ctx, productID)
}

// ListMovements returns movement history.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error) {
	return s.repo.ListMovements(ctx, filter)
}

// AdjustmentInput describes a manual stock correction.
type AdjustmentInput struct {
	ProductID   id.ID
	WarehouseID id.ID
	// Direction defaults to in. Out adjustments (shrinkage, damage) run the
	// same sufficiency check as any other debit.
	Direction   Direction
	Quantity    int64
	Notes       string
	PerformedBy id.ID
}

// PostAdjustment appends a single adjustment movement.
func (s *Service) PostAdjustment(ctx context.Context, input AdjustmentInput) (*Movement, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if input.Notes == "" {
		return nil, apperror.NewValidation("notes are required for adjustments").WithDetail("field", "notes")
	}
	if input.Direction == "" {
		input.Direction = DirectionIn
	}

	productRef, err := s.directory.FindProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := s.directory.FindWarehouse(ctx, input.WarehouseID); err != nil {
		return nil, err
	}

	movement := NewMovement(input.ProductID, input.WarehouseID, input.Direction, input.Quantity, ReasonAdjustment)
	movement.RefKind = RefAdjustment
	movement.RefID = movement.ID
	movement.Notes = input.Notes
	movement.PerformedBy = input.PerformedBy
	if err := movement.Validate(ctx); err != nil {
		return nil, err
	}

	var levelBefore int64
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		levelBefore, err = s.repo.GetLevelLocked(ctx, input.ProductID, input.WarehouseID)
		if err != nil {
			return fmt.Errorf("get level: %w", err)
		}
		if input.Direction == DirectionOut && levelBefore < input.Quantity {
			return apperror.NewInsufficientStock(productRef.Name, levelBefore, input.Quantity)
		}
		return s.repo.Append(ctx, []Movement{movement})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "posted stock adjustment",
		"movement_id", movement.ID,
		"product_id", input.ProductID,
		"warehouse_id", input.WarehouseID,
		"direction", string(input.Direction),
		"quantity", input.Quantity,
	)

	audit.Try(ctx, s.auditor, audit.Entry{
		Entity:        "StockAdjustment",
		EntityID:      movement.ID.String(),
		Action:        audit.ActionAdjusted,
		PayloadBefore: map[string]any{"stockLevel": levelBefore},
		PayloadAfter:  map[string]any{"stockLevel": levelBefore + movement.Signed(), "movement": movement},
		PerformedBy:   input.PerformedBy.String(),
	})

	return &movement, nil
}

// TransferInput describes an inter-warehouse transfer.
type TransferInput struct {
	ProductID       id.ID
	FromWarehouseID id.ID
	ToWarehouseID   id.ID
	Quantity        int64
	Notes           string
	PerformedBy     id.ID
}

// PostTransfer moves quantity between warehouses as one atomic unit:
// an out movement on the source and an in movement on the destination,
// cross-referencing each other. Total stock across both warehouses is
// conserved.
func (s *Service) PostTransfer(ctx context.Context, input TransferInput) (*Transfer, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, apperror.NewBadRequest("Cannot transfer to the same warehouse")
	}

	productRef, err := s.directory.FindProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	fromRef, err := s.directory.FindWarehouse(ctx, input.FromWarehouseID)
	if err != nil {
		return nil, err
	}
	toRef, err := s.directory.FindWarehouse(ctx, input.ToWarehouseID)
	if err != nil {
		return nil, err
	}

	outbound := NewMovement(input.ProductID, input.FromWarehouseID, DirectionOut, input.Quantity, ReasonTransfer)
	inbound := NewMovement(input.ProductID, input.ToWarehouseID, DirectionIn, input.Quantity, ReasonTransfer)
	outbound.RefKind, outbound.RefID = RefTransfer, inbound.ID
	inbound.RefKind, inbound.RefID = RefTransfer, outbound.ID
	outbound.PerformedBy = input.PerformedBy
	inbound.PerformedBy = input.PerformedBy
	outbound.Notes = transferNote("Transfer to "+toRef.Name, input.Notes)
	inbound.Notes = transferNote("Transfer from "+fromRef.Name, input.Notes)

	for _, m := range []*Movement{&outbound, &inbound} {
		if err := m.Validate(ctx); err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		available, err := s.repo.GetLevelLocked(ctx, input.ProductID, input.FromWarehouseID)
		if err != nil {
			return fmt.Errorf("get level: %w", err)
		}
		if available < input.Quantity {
			return apperror.NewInsufficientStock(productRef.Name, available, input.Quantity)
		}
		return s.repo.Append(ctx, []Movement{outbound, inbound})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "posted stock transfer",
		"product_id", input.ProductID,
		"from_warehouse_id", input.FromWarehouseID,
		"to_warehouse_id", input.ToWarehouseID,
		"quantity", input.Quantity,
	)

	transfer := &Transfer{Outbound: outbound, Inbound: inbound}
	audit.Try(ctx, s.auditor, audit.Entry{
		Entity:       "StockTransfer",
		EntityID:     outbound.ID.String(),
		Action:       audit.ActionTransfer,
		PayloadAfter: transfer,
		PerformedBy:  input.PerformedBy.String(),
	})

	return transfer, nil
}

func transferNote(base, notes string) string {
	if notes == "" {
		return base
	}
	return base + ". " + notes
}

// OrderLine is one product/quantity pair to post for an order transition.
// ProductName is carried for insufficiency error messages.
type OrderLine struct {
	ProductID   id.ID
	ProductName string
	Quantity    int64
}

// OrderPosting describes the movements an order transition produces.
type OrderPosting struct {
	RefKind     RefKind
	OrderID     id.ID
	OrderNumber string
	WarehouseID id.ID
	Direction   Direction
	Reason      Reason
	Notes       string
	PerformedBy id.ID
	Lines       []OrderLine
}

// PostForOrderLines appends one movement per order line, tagged with the
// order as reference document. It must run inside the caller's transaction
// so the order transition and the ledger writes commit as one unit.
//
// For out postings each line's sufficiency is re-checked under the pair
// lock; a shortage fails the whole posting with InsufficientStock and the
// enclosing transaction rolls back, leaving zero movements.
func (s *Service) PostForOrderLines(ctx context.Context, posting OrderPosting) ([]Movement, error) {
	if len(posting.Lines) == 0 {
		return nil, apperror.NewValidation("order has no lines to post")
	}

	if posting.Direction == DirectionOut {
		// Acquire pair locks in product-id order regardless of how the
		// caller ordered the lines, so two concurrent fulfillments touching
		// the same products cannot deadlock on each other's locks.
		locked := make([]OrderLine, len(posting.Lines))
		copy(locked, posting.Lines)
		sort.Slice(locked, func(i, j int) bool { return locked[i].ProductID < locked[j].ProductID })

		for _, line := range locked {
			available, err := s.repo.GetLevelLocked(ctx, line.ProductID, posting.WarehouseID)
			if err != nil {
				return nil, fmt.Errorf("get level for %s: %w", line.ProductID, err)
			}
			if available < line.Quantity {
				return nil, apperror.NewInsufficientStock(line.ProductName, available, line.Quantity)
			}
		}
	}

	movements := make([]Movement, 0, len(posting.Lines))
	for _, line := range posting.Lines {
		movement := NewMovement(line.ProductID, posting.WarehouseID, posting.Direction, line.Quantity, posting.Reason)
		movement.RefKind = posting.RefKind
		movement.RefID = posting.OrderID
		movement.Notes = posting.Notes
		movement.PerformedBy = posting.PerformedBy
		if err := movement.Validate(ctx); err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	if err := s.repo.Append(ctx, movements); err != nil {
		return nil, fmt.Errorf("append order movements: %w", err)
	}

	return movements, nil
}

// CheckAvailability verifies that every line can be satisfied from the
// warehouse right now. Used by sales-order confirmation, which checks but
// does not decrement. The first failing line aborts with InsufficientStock
// naming the product and the available/requested quantities.
func (s *Service) CheckAvailability(ctx context.Context, warehouseID id.ID, lines []OrderLine) error {
	for _, line := range lines {
		available, err := s.repo.GetLevel(ctx, line.ProductID, warehouseID)
		if err != nil {
			return fmt.Errorf("get level for %s: %w", line.ProductID, err)
		}
		if available < line.Quantity {
			return apperror.NewInsufficientStock(line.ProductName, available, line.Quantity)
		}
	}
	return nil
}
