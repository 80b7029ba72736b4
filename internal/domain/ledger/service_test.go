package ledger

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
	"warebase/internal/domain"
)

// --- Test fakes ---

// memRepo is an in-memory append-only movement store.
type memRepo struct {
	movements []Movement
}

func (r *memRepo) snapshot() func() {
	saved := make([]Movement, len(r.movements))
	copy(saved, r.movements)
	return func() { r.movements = saved }
}

func (r *memRepo) Append(ctx context.Context, movements []Movement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memRepo) GetLevel(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	var level int64
	for i := range r.movements {
		m := &r.movements[i]
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			level += m.Signed()
		}
	}
	return level, nil
}

func (r *memRepo) GetLevelLocked(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	return r.GetLevel(ctx, productID, warehouseID)
}

func (r *memRepo) GetLevelsByWarehouse(ctx context.Context, warehouseID id.ID) ([]Level, error) {
	byProduct := make(map[id.ID]int64)
	order := make([]id.ID, 0)
	for i := range r.movements {
		m := &r.movements[i]
		if m.WarehouseID != warehouseID {
			continue
		}
		if _, seen := byProduct[m.ProductID]; !seen {
			order = append(order, m.ProductID)
		}
		byProduct[m.ProductID] += m.Signed()
	}
	levels := make([]Level, 0, len(order))
	for _, productID := range order {
		levels = append(levels, Level{ProductID: productID, WarehouseID: warehouseID, Quantity: byProduct[productID]})
	}
	return levels, nil
}

func (r *memRepo) GetLevelsByProduct(ctx context.Context, productID id.ID) ([]Level, error) {
	byWarehouse := make(map[id.ID]int64)
	order := make([]id.ID, 0)
	for i := range r.movements {
		m := &r.movements[i]
		if m.ProductID != productID {
			continue
		}
		if _, seen := byWarehouse[m.WarehouseID]; !seen {
			order = append(order, m.WarehouseID)
		}
		byWarehouse[m.WarehouseID] += m.Signed()
	}
	levels := make([]Level, 0, len(order))
	for _, warehouseID := range order {
		levels = append(levels, Level{ProductID: productID, WarehouseID: warehouseID, Quantity: byWarehouse[warehouseID]})
	}
	return levels, nil
}

func (r *memRepo) ListMovements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error) {
	items := make([]Movement, 0)
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.Direction != nil && m.Direction != *filter.Direction {
			continue
		}
		if filter.Reason != nil && m.Reason != *filter.Reason {
			continue
		}
		items = append(items, m)
	}
	return domain.ListResult[Movement]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo) GetMovementsByRef(ctx context.Context, kind RefKind, refID id.ID) ([]Movement, error) {
	items := make([]Movement, 0)
	for _, m := range r.movements {
		if m.RefKind == kind && m.RefID == refID {
			items = append(items, m)
		}
	}
	return items, nil
}

// rollbacker lets the fake transaction manager undo writes on error.
type rollbacker interface {
	snapshot() func()
}

type fakeTxManager struct {
	stores []rollbacker
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(m.stores))
	for _, s := range m.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// stubDirectory resolves only the IDs it was seeded with.
type stubDirectory struct {
	products   map[id.ID]string
	warehouses map[id.ID]string
}

func (d *stubDirectory) FindProduct(ctx context.Context, productID id.ID) (Ref, error) {
	name, ok := d.products[productID]
	if !ok {
		return Ref{}, apperror.NewNotFound("Product", productID.String())
	}
	return Ref{ID: productID, Name: name}, nil
}

func (d *stubDirectory) FindWarehouse(ctx context.Context, warehouseID id.ID) (Ref, error) {
	name, ok := d.warehouses[warehouseID]
	if !ok {
		return Ref{}, apperror.NewNotFound("Warehouse", warehouseID.String())
	}
	return Ref{ID: warehouseID, Name: name}, nil
}

type fixture struct {
	svc  *Service
	repo *memRepo

	product   id.ID
	mainWH    id.ID
	backupWH  id.ID
	performer id.ID
}

func newFixture() *fixture {
	repo := &memRepo{}
	f := &fixture{
		repo:      repo,
		product:   id.New(),
		mainWH:    id.New(),
		backupWH:  id.New(),
		performer: id.New(),
	}
	dir := &stubDirectory{
		products:   map[id.ID]string{f.product: "Widget"},
		warehouses: map[id.ID]string{f.mainWH: "Main", f.backupWH: "Backup"},
	}
	f.svc = NewService(repo, dir, &fakeTxManager{stores: []rollbacker{repo}}, nil)
	return f
}

func (f *fixture) seed(t *testing.T, warehouseID id.ID, quantity int64) {
	t.Helper()
	_, err := f.svc.PostAdjustment(context.Background(), AdjustmentInput{
		ProductID:   f.product,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		Notes:       "initial stock",
		PerformedBy: f.performer,
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (f *fixture) level(t *testing.T, warehouseID id.ID) int64 {
	t.Helper()
	level, err := f.svc.GetLevel(context.Background(), f.product, warehouseID)
	if err != nil {
		t.Fatalf("get level: %v", err)
	}
	return level
}

// --- Levels ---

func TestGetLevel_EmptyLedgerIsZero(t *testing.T) {
	f := newFixture()
	if got := f.level(t, f.mainWH); got != 0 {
		t.Errorf("expected level 0 for empty ledger, got %d", got)
	}
}

func TestGetLevel_UnknownProduct(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetLevel(context.Background(), id.New(), f.mainWH)
	if !apperror.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestGetLevel_UnknownWarehouse(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetLevel(context.Background(), f.product, id.New())
	if !apperror.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestGetLevelsByWarehouse_AggregatesPerProduct(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 10)
	f.seed(t, f.mainWH, 5)
	f.seed(t, f.backupWH, 3)

	levels, err := f.svc.GetLevelsByWarehouse(context.Background(), f.mainWH)
	if err != nil {
		t.Fatalf("get levels: %v", err)
	}
	if len(levels) != 1 {
		t.Fatalf("expected 1 level row, got %d", len(levels))
	}
	if levels[0].Quantity != 15 {
		t.Errorf("expected aggregated quantity 15, got %d", levels[0].Quantity)
	}
}

// --- Adjustments ---

func TestPostAdjustment_InIncreasesLevel(t *testing.T) {
	f := newFixture()

	movement, err := f.svc.PostAdjustment(context.Background(), AdjustmentInput{
		ProductID:   f.product,
		WarehouseID: f.mainWH,
		Quantity:    10,
		Notes:       "found during stocktake",
		PerformedBy: f.performer,
	})
	if err != nil {
		t.Fatalf("post adjustment: %v", err)
	}

	if movement.Direction != DirectionIn {
		t.Errorf("expected default direction in, got %s", movement.Direction)
	}
	if movement.Reason != ReasonAdjustment {
		t.Errorf("expected reason adjustment, got %s", movement.Reason)
	}
	if movement.RefKind != RefAdjustment || movement.RefID != movement.ID {
		t.Errorf("expected self-referencing adjustment, got kind=%s ref=%s", movement.RefKind, movement.RefID)
	}
	if got := f.level(t, f.mainWH); got != 10 {
		t.Errorf("expected level 10, got %d", got)
	}
}

func TestPostAdjustment_OutDecreasesLevel(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 10)

	_, err := f.svc.PostAdjustment(context.Background(), AdjustmentInput{
		ProductID:   f.product,
		WarehouseID: f.mainWH,
		Direction:   DirectionOut,
		Quantity:    4,
		Notes:       "damaged in storage",
		PerformedBy: f.performer,
	})
	if err != nil {
		t.Fatalf("post adjustment: %v", err)
	}
	if got := f.level(t, f.mainWH); got != 6 {
		t.Errorf("expected level 6, got %d", got)
	}
}

func TestPostAdjustment_OutInsufficient(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 5)
	before := len(f.repo.movements)

	_, err := f.svc.PostAdjustment(context.Background(), AdjustmentInput{
		ProductID:   f.product,
		WarehouseID: f.mainWH,
		Direction:   DirectionOut,
		Quantity:    8,
		Notes:       "write-off",
		PerformedBy: f.performer,
	})
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}

	appErr, _ := apperror.AsAppError(err)
	want := "Insufficient stock for Widget. Available: 5, Requested: 8"
	if appErr.Message != want {
		t.Errorf("expected message %q, got %q", want, appErr.Message)
	}
	if appErr.Details["available"] != int64(5) || appErr.Details["requested"] != int64(8) {
		t.Errorf("unexpected details: %v", appErr.Details)
	}
	if len(f.repo.movements) != before {
		t.Errorf("expected no movements appended, got %d new", len(f.repo.movements)-before)
	}
	if got := f.level(t, f.mainWH); got != 5 {
		t.Errorf("expected level unchanged at 5, got %d", got)
	}
}

func TestPostAdjustment_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture()
	for _, quantity := range []int64{0, -3} {
		_, err := f.svc.PostAdjustment(context.Background(), AdjustmentInput{
			ProductID:   f.product,
			WarehouseID: f.mainWH,
			Quantity:    quantity,
			Notes:       "bad input",
			PerformedBy: f.performer,
		})
		if err == nil {
			t.Errorf("quantity %d: expected validation error", quantity)
		}
	}
}

func TestPostAdjustment_RequiresNotes(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PostAdjustment(context.Background(), AdjustmentInput{
		ProductID:   f.product,
		WarehouseID: f.mainWH,
		Quantity:    1,
		PerformedBy: f.performer,
	})
	if err == nil {
		t.Error("expected validation error for missing notes")
	}
}

func TestPostAdjustment_UnknownProduct(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PostAdjustment(context.Background(), AdjustmentInput{
		ProductID:   id.New(),
		WarehouseID: f.mainWH,
		Quantity:    1,
		Notes:       "whatever",
		PerformedBy: f.performer,
	})
	if !apperror.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

// --- Transfers ---

func TestPostTransfer_ConservesTotalStock(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 10)

	transfer, err := f.svc.PostTransfer(context.Background(), TransferInput{
		ProductID:       f.product,
		FromWarehouseID: f.mainWH,
		ToWarehouseID:   f.backupWH,
		Quantity:        4,
		PerformedBy:     f.performer,
	})
	if err != nil {
		t.Fatalf("post transfer: %v", err)
	}

	if got := f.level(t, f.mainWH); got != 6 {
		t.Errorf("expected source level 6, got %d", got)
	}
	if got := f.level(t, f.backupWH); got != 4 {
		t.Errorf("expected destination level 4, got %d", got)
	}
	if total := f.level(t, f.mainWH) + f.level(t, f.backupWH); total != 10 {
		t.Errorf("expected total conserved at 10, got %d", total)
	}

	if transfer.Outbound.RefID != transfer.Inbound.ID || transfer.Inbound.RefID != transfer.Outbound.ID {
		t.Error("expected transfer legs to cross-reference each other")
	}
	if transfer.Outbound.Notes != "Transfer to Backup" {
		t.Errorf("unexpected outbound notes: %q", transfer.Outbound.Notes)
	}
	if transfer.Inbound.Notes != "Transfer from Main" {
		t.Errorf("unexpected inbound notes: %q", transfer.Inbound.Notes)
	}
}

func TestPostTransfer_AppendsUserNotes(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 10)

	transfer, err := f.svc.PostTransfer(context.Background(), TransferInput{
		ProductID:       f.product,
		FromWarehouseID: f.mainWH,
		ToWarehouseID:   f.backupWH,
		Quantity:        1,
		Notes:           "rebalance",
		PerformedBy:     f.performer,
	})
	if err != nil {
		t.Fatalf("post transfer: %v", err)
	}
	if transfer.Outbound.Notes != "Transfer to Backup. rebalance" {
		t.Errorf("unexpected outbound notes: %q", transfer.Outbound.Notes)
	}
}

func TestPostTransfer_SameWarehouse(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 10)

	_, err := f.svc.PostTransfer(context.Background(), TransferInput{
		ProductID:       f.product,
		FromWarehouseID: f.mainWH,
		ToWarehouseID:   f.mainWH,
		Quantity:        1,
		PerformedBy:     f.performer,
	})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeBadRequest {
		t.Fatalf("expected BadRequest, got %v", err)
	}
	if appErr.Message != "Cannot transfer to the same warehouse" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestPostTransfer_InsufficientLeavesNoMovements(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 3)
	before := len(f.repo.movements)

	_, err := f.svc.PostTransfer(context.Background(), TransferInput{
		ProductID:       f.product,
		FromWarehouseID: f.mainWH,
		ToWarehouseID:   f.backupWH,
		Quantity:        5,
		PerformedBy:     f.performer,
	})
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
	if len(f.repo.movements) != before {
		t.Error("expected no movements appended on failed transfer")
	}
	if got := f.level(t, f.backupWH); got != 0 {
		t.Errorf("expected destination untouched, got %d", got)
	}
}

// --- Availability checks ---

func TestCheckAvailability_ReportsFirstShortage(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 2)

	err := f.svc.CheckAvailability(context.Background(), f.mainWH, []OrderLine{
		{ProductID: f.product, ProductName: "Widget", Quantity: 3},
	})
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
	appErr, _ := apperror.AsAppError(err)
	want := "Insufficient stock for Widget. Available: 2, Requested: 3"
	if appErr.Message != want {
		t.Errorf("expected message %q, got %q", want, appErr.Message)
	}
}

func TestCheckAvailability_PostsNothing(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 5)
	before := len(f.repo.movements)

	err := f.svc.CheckAvailability(context.Background(), f.mainWH, []OrderLine{
		{ProductID: f.product, ProductName: "Widget", Quantity: 5},
	})
	if err != nil {
		t.Fatalf("check availability: %v", err)
	}
	if len(f.repo.movements) != before {
		t.Error("availability check must not append movements")
	}
	if got := f.level(t, f.mainWH); got != 5 {
		t.Errorf("expected level unchanged at 5, got %d", got)
	}
}

// --- Movement history ---

func TestListMovements_FiltersByReason(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 10)
	if _, err := f.svc.PostTransfer(context.Background(), TransferInput{
		ProductID:       f.product,
		FromWarehouseID: f.mainWH,
		ToWarehouseID:   f.backupWH,
		Quantity:        2,
		PerformedBy:     f.performer,
	}); err != nil {
		t.Fatalf("post transfer: %v", err)
	}

	reason := ReasonTransfer
	result, err := f.svc.ListMovements(context.Background(), MovementFilter{Reason: &reason})
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 transfer movements, got %d", len(result.Items))
	}
	for _, m := range result.Items {
		if m.Reason != ReasonTransfer {
			t.Errorf("unexpected reason %s", m.Reason)
		}
	}
}

func TestPostForOrderLines_RequiresLines(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PostForOrderLines(context.Background(), OrderPosting{
		RefKind:     RefSalesOrder,
		OrderID:     id.New(),
		WarehouseID: f.mainWH,
		Direction:   DirectionOut,
		Reason:      ReasonSale,
		PerformedBy: f.performer,
	})
	if err == nil {
		t.Error("expected validation error for empty lines")
	}
}

func TestPostForOrderLines_OutShortageNamesLine(t *testing.T) {
	f := newFixture()
	f.seed(t, f.mainWH, 1)
	before := len(f.repo.movements)

	_, err := f.svc.PostForOrderLines(context.Background(), OrderPosting{
		RefKind:     RefSalesOrder,
		OrderID:     id.New(),
		OrderNumber: "SO-202608-0001",
		WarehouseID: f.mainWH,
		Direction:   DirectionOut,
		Reason:      ReasonSale,
		Notes:       fmt.Sprintf("Sold via sales order %s", "SO-202608-0001"),
		PerformedBy: f.performer,
		Lines: []OrderLine{
			{ProductID: f.product, ProductName: "Widget", Quantity: 2},
		},
	})
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
	if len(f.repo.movements) != before {
		t.Error("expected no movements appended on shortage")
	}
}

// lockRecordingRepo remembers the order in which pair locks were taken.
type lockRecordingRepo struct {
	*memRepo
	lockOrder []id.ID
}

func (r *lockRecordingRepo) GetLevelLocked(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	r.lockOrder = append(r.lockOrder, productID)
	return r.memRepo.GetLevel(ctx, productID, warehouseID)
}

func TestPostForOrderLines_LocksInProductOrder(t *testing.T) {
	mem := &memRepo{}
	rec := &lockRecordingRepo{memRepo: mem}

	warehouseID := id.New()
	performer := id.New()
	products := []id.ID{id.New(), id.New(), id.New()}

	dir := &stubDirectory{
		products:   map[id.ID]string{},
		warehouses: map[id.ID]string{warehouseID: "Main"},
	}
	for i, productID := range products {
		dir.products[productID] = fmt.Sprintf("Widget %d", i)
		mem.movements = append(mem.movements,
			NewMovement(productID, warehouseID, DirectionIn, 10, ReasonAdjustment))
	}
	svc := NewService(rec, dir, &fakeTxManager{stores: []rollbacker{mem}}, nil)

	// Present the lines in descending product-id order.
	byProduct := make([]id.ID, len(products))
	copy(byProduct, products)
	sort.Slice(byProduct, func(i, j int) bool { return byProduct[i] > byProduct[j] })

	lines := make([]OrderLine, 0, len(byProduct))
	for i, productID := range byProduct {
		lines = append(lines, OrderLine{ProductID: productID, ProductName: fmt.Sprintf("Widget %d", i), Quantity: 1})
	}

	movements, err := svc.PostForOrderLines(context.Background(), OrderPosting{
		RefKind:     RefSalesOrder,
		OrderID:     id.New(),
		OrderNumber: "SO-202608-0003",
		WarehouseID: warehouseID,
		Direction:   DirectionOut,
		Reason:      ReasonSale,
		PerformedBy: performer,
		Lines:       lines,
	})
	if err != nil {
		t.Fatalf("post for order lines: %v", err)
	}

	if !sort.SliceIsSorted(rec.lockOrder, func(i, j int) bool { return rec.lockOrder[i] < rec.lockOrder[j] }) {
		t.Errorf("locks taken out of product order: %v", rec.lockOrder)
	}
	if len(rec.lockOrder) != len(lines) {
		t.Errorf("expected %d lock acquisitions, got %d", len(lines), len(rec.lockOrder))
	}

	// Movements still follow the caller's line order.
	if len(movements) != len(lines) {
		t.Fatalf("expected %d movements, got %d", len(lines), len(movements))
	}
	for i, m := range movements {
		if m.ProductID != lines[i].ProductID {
			t.Errorf("movement %d: expected product %s, got %s", i, lines[i].ProductID, m.ProductID)
		}
	}
}

func TestGetLevel_OrderOfMovementsIsIrrelevant(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()

	base := []Movement{
		NewMovement(productID, warehouseID, DirectionIn, 10, ReasonAdjustment),
		NewMovement(productID, warehouseID, DirectionIn, 5, ReasonPurchase),
		NewMovement(productID, warehouseID, DirectionOut, 7, ReasonSale),
		NewMovement(productID, warehouseID, DirectionIn, 2, ReasonTransfer),
		NewMovement(productID, warehouseID, DirectionOut, 4, ReasonAdjustment),
	}
	const want = int64(6)

	tests := []struct {
		name  string
		order []int
	}{
		{"insertion order", []int{0, 1, 2, 3, 4}},
		{"reversed", []int{4, 3, 2, 1, 0}},
		{"debits first", []int{2, 4, 0, 1, 3}},
		{"interleaved", []int{1, 4, 0, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			for _, idx := range tt.order {
				if err := repo.Append(context.Background(), []Movement{base[idx]}); err != nil {
					t.Fatalf("append: %v", err)
				}
			}
			level, err := repo.GetLevel(context.Background(), productID, warehouseID)
			if err != nil {
				t.Fatalf("get level: %v", err)
			}
			if level != want {
				t.Errorf("expected level %d, got %d", want, level)
			}
		})
	}
}
