package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
	"warebase/internal/core/numerator"
	"warebase/internal/core/types"
	"warebase/internal/domain"
	"warebase/internal/domain/audit"
	"warebase/internal/domain/ledger"
)

// --- Test fakes ---

type memOrderRepo struct {
	orders map[id.ID]SalesOrder
	lines  map[id.ID][]Line
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[id.ID]SalesOrder),
		lines:  make(map[id.ID][]Line),
	}
}

func (r *memOrderRepo) snapshot() func() {
	orders := make(map[id.ID]SalesOrder, len(r.orders))
	for k, v := range r.orders {
		orders[k] = v
	}
	lines := make(map[id.ID][]Line, len(r.lines))
	for k, v := range r.lines {
		lines[k] = append([]Line(nil), v...)
	}
	return func() { r.orders, r.lines = orders, lines }
}

func (r *memOrderRepo) Create(ctx context.Context, order *SalesOrder) error {
	r.orders[order.ID] = *order
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*SalesOrder, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("SalesOrder", orderID.String())
	}
	clone := order
	return &clone, nil
}

func (r *memOrderRepo) GetByNumber(ctx context.Context, number string) (*SalesOrder, error) {
	for _, order := range r.orders {
		if order.Number == number {
			clone := order
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("SalesOrder", number)
}

func (r *memOrderRepo) Update(ctx context.Context, order *SalesOrder) error {
	if _, ok := r.orders[order.ID]; !ok {
		return apperror.NewNotFound("SalesOrder", order.ID.String())
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *memOrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	delete(r.orders, orderID)
	delete(r.lines, orderID)
	return nil
}

func (r *memOrderRepo) GetLines(ctx context.Context, orderID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[orderID]...), nil
}

func (r *memOrderRepo) SaveLines(ctx context.Context, orderID id.ID, lines []Line) error {
	r.lines[orderID] = append([]Line(nil), lines...)
	return nil
}

func (r *memOrderRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesOrder], error) {
	items := make([]*SalesOrder, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		clone := order
		items = append(items, &clone)
	}
	return domain.ListResult[*SalesOrder]{Items: items, TotalCount: int64(len(items))}, nil
}

type memLedgerRepo struct {
	movements []ledger.Movement
}

func (r *memLedgerRepo) snapshot() func() {
	saved := append([]ledger.Movement(nil), r.movements...)
	return func() { r.movements = saved }
}

func (r *memLedgerRepo) Append(ctx context.Context, movements []ledger.Movement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memLedgerRepo) GetLevel(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	var level int64
	for i := range r.movements {
		m := &r.movements[i]
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			level += m.Signed()
		}
	}
	return level, nil
}

func (r *memLedgerRepo) GetLevelLocked(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	return r.GetLevel(ctx, productID, warehouseID)
}

func (r *memLedgerRepo) GetLevelsByWarehouse(ctx context.Context, warehouseID id.ID) ([]ledger.Level, error) {
	return nil, nil
}

func (r *memLedgerRepo) GetLevelsByProduct(ctx context.Context, productID id.ID) ([]ledger.Level, error) {
	return nil, nil
}

func (r *memLedgerRepo) ListMovements(ctx context.Context, filter ledger.MovementFilter) (domain.ListResult[ledger.Movement], error) {
	return domain.ListResult[ledger.Movement]{}, nil
}

func (r *memLedgerRepo) GetMovementsByRef(ctx context.Context, kind ledger.RefKind, refID id.ID) ([]ledger.Movement, error) {
	items := make([]ledger.Movement, 0)
	for _, m := range r.movements {
		if m.RefKind == kind && m.RefID == refID {
			items = append(items, m)
		}
	}
	return items, nil
}

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

type stubDirectory struct {
	products   map[id.ID]string
	warehouses map[id.ID]string
}

func (d *stubDirectory) FindProduct(ctx context.Context, productID id.ID) (ledger.Ref, error) {
	name, ok := d.products[productID]
	if !ok {
		return ledger.Ref{}, apperror.NewNotFound("Product", productID.String())
	}
	return ledger.Ref{ID: productID, Name: name}, nil
}

func (d *stubDirectory) FindWarehouse(ctx context.Context, warehouseID id.ID) (ledger.Ref, error) {
	name, ok := d.warehouses[warehouseID]
	if !ok {
		return ledger.Ref{}, apperror.NewNotFound("Warehouse", warehouseID.String())
	}
	return ledger.Ref{ID: warehouseID, Name: name}, nil
}

type captureRecorder struct {
	entries []audit.Entry
}

func (r *captureRecorder) Record(ctx context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

type fixture struct {
	svc        *Service
	ledgerSvc  *ledger.Service
	orders     *memOrderRepo
	ledgerRepo *memLedgerRepo
	audits     *captureRecorder

	warehouse id.ID
	product   id.ID
	user      id.ID
}

func newFixture() *fixture {
	f := &fixture{
		orders:     newMemOrderRepo(),
		ledgerRepo: &memLedgerRepo{},
		audits:     &captureRecorder{},
		warehouse:  id.New(),
		product:    id.New(),
		user:       id.New(),
	}
	dir := &stubDirectory{
		products:   map[id.ID]string{f.product: "Widget"},
		warehouses: map[id.ID]string{f.warehouse: "Main"},
	}
	txManager := &fakeTxManager{stores: []rollbacker{f.orders, f.ledgerRepo}}
	f.ledgerSvc = ledger.NewService(f.ledgerRepo, dir, txManager, f.audits)
	f.svc = NewService(f.orders, f.ledgerSvc, dir, &numerator.MockGenerator{}, txManager, f.audits)
	return f
}

func (f *fixture) seedStock(t *testing.T, quantity int64) {
	t.Helper()
	_, err := f.ledgerSvc.PostAdjustment(context.Background(), ledger.AdjustmentInput{
		ProductID:   f.product,
		WarehouseID: f.warehouse,
		Quantity:    quantity,
		Notes:       "initial stock",
		PerformedBy: f.user,
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (f *fixture) createOrder(t *testing.T, quantity int64) *SalesOrder {
	t.Helper()
	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerName: "Jane Doe",
		WarehouseID:  f.warehouse,
		Lines: []LineInput{
			{ProductID: f.product, Quantity: quantity, UnitPrice: types.MustMoney("9.99")},
		},
	}, f.user)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func (f *fixture) confirmedOrder(t *testing.T, quantity int64) *SalesOrder {
	t.Helper()
	order := f.createOrder(t, quantity)
	confirmed, err := f.svc.Confirm(context.Background(), order.ID, "", f.user)
	if err != nil {
		t.Fatalf("confirm order: %v", err)
	}
	return confirmed
}

func (f *fixture) level(t *testing.T) int64 {
	t.Helper()
	level, err := f.ledgerRepo.GetLevel(context.Background(), f.product, f.warehouse)
	if err != nil {
		t.Fatalf("get level: %v", err)
	}
	return level
}

func (f *fixture) saleMovements() []ledger.Movement {
	items := make([]ledger.Movement, 0)
	for _, m := range f.ledgerRepo.movements {
		if m.Reason == ledger.ReasonSale {
			items = append(items, m)
		}
	}
	return items
}

// --- Creation ---

func TestCreate_StartsAsDraftWithNumber(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 2)

	if order.Status != StatusDraft {
		t.Errorf("expected status draft, got %s", order.Status)
	}
	wantNumber := fmt.Sprintf("SO-%s-0001", time.Now().Format("200601"))
	if order.Number != wantNumber {
		t.Errorf("expected number %s, got %s", wantNumber, order.Number)
	}
	if !order.TotalAmount.Equal(types.MustMoney("19.98")) {
		t.Errorf("expected total 19.98, got %s", order.TotalAmount)
	}
}

func TestCreate_RequiresCustomerName(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), CreateInput{
		WarehouseID: f.warehouse,
		Lines:       []LineInput{{ProductID: f.product, Quantity: 1}},
	}, f.user)
	if err == nil {
		t.Error("expected validation error for missing customer name")
	}
}

func TestCreate_DoesNotRequireStock(t *testing.T) {
	f := newFixture()
	// Drafting an order for more than is on hand is allowed; only
	// confirmation checks availability.
	order := f.createOrder(t, 100)
	if order.Status != StatusDraft {
		t.Errorf("expected status draft, got %s", order.Status)
	}
}

// --- Confirm ---

func TestConfirm_ChecksStockPostsNothing(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 5)
	order := f.createOrder(t, 5)
	movementsBefore := len(f.ledgerRepo.movements)

	confirmed, err := f.svc.Confirm(context.Background(), order.ID, "", f.user)
	if err != nil {
		t.Fatalf("confirm order: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("expected status confirmed, got %s", confirmed.Status)
	}
	if len(f.ledgerRepo.movements) != movementsBefore {
		t.Error("confirmation must not post movements")
	}
	if got := f.level(t); got != 5 {
		t.Errorf("expected level unchanged at 5, got %d", got)
	}
}

func TestConfirm_InsufficientReportsQuantities(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 2)
	order := f.createOrder(t, 3)

	_, err := f.svc.Confirm(context.Background(), order.ID, "", f.user)
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
	appErr, _ := apperror.AsAppError(err)
	want := "Insufficient stock for Widget. Available: 2, Requested: 3"
	if appErr.Message != want {
		t.Errorf("expected message %q, got %q", want, appErr.Message)
	}

	reloaded, getErr := f.svc.GetByID(context.Background(), order.ID)
	if getErr != nil {
		t.Fatalf("reload order: %v", getErr)
	}
	if reloaded.Status != StatusDraft {
		t.Errorf("failed confirm must leave order draft, got %s", reloaded.Status)
	}
}

func TestConfirm_OnlyDraft(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 5)
	order := f.confirmedOrder(t, 5)

	_, err := f.svc.Confirm(context.Background(), order.ID, "", f.user)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Message != "Can only confirm draft sales orders" {
		t.Errorf("unexpected error: %v", err)
	}
}

// --- Fulfill ---

func TestFulfill_PostsOutMovements(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 10)
	order := f.confirmedOrder(t, 4)

	fulfilled, err := f.svc.Fulfill(context.Background(), order.ID, FulfillInput{}, f.user)
	if err != nil {
		t.Fatalf("fulfill order: %v", err)
	}
	if fulfilled.Status != StatusFulfilled {
		t.Errorf("expected status fulfilled, got %s", fulfilled.Status)
	}
	if fulfilled.FulfilledDate == nil {
		t.Error("expected fulfilled date to be set")
	}

	sales := f.saleMovements()
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale movement, got %d", len(sales))
	}
	m := sales[0]
	if m.Direction != ledger.DirectionOut {
		t.Errorf("expected direction out, got %s", m.Direction)
	}
	if m.RefKind != ledger.RefSalesOrder || m.RefID != order.ID {
		t.Errorf("movement not traced to order: kind=%s ref=%s", m.RefKind, m.RefID)
	}
	wantNotes := fmt.Sprintf("Sold via sales order %s", order.Number)
	if m.Notes != wantNotes {
		t.Errorf("unexpected notes: %q", m.Notes)
	}
	if got := f.level(t); got != 6 {
		t.Errorf("expected level 6 after fulfillment, got %d", got)
	}
}

func TestFulfill_ExactStockToZero(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 5)
	order := f.confirmedOrder(t, 5)

	if _, err := f.svc.Fulfill(context.Background(), order.ID, FulfillInput{}, f.user); err != nil {
		t.Fatalf("fulfill order: %v", err)
	}
	if got := f.level(t); got != 0 {
		t.Errorf("expected level 0 after selling exact stock, got %d", got)
	}
}

func TestFulfill_RechecksStock(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 5)
	order := f.confirmedOrder(t, 5)

	// Stock drains between confirmation and fulfillment.
	if _, err := f.ledgerSvc.PostAdjustment(context.Background(), ledger.AdjustmentInput{
		ProductID:   f.product,
		WarehouseID: f.warehouse,
		Direction:   ledger.DirectionOut,
		Quantity:    3,
		Notes:       "shrinkage",
		PerformedBy: f.user,
	}); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	_, err := f.svc.Fulfill(context.Background(), order.ID, FulfillInput{}, f.user)
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
	if len(f.saleMovements()) != 0 {
		t.Error("failed fulfillment must post no sale movements")
	}

	reloaded, getErr := f.svc.GetByID(context.Background(), order.ID)
	if getErr != nil {
		t.Fatalf("reload order: %v", getErr)
	}
	if reloaded.Status != StatusConfirmed {
		t.Errorf("failed fulfillment must leave order confirmed, got %s", reloaded.Status)
	}
}

func TestFulfill_OnlyConfirmed(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 5)
	order := f.createOrder(t, 1)

	_, err := f.svc.Fulfill(context.Background(), order.ID, FulfillInput{}, f.user)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Message != "Can only fulfill confirmed sales orders" {
		t.Errorf("unexpected error: %v", err)
	}
	if len(f.saleMovements()) != 0 {
		t.Error("fulfilling a draft must post no movements")
	}
}

// --- Cancel / Delete ---

func TestCancel_FromDraftAndConfirmed(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 20)
	for _, order := range []*SalesOrder{f.createOrder(t, 1), f.confirmedOrder(t, 1)} {
		cancelled, err := f.svc.Cancel(context.Background(), order.ID, f.user)
		if err != nil {
			t.Fatalf("cancel order: %v", err)
		}
		if cancelled.Status != StatusCancelled {
			t.Errorf("expected status cancelled, got %s", cancelled.Status)
		}
	}
	if len(f.saleMovements()) != 0 {
		t.Error("cancellation must not post movements")
	}
}

func TestCancel_FulfilledForbidden(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 5)
	order := f.confirmedOrder(t, 1)
	if _, err := f.svc.Fulfill(context.Background(), order.ID, FulfillInput{}, f.user); err != nil {
		t.Fatalf("fulfill order: %v", err)
	}

	_, err := f.svc.Cancel(context.Background(), order.ID, f.user)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Message != "Cannot cancel fulfilled sales orders" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDelete_FulfilledForbidden(t *testing.T) {
	f := newFixture()
	f.seedStock(t, 5)
	order := f.confirmedOrder(t, 1)
	if _, err := f.svc.Fulfill(context.Background(), order.ID, FulfillInput{}, f.user); err != nil {
		t.Fatalf("fulfill order: %v", err)
	}

	err := f.svc.Delete(context.Background(), order.ID, f.user)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Message != "Cannot delete fulfilled sales orders" {
		t.Errorf("unexpected error: %v", err)
	}
	if _, getErr := f.svc.GetByID(context.Background(), order.ID); getErr != nil {
		t.Errorf("fulfilled order must survive delete attempt: %v", getErr)
	}
}

func TestDelete_DraftRemovesOrder(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1)

	if err := f.svc.Delete(context.Background(), order.ID, f.user); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), order.ID); !apperror.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}
