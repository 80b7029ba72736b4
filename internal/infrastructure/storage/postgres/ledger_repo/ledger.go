// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository. The stock_movements table is append-only; levels are
// always derived by aggregating signed quantities.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"warebase/internal/core/id"
	"warebase/internal/domain"
	"warebase/internal/domain/ledger"
	"warebase/internal/infrastructure/storage/postgres"
)

const movementsTable = "stock_movements"

var movementCols = []string{
	"id", "product_id", "warehouse_id", "direction", "quantity",
	"reason", "ref_kind", "ref_id", "notes", "performed_by", "created_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append batch inserts movements.
func (r *LedgerRepo) Append(ctx context.Context, movements []ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.ProductID, m.WarehouseID, string(m.Direction), m.Quantity,
				string(m.Reason), string(m.RefKind), m.RefID, m.Notes, m.PerformedBy, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(movementsTable).Columns(movementCols...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.ProductID, m.WarehouseID, string(m.Direction), m.Quantity,
			string(m.Reason), string(m.RefKind), m.RefID, m.Notes, m.PerformedBy, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// GetLevel returns sum(in) - sum(out) for the pair. No movements means 0.
func (r *LedgerRepo) GetLevel(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END),
			0
		)
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2
	`

	var level int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, productID, warehouseID).Scan(&level)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("get level: %w", err)
	}

	return level, nil
}

// GetLevelLocked returns the level after taking a transaction-scoped
// advisory lock on the (product, warehouse) pair. The lock serializes
// concurrent check-then-append sequences; it is released on commit or
// rollback.
func (r *LedgerRepo) GetLevelLocked(ctx context.Context, productID, warehouseID id.ID) (int64, error) {
	if r.txManager.GetTx(ctx) == nil {
		return 0, fmt.Errorf("GetLevelLocked requires transaction context")
	}

	querier := r.txManager.GetQuerier(ctx)
	lockSQL := `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`
	if _, err := querier.Exec(ctx, lockSQL, productID.String(), warehouseID.String()); err != nil {
		return 0, fmt.Errorf("acquire pair lock: %w", err)
	}

	return r.GetLevel(ctx, productID, warehouseID)
}

// GetLevelsByWarehouse returns one row per product with at least one
// movement in the warehouse.
func (r *LedgerRepo) GetLevelsByWarehouse(ctx context.Context, warehouseID id.ID) ([]ledger.Level, error) {
	sql := `
		SELECT product_id, warehouse_id,
			   SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END) AS quantity
		FROM stock_movements
		WHERE warehouse_id = $1
		GROUP BY product_id, warehouse_id
		ORDER BY product_id
	`

	var levels []ledger.Level
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &levels, sql, warehouseID); err != nil {
		return nil, fmt.Errorf("select levels by warehouse: %w", err)
	}

	return levels, nil
}

// GetLevelsByProduct returns one row per warehouse with at least one
// movement of the product.
func (r *LedgerRepo) GetLevelsByProduct(ctx context.Context, productID id.ID) ([]ledger.Level, error) {
	sql := `
		SELECT product_id, warehouse_id,
			   SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END) AS quantity
		FROM stock_movements
		WHERE product_id = $1
		GROUP BY product_id, warehouse_id
		ORDER BY warehouse_id
	`

	var levels []ledger.Level
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &levels, sql, productID); err != nil {
		return nil, fmt.Errorf("select levels by product: %w", err)
	}

	return levels, nil
}

// ListMovements returns movement history with filtering and pagination.
func (r *LedgerRepo) ListMovements(ctx context.Context, filter ledger.MovementFilter) (domain.ListResult[ledger.Movement], error) {
	result := domain.ListResult[ledger.Movement]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder.Select(movementCols...).From(movementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": string(*filter.Direction)})
	}
	if filter.Reason != nil {
		q = q.Where(squirrel.Eq{"reason": string(*filter.Reason)})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list movements: %w", err)
	}

	return result, nil
}

// GetMovementsByRef returns all movements traced to a reference document.
func (r *LedgerRepo) GetMovementsByRef(ctx context.Context, kind ledger.RefKind, refID id.ID) ([]ledger.Movement, error) {
	q := r.builder.Select(movementCols...).From(movementsTable).
		Where(squirrel.Eq{"ref_kind": string(kind)}).
		Where(squirrel.Eq{"ref_id": refID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements by ref: %w", err)
	}

	return movements, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
