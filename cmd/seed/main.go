// Package main provides a CLI tool for creating the database schema and
// seeding it with demo data.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"warebase/internal/core/id"
	"warebase/internal/infrastructure/config"
	"warebase/internal/infrastructure/storage/postgres"
	"warebase/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	warehouses := []struct {
		code    string
		name    string
		address string
		city    string
	}{
		{"WH-001", "Main Warehouse", "12 Dock Road", "Rotterdam"},
		{"WH-002", "Retail Store", "5 Market Street", "Amsterdam"},
		{"WH-003", "Returns Depot", "3 Service Lane", "Utrecht"},
	}

	warehouseIDs := make(map[string]id.ID, len(warehouses))
	for _, w := range warehouses {
		wid, err := upsertCatalogRow(ctx, pool, `
			INSERT INTO cat_warehouses (id, code, name, address, city, is_active, deletion_mark, version)
			VALUES ($1, $2, $3, $4, $5, true, false, 1)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, "cat_warehouses", w.code, w.code, w.name, w.address, w.city)
		if err != nil {
			log.Warnw("failed to seed warehouse", "code", w.code, "error", err)
			continue
		}
		warehouseIDs[w.code] = wid
	}

	suppliers := []struct {
		code    string
		name    string
		contact string
		email   string
	}{
		{"SUP-001", "Nordic Office Supplies", "Lena Berg", "sales@nordicoffice.example"},
		{"SUP-002", "Delta Electronics BV", "Pieter de Vries", "orders@delta-el.example"},
		{"SUP-003", "GreenPack Ltd", "Anna Kowalska", "hello@greenpack.example"},
	}

	for _, s := range suppliers {
		if _, err := upsertCatalogRow(ctx, pool, `
			INSERT INTO cat_suppliers (id, code, name, contact_name, contact_email, is_active, deletion_mark, version)
			VALUES ($1, $2, $3, $4, $5, true, false, 1)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, "cat_suppliers", s.code, s.code, s.name, s.contact, s.email); err != nil {
			log.Warnw("failed to seed supplier", "code", s.code, "error", err)
		}
	}

	products := []struct {
		sku      string
		name     string
		unit     string
		price    string
		category string
	}{
		{"SKU-000001", "Copy Paper A4 500 sheets", "pack", "4.90", "office"},
		{"SKU-000002", "Ballpoint Pen Blue", "pcs", "0.45", "office"},
		{"SKU-000003", "Desktop Stapler", "pcs", "7.20", "office"},
		{"SKU-000004", "USB-C Cable 1m", "pcs", "5.99", "electronics"},
		{"SKU-000005", "Wireless Mouse", "pcs", "14.50", "electronics"},
		{"SKU-000006", "Cardboard Box M", "pcs", "0.80", "packaging"},
	}

	productIDs := make(map[string]id.ID, len(products))
	for _, p := range products {
		pid, err := upsertCatalogRow(ctx, pool, `
			INSERT INTO cat_products (id, code, name, unit, price, category, is_active, deletion_mark, version)
			VALUES ($1, $2, $3, $4, $5, $6, true, false, 1)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, "cat_products", p.sku, p.sku, p.name, p.unit, p.price, p.category)
		if err != nil {
			log.Warnw("failed to seed product", "sku", p.sku, "error", err)
			continue
		}
		productIDs[p.sku] = pid
	}

	if err := seedOpeningStock(ctx, pool, log, productIDs, warehouseIDs); err != nil {
		return err
	}

	log.Info("demo data seeded successfully")
	return nil
}

// upsertCatalogRow inserts a catalog row and returns its id, fetching the
// existing one when the code is already taken.
func upsertCatalogRow(ctx context.Context, pool *postgres.Pool, insertSQL, table, code string, args ...any) (id.ID, error) {
	rowID := id.New()
	insertArgs := append([]any{rowID}, args...)

	tag, err := pool.Exec(ctx, insertSQL, insertArgs...)
	if err != nil {
		return id.Nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	if tag.RowsAffected() > 0 {
		return rowID, nil
	}

	err = pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE code = $1 AND deletion_mark = FALSE`, table),
		code,
	).Scan(&rowID)
	if err != nil {
		return id.Nil, fmt.Errorf("fetch existing %s row: %w", table, err)
	}
	return rowID, nil
}

// seedOpeningStock posts opening balances as adjustment movements.
// Skipped entirely when the ledger already has rows, so reruns do not
// inflate stock.
func seedOpeningStock(ctx context.Context, pool *postgres.Pool, log *logger.Logger, productIDs, warehouseIDs map[string]id.ID) error {
	var existing int64
	err := pool.QueryRow(ctx, `SELECT count(*) FROM stock_movements`).Scan(&existing)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check existing movements: %w", err)
	}
	if existing > 0 {
		log.Infow("stock ledger is not empty, skipping opening balances", "movements", existing)
		return nil
	}

	mainWH, ok := warehouseIDs["WH-001"]
	if !ok {
		log.Warn("main warehouse missing, skipping opening balances")
		return nil
	}

	openings := []struct {
		sku string
		qty int64
	}{
		{"SKU-000001", 200},
		{"SKU-000002", 1000},
		{"SKU-000003", 50},
		{"SKU-000004", 120},
		{"SKU-000005", 35},
		{"SKU-000006", 400},
	}

	seedActor := id.New()
	now := time.Now().UTC()

	for _, o := range openings {
		productID, ok := productIDs[o.sku]
		if !ok {
			continue
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO stock_movements (id, product_id, warehouse_id, direction, quantity, reason, ref_kind, ref_id, notes, performed_by, created_at)
			VALUES ($1, $2, $3, 'in', $4, 'adjustment', '', '', 'opening balance', $5, $6)
		`, id.New(), productID, mainWH, o.qty, seedActor, now)
		if err != nil {
			return fmt.Errorf("insert opening balance for %s: %w", o.sku, err)
		}
	}

	log.Infow("opening balances posted", "warehouse", "WH-001", "products", len(openings))
	return nil
}
