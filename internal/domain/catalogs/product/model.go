// Package product provides the Product catalog.
// Products are the goods tracked by the stock ledger.
package product

import (
	"context"

	"warebase/internal/core/apperror"
	"warebase/internal/core/entity"
	"warebase/internal/core/types"
)

// Product represents a stock-keeping unit.
// Code doubles as the SKU and is unique across the catalog.
type Product struct {
	entity.Catalog

	// Description is an optional long text
	Description *string `db:"description" json:"description,omitempty"`

	// Unit of measure for quantities (e.g. "pcs", "kg")
	Unit string `db:"unit" json:"unit"`

	// Price is the current list price; order lines snapshot their own
	// unit cost/price at creation, so changing this never alters history.
	Price types.Money `db:"price" json:"price"`

	// Category is an optional grouping label
	Category *string `db:"category" json:"category,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(sku, name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(sku, name),
		Unit:    "pcs",
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	if p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	return nil
}
