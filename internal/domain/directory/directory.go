// Package directory adapts the catalog services to the lookup interfaces
// consumed by the ledger and order workflow engines. Absent, inactive and
// soft-deleted records are all reported as NotFound, per line-item
// validation rules.
package directory

import (
	"context"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
	"warebase/internal/domain/catalogs/product"
	"warebase/internal/domain/catalogs/supplier"
	"warebase/internal/domain/catalogs/warehouse"
	"warebase/internal/domain/ledger"
)

// Lookup bundles the existence/status checks the workflow engines depend on.
type Lookup struct {
	products   *product.Service
	warehouses *warehouse.Service
	suppliers  *supplier.Service
}

// New creates a Lookup over the catalog services.
func New(products *product.Service, warehouses *warehouse.Service, suppliers *supplier.Service) *Lookup {
	return &Lookup{
		products:   products,
		warehouses: warehouses,
		suppliers:  suppliers,
	}
}

// FindProduct returns the product ref or NotFound.
func (l *Lookup) FindProduct(ctx context.Context, productID id.ID) (ledger.Ref, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return ledger.Ref{}, err
	}
	if !p.IsUsable() {
		return ledger.Ref{}, apperror.NewNotFound("Product", productID.String())
	}
	return ledger.Ref{ID: p.ID, Name: p.Name}, nil
}

// FindWarehouse returns the warehouse ref or NotFound.
func (l *Lookup) FindWarehouse(ctx context.Context, warehouseID id.ID) (ledger.Ref, error) {
	w, err := l.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return ledger.Ref{}, err
	}
	if !w.IsUsable() {
		return ledger.Ref{}, apperror.NewNotFound("Warehouse", warehouseID.String())
	}
	return ledger.Ref{ID: w.ID, Name: w.Name}, nil
}

// FindSupplier returns the supplier ref or NotFound.
func (l *Lookup) FindSupplier(ctx context.Context, supplierID id.ID) (ledger.Ref, error) {
	s, err := l.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return ledger.Ref{}, err
	}
	if !s.IsUsable() {
		return ledger.Ref{}, apperror.NewNotFound("Supplier", supplierID.String())
	}
	return ledger.Ref{ID: s.ID, Name: s.Name}, nil
}

// Compile-time interface checks.
var _ ledger.Directory = (*Lookup)(nil)
