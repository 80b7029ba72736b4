package entity

import (
	"context"

	"warebase/internal/core/apperror"
)

// Catalog is the base type for reference data.
// Examples: Products, Warehouses, Suppliers.
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier (unique per catalog)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// IsActive marks the record as usable in new operations.
	// Inactive records are kept for history but rejected by workflows.
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       code,
		Name:       name,
		IsActive:   true,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code can be auto-generated, so it's optional at creation
	// but required at save time

	return nil
}

// IsUsable reports whether the record may be referenced by new operations.
func (c *Catalog) IsUsable() bool {
	return c.IsActive && !c.DeletionMark
}
