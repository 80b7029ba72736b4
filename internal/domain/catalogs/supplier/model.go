// Package supplier provides the Supplier catalog.
// Suppliers are the counterparties purchase orders are placed with.
package supplier

import (
	"context"
	"regexp"

	"warebase/internal/core/apperror"
	"warebase/internal/core/entity"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Supplier represents a goods supplier.
type Supplier struct {
	entity.Catalog

	// Contact person details
	ContactName  *string `db:"contact_name" json:"contactName,omitempty"`
	ContactEmail *string `db:"contact_email" json:"contactEmail,omitempty"`
	ContactPhone *string `db:"contact_phone" json:"contactPhone,omitempty"`

	// Address is the postal address
	Address *string `db:"address" json:"address,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.ContactEmail != nil && *s.ContactEmail != "" && !emailRe.MatchString(*s.ContactEmail) {
		return apperror.NewValidation("invalid contact email").
			WithDetail("field", "contactEmail")
	}

	return nil
}
