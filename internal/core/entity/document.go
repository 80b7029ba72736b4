package entity

import (
	"context"
	"strings"
	"time"

	"warebase/internal/core/apperror"
)

// Document is the base type for business transactions.
// Examples: PurchaseOrder, SalesOrder.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status is the current workflow state; allowed values and transitions
	// are defined by the concrete document type.
	Status string `db:"status" json:"status"`

	// Notes is an append-only note log; transitions add lines, never replace.
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document with generated ID and business date now.
func NewDocument(status string) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		Status:       status,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// AppendNote adds a prefixed line to the note log, preserving prior notes.
// Empty note is a no-op.
func (d *Document) AppendNote(prefix, note string) {
	if note == "" {
		return
	}
	d.Notes = strings.TrimSpace(d.Notes + "\n" + prefix + ": " + note)
}
