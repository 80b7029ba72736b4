// Package id provides object identifier generation for all entities.
// Identifiers are 24-character hex strings backed by a 12-byte object id
// (4-byte timestamp, 5-byte machine/process, 3-byte counter), so they sort
// roughly by creation time and stay index-friendly as TEXT columns.
package id

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID is an opaque 24-hex-character entity identifier.
type ID string

// Nil is the zero ID.
const Nil ID = ""

// New generates a new time-ordered ID.
func New() ID {
	return ID(primitive.NewObjectID().Hex())
}

// Parse validates s and converts it to an ID.
func Parse(s string) (ID, error) {
	if _, err := primitive.ObjectIDFromHex(s); err != nil {
		return Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(s), nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return parsed
}

// IsValid reports whether s has the 24-hex-character shape.
func IsValid(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// IsNil checks if id is zero-value.
func IsNil(id ID) bool {
	return id == Nil
}

// String implements fmt.Stringer.
func (i ID) String() string {
	return string(i)
}
