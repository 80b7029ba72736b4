package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"warebase/internal/core/entity"
	"warebase/internal/core/id"
)

type testCatalog struct {
	entity.Catalog
	Unit     string  `db:"unit" json:"unit"`
	Category *string `db:"category" json:"category,omitempty"`
	Skipped  string  `db:"-" json:"skipped"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expected := []string{"id", "deletion_mark", "version", "code", "name", "is_active", "unit", "category"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Skipped")
	assert.NotContains(t, cols, "NoTag")
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
			Code:     "TEST",
			Name:     "Test Name",
			IsActive: true,
		},
		Unit:    "pcs",
		Skipped: "not stored",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, "pcs", m["unit"])

	_, hasSkipped := m["-"]
	assert.False(t, hasSkipped)
	_, hasNoTag := m["NoTag"]
	assert.False(t, hasNoTag)
}

func TestStructToMap_PointerInput(t *testing.T) {
	cat := &testCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.NewBaseEntity(),
			Code:       "PTR",
			Name:       "Pointer Input",
		},
	}

	m := StructToMap(cat)
	assert.Equal(t, "PTR", m["code"])
	assert.Equal(t, "Pointer Input", m["name"])
}
