package order_repo

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warebase/internal/core/apperror"
)

func newTestRepo() *BaseOrderRepo[any] {
	cols := []string{"id", "number", "date", "status", "warehouse_id", "version"}
	return NewBaseOrderRepo[any](nil, "doc_purchase_orders", "doc_purchase_order_lines", cols, func() any { return nil })
}

func TestBaseOrderRepo_MapInsertErr_UniqueNumber(t *testing.T) {
	repo := newTestRepo()

	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "doc_purchase_orders_number_key",
	}

	err := repo.mapInsertErr(pgErr, "PO-202608-0001")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Equal(t, "doc_purchase_orders", appErr.Details["entity"])
	assert.Equal(t, "number", appErr.Details["field"])
	assert.Equal(t, "PO-202608-0001", appErr.Details["value"])
}

func TestBaseOrderRepo_MapInsertErr_WrappedUniqueViolation(t *testing.T) {
	repo := newTestRepo()

	// Drivers may hand back the pg error wrapped; errors.As must still find it.
	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})

	err := repo.mapInsertErr(wrapped, "SO-202608-0002")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestBaseOrderRepo_MapInsertErr_OtherErrorsStayOpaque(t *testing.T) {
	repo := newTestRepo()

	cause := errors.New("connection reset")
	err := repo.mapInsertErr(cause, "PO-202608-0003")
	require.Error(t, err)

	_, ok := apperror.AsAppError(err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, cause)

	// A foreign-key violation is not a duplicate number.
	fkErr := &pgconn.PgError{Code: "23503"}
	err = repo.mapInsertErr(fkErr, "PO-202608-0004")
	_, ok = apperror.AsAppError(err)
	assert.False(t, ok)
}

func TestBaseOrderRepo_ParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{"default", "", "date DESC", false},
		{"plain field", "number", "number ASC", false},
		{"descending", "-created_at", "created_at DESC", false},
		{"unknown field", "total; DROP TABLE", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
