package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
)

func newTestRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "code", "name", "is_active", "deletion_mark", "version"}, func() any { return nil })
}

func TestBaseCatalogRepo_ListFilterSQL(t *testing.T) {
	repo := newTestRepo()

	q := repo.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Or{
			squirrel.ILike{"name": "%bolt%"},
			squirrel.ILike{"code": "%bolt%"},
		})

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, code, name, is_active, deletion_mark, version FROM test_table "+
			"WHERE deletion_mark = $1 AND (name ILIKE $2 OR code ILIKE $3)",
		sql)
	assert.Equal(t, []any{false, "%bolt%", "%bolt%"}, args)
}

func TestBaseCatalogRepo_DeleteSQL(t *testing.T) {
	repo := newTestRepo()
	entityID := id.New()

	q := repo.Builder().
		Delete(repo.tableName).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM test_table WHERE id = $1", sql)
	require.Len(t, args, 1)
	assert.Equal(t, entityID, args[0])
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{"default", "", "name ASC", false},
		{"plain field", "code", "code ASC", false},
		{"descending", "-code", "code DESC", false},
		{"explicit ascending", "+name", "name ASC", false},
		{"unknown field", "sneaky; DROP TABLE", "", true},
		{"bare dash", "-", "", true},
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
