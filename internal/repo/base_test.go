package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
)

func TestBaseDB_BindsContext(t *testing.T) {
	conn := testdb.Open(t)
	base := NewBase[models.Category](conn)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, conn, base.DB(nil))
}

func TestBaseCRUD(t *testing.T) {
	conn := testdb.Open(t)
	base := NewBase[models.Category](conn)
	ctx := context.Background()

	veg := &models.Category{Name: "Vegetables"}
	require.NoError(t, base.Create(ctx, veg))
	require.NoError(t, base.Create(ctx, &models.Category{Name: "Dairy"}))

	rows, err := base.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dairy", rows[0].Name)

	ok, err := base.Exists(ctx, veg.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	affected, err := base.Update(ctx, veg.ID, map[string]any{"name": "Greens"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	loaded, err := base.FindByID(ctx, veg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Greens", loaded.Name)

	affected, err = base.Update(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = base.Delete(ctx, veg.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	affected, err = base.Delete(ctx, veg.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
