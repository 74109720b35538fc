package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
)

func TestCategoryLifecycle(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(conn)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "  Vegetables "})
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", created.Name)

	renamed := "Greens"
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Greens", updated.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCategoryValidation(t *testing.T) {
	svc, err := NewService(testdb.Open(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, CreateInput{Name: " "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeMissingFields))

	name := "x"
	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Name: &name})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	assert.True(t, pkgerrors.HasCode(svc.Delete(ctx, uuid.New()), pkgerrors.CodeNotFound))
}

func TestDeleteCategoryInUse(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(conn)
	require.NoError(t, err)
	category := testdb.MustCreateCategory(t, conn, "Dairy")
	item := testdb.MustCreateItem(t, conn, "Milk", "10", "1.00", "", nil)
	require.NoError(t, conn.Model(item).Update("category_id", category.ID).Error)

	err = svc.Delete(context.Background(), category.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}
