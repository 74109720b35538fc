package providers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
)

func TestProviderLifecycle(t *testing.T) {
	svc, err := NewService(testdb.Open(t))
	require.NoError(t, err)
	ctx := context.Background()

	email := "orders@farm.test"
	created, err := svc.Create(ctx, CreateInput{Name: "Farm", Email: &email})
	require.NoError(t, err)
	require.NotNil(t, created.Email)
	assert.Equal(t, email, *created.Email)

	phone := "555-0100"
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
	assert.Equal(t, "Farm", updated.Name)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteReferencedProvider(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(conn)
	require.NoError(t, err)
	ctx := context.Background()

	stocked := testdb.MustCreateProvider(t, conn, "Farm")
	testdb.MustCreateItem(t, conn, "Lettuce", "10", "1.00", "", &stocked.ID)
	assert.True(t, pkgerrors.HasCode(svc.Delete(ctx, stocked.ID), pkgerrors.CodeConflict))

	ordered := testdb.MustCreateProvider(t, conn, "Dairy")
	testdb.MustCreateProviderOrder(t, conn, ordered.ID, enums.ProviderOrderStatusPending)
	assert.True(t, pkgerrors.HasCode(svc.Delete(ctx, ordered.ID), pkgerrors.CodeConflict))

	assert.True(t, pkgerrors.HasCode(svc.Delete(ctx, uuid.New()), pkgerrors.CodeNotFound))
}
