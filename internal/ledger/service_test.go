package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

type fakeRepository struct {
	createFn func(ctx context.Context, movement *models.StockMovement) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, movement *models.StockMovement) error {
	if f.createFn != nil {
		return f.createFn(ctx, movement)
	}
	return nil
}

func (f *fakeRepository) ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.StockMovement, error) {
	return nil, nil
}

func (f *fakeRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.StockMovement, error) {
	return nil, nil
}

func TestServiceRecord(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	var created *models.StockMovement
	repo.createFn = func(ctx context.Context, movement *models.StockMovement) error {
		created = movement
		return nil
	}

	orderID := uuid.New()
	entry := Entry{
		AdminItemID: uuid.New(),
		OrderID:     &orderID,
		Reason:      enums.StockMovementOrderPlaced,
		Before:      decimal.NewFromInt(100),
		After:       decimal.NewFromInt(95),
		Note:        "  ",
	}
	got, err := svc.Record(context.Background(), nil, entry)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Same(t, created, got)
	assert.Equal(t, entry.AdminItemID, created.AdminItemID)
	assert.Equal(t, &orderID, created.OrderID)
	assert.Nil(t, created.ProviderOrderID)
	assert.True(t, created.Delta.Equal(decimal.NewFromInt(-5)))
	assert.Nil(t, created.Note, "blank notes are dropped")

	entry.Note = " recount "
	got, err = svc.Record(context.Background(), nil, entry)
	require.NoError(t, err)
	require.NotNil(t, got.Note)
	assert.Equal(t, "recount", *got.Note)
}

func TestServiceRecordValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{createFn: func(context.Context, *models.StockMovement) error {
		t.Fatal("invalid entries must not reach the repository")
		return nil
	}})
	require.NoError(t, err)

	valid := Entry{
		AdminItemID: uuid.New(),
		Reason:      enums.StockMovementManualAdjustment,
		Before:      decimal.NewFromInt(1),
		After:       decimal.NewFromInt(2),
	}
	cases := []struct {
		name   string
		mutate func(e *Entry)
		code   pkgerrors.Code
	}{
		{"missing item", func(e *Entry) { e.AdminItemID = uuid.Nil }, pkgerrors.CodeMissingFields},
		{"unknown reason", func(e *Entry) { e.Reason = "lost" }, pkgerrors.CodeValidation},
		{"zero delta", func(e *Entry) { e.After = e.Before }, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := valid
			tc.mutate(&entry)
			_, err := svc.Record(context.Background(), nil, entry)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, tc.code), err.Error())
		})
	}
}

func TestServiceRecordWrapsPersistenceErrors(t *testing.T) {
	svc, err := NewService(&fakeRepository{createFn: func(context.Context, *models.StockMovement) error {
		return errors.New("disk full")
	}})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), nil, Entry{
		AdminItemID: uuid.New(),
		Reason:      enums.StockMovementOrderCancelled,
		Before:      decimal.Zero,
		After:       decimal.NewFromInt(3),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePersistence))
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}

func TestRecordFollowsCallerTransaction(t *testing.T) {
	client, conn := testdb.OpenClient(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	item := testdb.MustCreateItem(t, conn, "Tomato", "10", "2.50", "", nil)

	boom := errors.New("rollback")
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if _, err := svc.Record(context.Background(), tx, Entry{
			AdminItemID: item.ID,
			Reason:      enums.StockMovementManualAdjustment,
			Before:      decimal.NewFromInt(10),
			After:       decimal.NewFromInt(12),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, conn.Model(&models.StockMovement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListByItemPaginatesNewestFirst(t *testing.T) {
	_, conn := testdb.OpenClient(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	item := testdb.MustCreateItem(t, conn, "Tomato", "10", "2.50", "", nil)
	other := testdb.MustCreateItem(t, conn, "Onion", "10", "1.00", "", nil)

	qty := decimal.NewFromInt(10)
	for i := 0; i < 3; i++ {
		next := qty.Add(decimal.NewFromInt(1))
		_, err := svc.Record(ctx, conn, Entry{AdminItemID: item.ID, Reason: enums.StockMovementManualAdjustment, Before: qty, After: next})
		require.NoError(t, err)
		qty = next
	}
	_, err = svc.Record(ctx, conn, Entry{AdminItemID: other.ID, Reason: enums.StockMovementManualAdjustment, Before: qty, After: qty.Neg()})
	require.NoError(t, err)

	first, err := svc.ListByItem(ctx, item.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Movements, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.True(t, first.Movements[0].QuantityAfter.Equal(decimal.NewFromInt(13)))

	second, err := svc.ListByItem(ctx, item.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Movements, 1)
	assert.Empty(t, second.NextCursor)
	assert.True(t, second.Movements[0].QuantityBefore.Equal(decimal.NewFromInt(10)))

	_, err = svc.ListByItem(ctx, uuid.Nil, pagination.Params{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeMissingFields))
	_, err = svc.ListByItem(ctx, item.ID, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListByOrder(t *testing.T) {
	_, conn := testdb.OpenClient(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	item := testdb.MustCreateItem(t, conn, "Tomato", "10", "2.50", "", nil)
	orderID := uuid.New()

	_, err = svc.Record(ctx, conn, Entry{AdminItemID: item.ID, OrderID: &orderID, Reason: enums.StockMovementOrderPlaced, Before: decimal.NewFromInt(10), After: decimal.NewFromInt(7)})
	require.NoError(t, err)
	_, err = svc.Record(ctx, conn, Entry{AdminItemID: item.ID, Reason: enums.StockMovementManualAdjustment, Before: decimal.NewFromInt(7), After: decimal.NewFromInt(9)})
	require.NoError(t, err)

	rows, err := svc.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.StockMovementOrderPlaced, rows[0].Reason)
	assert.True(t, rows[0].Delta.Equal(decimal.NewFromInt(-3)))

	_, err = svc.ListByOrder(ctx, uuid.Nil)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeMissingFields))
}
