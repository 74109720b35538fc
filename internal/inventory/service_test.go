package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := testdb.OpenClient(t)
	repo := NewRepository(conn)
	stock, err := NewLedger(repo)
	require.NoError(t, err)
	journal, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(repo, stock, journal, client, nil)
	require.NoError(t, err)
	return svc, conn
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	provider := testdb.MustCreateProvider(t, conn, "Farm Co")

	created, err := svc.Create(ctx, CreateItemInput{
		Name:         "  Tomato ",
		Quantity:     decimal.NewFromInt(100),
		Unit:         "kg",
		PricePerUnit: testdb.DecPtr(t, "2.50"),
		ProviderID:   &provider.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tomato", created.Name)
	assert.False(t, created.IsLowStock)
	assert.True(t, created.LowStockAlert.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, created.Provider)
	assert.Equal(t, "Farm Co", created.Provider.Name)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Quantity.Equal(decimal.NewFromInt(100)))
}

func TestServiceCreateValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateItemInput{Unit: "kg"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeMissingFields))

	_, err = svc.Create(ctx, CreateItemInput{Name: "Rice"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeMissingFields))

	_, err = svc.Create(ctx, CreateItemInput{Name: "Rice", Unit: "kg", Quantity: decimal.NewFromInt(-1)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	missing := uuid.New()
	_, err = svc.Create(ctx, CreateItemInput{Name: "Rice", Unit: "kg", ProviderID: &missing})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestServiceUpdateLeavesQuantityAlone(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	item := testdb.MustCreateItem(t, conn, "Beans", "40", "1.10", "", nil)

	name := "Black Beans"
	updated, err := svc.Update(ctx, item.ID, UpdateItemInput{
		Name:          &name,
		LowStockAlert: testdb.DecPtr(t, "50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Black Beans", updated.Name)
	assert.True(t, updated.Quantity.Equal(decimal.NewFromInt(40)))
	assert.True(t, updated.IsLowStock)

	_, err = svc.Update(ctx, uuid.New(), UpdateItemInput{Name: &name})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestServiceAdjustStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	item := testdb.MustCreateItem(t, conn, "Lettuce", "10", "", "", nil)

	res, err := svc.AdjustStock(ctx, item.ID, AdjustStockInput{Delta: decimal.NewFromInt(-12), Reason: "spoilage"})
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, "-2", res.After)

	res, err = svc.AdjustStock(ctx, item.ID, AdjustStockInput{Delta: decimal.NewFromInt(30), Reason: "delivery"})
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Equal(t, "28", res.After)

	_, err = svc.AdjustStock(ctx, item.ID, AdjustStockInput{Delta: decimal.Zero, Reason: "noop"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	_, err = svc.AdjustStock(ctx, item.ID, AdjustStockInput{Delta: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeMissingFields))
	_, err = svc.AdjustStock(ctx, item.ID, AdjustStockInput{Delta: testdb.Dec(t, "0.0004"), Reason: "scale"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	var movements []models.StockMovement
	require.NoError(t, conn.Where("admin_item_id = ?", item.ID).Find(&movements).Error)
	require.Len(t, movements, 2)
	deltas := map[string]string{}
	for _, m := range movements {
		assert.Equal(t, enums.StockMovementManualAdjustment, m.Reason)
		assert.Nil(t, m.OrderID)
		require.NotNil(t, m.Note)
		deltas[*m.Note] = m.Delta.String()
	}
	assert.Equal(t, map[string]string{"spoilage": "-12", "delivery": "30"}, deltas)
}

func TestServiceCreateRejectsQuantityBeyondColumnScale(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateItemInput{Name: "Saffron", Unit: "kg", Quantity: testdb.Dec(t, "1.0005")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	_, err = svc.Create(ctx, CreateItemInput{Name: "Saffron", Unit: "kg", Quantity: testdb.Dec(t, "1"), LowStockAlert: testdb.DecPtr(t, "0.1234")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	var count int64
	require.NoError(t, conn.Model(&models.InventoryItem{}).Count(&count).Error)
	assert.Zero(t, count)

	created, err := svc.Create(ctx, CreateItemInput{Name: "Saffron", Unit: "kg", Quantity: testdb.Dec(t, "1.125")})
	require.NoError(t, err)
	assert.Equal(t, "1.125", created.Quantity.String())
}

func TestServiceUpdateClearsReferences(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	provider := testdb.MustCreateProvider(t, conn, "Farm Co")
	category := testdb.MustCreateCategory(t, conn, "Vegetables")
	item := testdb.MustCreateItem(t, conn, "Onion", "30", "", "", &provider.ID)
	require.NoError(t, conn.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Update("category_id", category.ID).Error)

	_, err := svc.Update(ctx, item.ID, UpdateItemInput{ProviderID: &provider.ID, ClearProvider: true})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	updated, err := svc.Update(ctx, item.ID, UpdateItemInput{ClearProvider: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ProviderID)
	assert.Nil(t, updated.Provider)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, category.ID, *updated.CategoryID)

	updated, err = svc.Update(ctx, item.ID, UpdateItemInput{ClearCategory: true})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
}

func TestServiceListSearchTreatsWildcardsLiterally(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	testdb.MustCreateItem(t, conn, "Flour 100%", "30", "", "", nil)
	testdb.MustCreateItem(t, conn, "Flour 1000g", "30", "", "", nil)
	testdb.MustCreateItem(t, conn, "rice_long", "30", "", "", nil)
	testdb.MustCreateItem(t, conn, "rice long", "30", "", "", nil)

	list, err := svc.List(ctx, pagination.Params{}, ListFilters{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Flour 100%", list.Items[0].Name)

	list, err = svc.List(ctx, pagination.Params{}, ListFilters{Query: "rice_"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "rice_long", list.Items[0].Name)
}

func TestServiceListLowStockOnly(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	testdb.MustCreateItem(t, conn, "Low", "15", "", "20", nil)
	testdb.MustCreateItem(t, conn, "High", "25", "", "20", nil)
	testdb.MustCreateItem(t, conn, "DefaultLow", "5", "", "", nil)

	all, err := svc.List(ctx, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)

	low, err := svc.List(ctx, pagination.Params{}, ListFilters{LowStockOnly: true})
	require.NoError(t, err)
	names := []string{}
	for _, item := range low.Items {
		names = append(names, item.Name)
		assert.True(t, item.IsLowStock)
	}
	assert.ElementsMatch(t, []string{"Low", "DefaultLow"}, names)

	page, err := svc.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.NextCursor)
}

func TestServiceDelete(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	item := testdb.MustCreateItem(t, conn, "Corn", "1", "", "", nil)

	require.NoError(t, svc.Delete(ctx, item.ID))
	err := svc.Delete(ctx, item.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
