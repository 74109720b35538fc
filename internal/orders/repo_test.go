package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-backoffice/internal/testdb"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

func TestFindPendingPastDeadline(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	customer := testdb.MustCreateCustomer(t, conn, "Corner Deli")
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)
	earlier := now.Add(-48 * time.Hour)
	future := now.Add(time.Hour)

	seed := func(status enums.OrderStatus, deadline *time.Time) *models.Order {
		order := &models.Order{CustomerID: customer.ID, Status: status, PaymentDeadline: deadline}
		require.NoError(t, repo.CreateOrder(context.Background(), order))
		return order
	}
	overdue := seed(enums.OrderStatusPending, &past)
	oldest := seed(enums.OrderStatusPending, &earlier)
	seed(enums.OrderStatusPending, &future)
	seed(enums.OrderStatusPending, nil)
	seed(enums.OrderStatusConfirmed, &past)

	got, err := repo.FindPendingPastDeadline(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, oldest.ID, got[0].ID)
	require.Equal(t, overdue.ID, got[1].ID)
}
