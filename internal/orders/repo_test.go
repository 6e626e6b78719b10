package orders

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/printyshop/printy/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func testOrder(number string) (*models.Order, []models.OrderItem) {
	order := &models.Order{
		OrderNumber:   number,
		CustomerEmail: "asha@example.com",
		CustomerName:  "Asha Rao",
		CustomerPhone: "+919876543210",
		ShippingAddress: models.Address{
			Address: "12 MG Road",
			City:    "Bengaluru",
			Pincode: "560001",
		},
		Subtotal:      798,
		TotalAmount:   798,
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: "razorpay",
		PaymentID:     "pay_abc123",
	}
	items := []models.OrderItem{{
		ProductID:      uuid.New(),
		Quantity:       2,
		Size:           "M",
		Color:          "Black",
		CustomImageURL: "https://cdn.example.com/custom-designs/1-abc.png",
		UnitPrice:      399,
		TotalPrice:     798,
	}}
	return order, items
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	repo := &GormRepo{DB: newTestDB(t)}
	ctx := context.Background()

	order, items := testOrder("PC1700000000000")
	require.NoError(t, repo.CreateOrder(ctx, order, items))
	require.NotEqual(t, uuid.Nil, order.ID)

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PC1700000000000", got.OrderNumber)
	assert.Equal(t, "Bengaluru", got.ShippingAddress.City)
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.ID, got.Items[0].OrderID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestCreateOrder_Validation(t *testing.T) {
	t.Parallel()

	repo := &GormRepo{DB: newTestDB(t)}
	ctx := context.Background()

	order, _ := testOrder("PC1")
	err := repo.CreateOrder(ctx, order, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	order, items := testOrder("PC2")
	order.TotalAmount = order.Subtotal + 1
	err = repo.CreateOrder(ctx, order, items)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrder_NumberConflict(t *testing.T) {
	t.Parallel()

	repo := &GormRepo{DB: newTestDB(t)}
	ctx := context.Background()

	first, firstItems := testOrder("PC1700000000000")
	require.NoError(t, repo.CreateOrder(ctx, first, firstItems))

	dup, dupItems := testOrder("PC1700000000000")
	err := repo.CreateOrder(ctx, dup, dupItems)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrderNumberConflict)
}

func TestListOrders_NewestFirst(t *testing.T) {
	t.Parallel()

	repo := &GormRepo{DB: newTestDB(t)}
	ctx := context.Background()

	for i, number := range []string{"PC1", "PC2", "PC3"} {
		order, items := testOrder(number)
		order.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.CreateOrder(ctx, order, items))
	}

	total, got, err := repo.ListOrders(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, got, 3)
	assert.Equal(t, "PC3", got[0].OrderNumber)
	assert.Equal(t, "PC1", got[2].OrderNumber)
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	repo := &GormRepo{DB: newTestDB(t)}
	ctx := context.Background()

	order, items := testOrder("PC1")
	require.NoError(t, repo.CreateOrder(ctx, order, items))

	got, err := repo.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)

	_, err = repo.UpdateStatus(ctx, order.ID, "teleported")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.UpdateStatus(ctx, uuid.New(), models.OrderStatusShipped)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Parallel()

	repo := &GormRepo{DB: newTestDB(t)}
	ctx := context.Background()

	order, items := testOrder("PC1")
	order.PaymentStatus = models.PaymentStatusPending
	require.NoError(t, repo.CreateOrder(ctx, order, items))

	got, err := repo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)

	_, err = repo.UpdatePaymentStatus(ctx, order.ID, "iou")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNumberFor(t *testing.T) {
	t.Parallel()

	ts := time.UnixMilli(1700000000000)
	assert.Equal(t, "PC1700000000000", NumberFor(ts))
}
