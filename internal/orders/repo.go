package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printyshop/printy/internal/models"
)

var (
	ErrValidation          = errors.New("validation")
	ErrNotFound            = errors.New("not found")
	ErrOrderNumberConflict = errors.New("order number conflict")
)

type GormRepo struct {
	DB *gorm.DB
}

// CreateOrder writes the order header, then its items. The two inserts are
// deliberately separate: if the item insert fails the order row stays behind
// and the caller must surface the partial write, not retry the payment.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}
	if order.TotalAmount != order.Subtotal+order.ShippingCost+order.TaxAmount {
		return fmt.Errorf("%w: total must equal subtotal + shipping + tax", ErrValidation)
	}

	if err := r.DB.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s: %w", order.OrderNumber, ErrOrderNumberConflict)
		}
		return err
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := r.DB.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("order %s items: %w", order.OrderNumber, err)
	}
	order.Items = items

	return nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Order
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func validStatus(s string) bool {
	switch s {
	case models.OrderStatusConfirmed, models.OrderStatusProcessing,
		models.OrderStatusShipped, models.OrderStatusCompleted, models.OrderStatusCancelled:
		return true
	}
	return false
}

func validPaymentStatus(s string) bool {
	switch s {
	case models.PaymentStatusPending, models.PaymentStatusPaid,
		models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return true
	}
	return false
}

func (r *GormRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

func (r *GormRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	if !validPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}
	return r.update(ctx, id, map[string]interface{}{"payment_status": status})
}

func (r *GormRepo) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return r.GetOrder(ctx, id)
}
