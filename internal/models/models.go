package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Prices are stored in minor currency units (paise).
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name        string    `gorm:"not null"              json:"name"`
	Description string    `gorm:"not null"              json:"description"`
	Category    string    `gorm:"not null;index"        json:"category"`
	BasePrice   int64     `gorm:"not null"              json:"base_price"`
	PrintPrice  int64     `gorm:"not null"              json:"print_price"`
	ImageURL    string    `json:"image_url"`
	Sizes       []string  `gorm:"serializer:json"       json:"sizes"`
	Colors      []string  `gorm:"serializer:json"       json:"colors"`
	IsActive    bool      `gorm:"default:true"          json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

type Order struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"  json:"id"`
	UserID          *uuid.UUID `gorm:"type:uuid;index"       json:"user_id"`
	OrderNumber     string     `gorm:"uniqueIndex;not null"  json:"order_number"`
	CustomerEmail   string     `gorm:"not null"              json:"customer_email"`
	CustomerName    string     `gorm:"not null"              json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	ShippingAddress Address    `gorm:"serializer:json"       json:"shipping_address"`
	Subtotal        int64      `gorm:"not null"              json:"subtotal"`
	ShippingCost    int64      `gorm:"not null;default:0"    json:"shipping_cost"`
	TaxAmount       int64      `gorm:"not null;default:0"    json:"tax_amount"`
	TotalAmount     int64      `gorm:"not null"              json:"total_amount"`
	Status          string     `gorm:"not null"              json:"status"`
	PaymentStatus   string     `gorm:"not null"              json:"payment_status"`
	PaymentMethod   string     `json:"payment_method"`
	PaymentID       string     `json:"payment_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE"  json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	OrderID            uuid.UUID `gorm:"type:uuid;index;not null"   json:"order_id"`
	ProductID          uuid.UUID `gorm:"type:uuid;not null"         json:"product_id"`
	Quantity           int       `gorm:"not null;check:quantity>0"  json:"quantity"`
	Size               string    `json:"size"`
	Color              string    `json:"color"`
	CustomImageURL     string    `json:"custom_image_url"`
	CustomInstructions string    `json:"custom_instructions"`
	UnitPrice          int64     `gorm:"not null"                   json:"unit_price"`
	TotalPrice         int64     `gorm:"not null"                   json:"total_price"`
	CreatedAt          time.Time `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
