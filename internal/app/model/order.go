package model

import (
	"time"

	"github.com/ikkim/bookcity-backend/pkg/util"
)

type DeliveryStatus string
type PaymentStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryDelivered DeliveryStatus = "Delivered"

	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

func (s DeliveryStatus) Valid() bool {
	return s == DeliveryPending || s == DeliveryDelivered
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CustomerID     uint           `gorm:"not null;index" json:"customer_id"`
	SubscriptionID *uint          `gorm:"index" json:"subscription_id,omitempty"` // set when generated by the subscription sweep
	OrderDate      util.DateOnly  `gorm:"type:date;not null;index" json:"order_date"`
	TotalAmount    float64        `gorm:"not null" json:"total_amount"`
	DeliveryStatus DeliveryStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"delivery_status"`
	PaymentStatus  PaymentStatus  `gorm:"type:varchar(20);not null;default:'Unpaid'" json:"payment_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Customer   *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	OrderID       uint    `gorm:"not null;index" json:"order_id"`
	PublicationID uint    `gorm:"not null;index" json:"publication_id"`
	Quantity      int     `gorm:"not null" json:"quantity"`
	PricePerUnit  float64 `gorm:"not null" json:"price_per_unit"`

	Publication *Publication `gorm:"foreignKey:PublicationID" json:"publication,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal is quantity times unit price.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.PricePerUnit
}

// OrderSummary is an order row joined with its customer name.
type OrderSummary struct {
	ID             uint           `json:"id"`
	CustomerID     uint           `json:"customer_id"`
	CustomerName   string         `json:"customer_name"`
	OrderDate      util.DateOnly  `json:"order_date"`
	TotalAmount    float64        `json:"total_amount"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
}

// OrderItemDetail is an order line joined with its publication title.
type OrderItemDetail struct {
	PublicationID uint    `json:"publication_id"`
	Title         string  `json:"title"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	Subtotal      float64 `json:"subtotal"`
}
