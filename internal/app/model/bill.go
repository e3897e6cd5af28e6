package model

import (
	"time"

	"github.com/ikkim/bookcity-backend/pkg/util"
)

type BillType string
type BillStatus string

const (
	BillTypeOrder         BillType = "Order"
	BillTypeAdvertisement BillType = "Advertisement"

	BillUnpaid BillStatus = "Unpaid"
	BillPaid   BillStatus = "Paid"
)

func (s BillStatus) Valid() bool {
	return s == BillUnpaid || s == BillPaid
}

// Bill links an order or an advertisement to an amount owed.
// RelatedID points into orders or advertisements depending on BillType.
type Bill struct {
	ID         uint          `gorm:"primarykey" json:"id"`
	CustomerID uint          `gorm:"not null;index" json:"customer_id"`
	BillType   BillType      `gorm:"type:varchar(20);not null;index:idx_bills_related" json:"bill_type"`
	RelatedID  uint          `gorm:"not null;index:idx_bills_related" json:"related_id"`
	DueAmount  float64       `gorm:"not null" json:"due_amount"`
	DueDate    util.DateOnly `gorm:"type:date;not null" json:"due_date"`
	Status     BillStatus    `gorm:"type:varchar(20);not null;default:'Unpaid'" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Bill) TableName() string {
	return "bills"
}

type BillDetail struct {
	ID           uint          `json:"id"`
	CustomerID   uint          `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	BillType     BillType      `json:"bill_type"`
	RelatedID    uint          `json:"related_id"`
	DueAmount    float64       `json:"due_amount"`
	DueDate      util.DateOnly `json:"due_date"`
	Status       BillStatus    `json:"status"`
}

// PaymentStatus maps a bill status onto the matching order payment status.
func (s BillStatus) PaymentStatus() PaymentStatus {
	if s == BillPaid {
		return PaymentPaid
	}
	return PaymentUnpaid
}
