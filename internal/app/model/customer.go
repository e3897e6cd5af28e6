package model

import (
	"time"
)

type CustomerType string

const (
	CustomerPrepaid  CustomerType = "Prepaid"
	CustomerPostpaid CustomerType = "Postpaid"
)

func (t CustomerType) Valid() bool {
	return t == CustomerPrepaid || t == CustomerPostpaid
}

type Customer struct {
	ID           uint         `gorm:"primarykey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Address      string       `gorm:"type:text" json:"address"`
	ContactNo    string       `gorm:"type:varchar(30)" json:"contact_no"`
	CustomerType CustomerType `gorm:"type:varchar(20);not null;default:'Prepaid'" json:"customer_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
