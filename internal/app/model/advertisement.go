package model

import (
	"time"

	"github.com/ikkim/bookcity-backend/pkg/util"
)

type Advertisement struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	CustomerID      uint          `gorm:"not null;index" json:"customer_id"`
	PublicationID   uint          `gorm:"not null;index" json:"publication_id"`
	PublicationDate util.DateOnly `gorm:"type:date;not null;index" json:"publication_date"`
	Content         string        `gorm:"type:text;not null" json:"content"`
	Cost            float64       `gorm:"not null" json:"cost"`
	CreatedAt       time.Time     `json:"created_at"`

	Customer    Customer    `gorm:"foreignKey:CustomerID" json:"-"`
	Publication Publication `gorm:"foreignKey:PublicationID" json:"-"`
}

func (Advertisement) TableName() string {
	return "advertisements"
}

type AdvertisementDetail struct {
	ID               uint          `json:"id"`
	CustomerID       uint          `json:"customer_id"`
	CustomerName     string        `json:"customer_name"`
	PublicationID    uint          `json:"publication_id"`
	PublicationTitle string        `json:"publication_title"`
	PublicationDate  util.DateOnly `json:"publication_date"`
	Cost             float64       `json:"cost"`
	Content          string        `json:"content"`
}
