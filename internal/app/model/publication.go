package model

import (
	"time"
)

type PublicationCategory string

const (
	CategoryNewspaper PublicationCategory = "Newspaper"
	CategoryMagazine  PublicationCategory = "Magazine"
	CategoryBook      PublicationCategory = "Book"
	CategoryOther     PublicationCategory = "Other"
)

type Publication struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	Category    PublicationCategory `gorm:"type:varchar(50);not null" json:"category"`
	Title       string              `gorm:"not null;index" json:"title"`
	Publisher   string              `json:"publisher"`
	PublishType string              `gorm:"type:varchar(50)" json:"publish_type"` // Daily, Weekly, Monthly, ...
	Price       float64             `gorm:"not null" json:"price"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	Stock *Stock `gorm:"foreignKey:PublicationID;constraint:OnDelete:CASCADE" json:"stock,omitempty"`
}

func (Publication) TableName() string {
	return "publications"
}

// Stock is the quantity-on-hand record of a single publication.
type Stock struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	PublicationID uint      `gorm:"not null;uniqueIndex" json:"publication_id"`
	Quantity      int       `gorm:"not null;default:0" json:"quantity"`
	LastUpdated   time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func (Stock) TableName() string {
	return "stock"
}

// StockDetail is a stock row joined with its publication title.
type StockDetail struct {
	PublicationID uint      `json:"publication_id"`
	Title         string    `json:"title"`
	Quantity      int       `json:"quantity"`
	LastUpdated   time.Time `json:"last_updated"`
}
