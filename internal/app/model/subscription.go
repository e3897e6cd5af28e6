package model

import (
	"time"

	"github.com/ikkim/bookcity-backend/pkg/util"

	"gorm.io/datatypes"
)

type Frequency string
type SubscriptionStatus string
type SweepTrigger string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"

	SubscriptionActive    SubscriptionStatus = "Active"
	SubscriptionCancelled SubscriptionStatus = "Cancelled"

	TriggerManual    SweepTrigger = "manual"
	TriggerScheduled SweepTrigger = "scheduled"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type Subscription struct {
	ID                uint               `gorm:"primarykey" json:"id"`
	CustomerID        uint               `gorm:"not null;index" json:"customer_id"`
	StartDate         util.DateOnly      `gorm:"type:date;not null" json:"start_date"`
	EndDate           util.DateOnly      `gorm:"type:date;not null" json:"end_date"`
	Frequency         Frequency          `gorm:"type:varchar(20);not null" json:"frequency"`
	Status            SubscriptionStatus `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	LastGeneratedDate *util.DateOnly     `gorm:"type:date" json:"last_generated_date"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`

	Customer *Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SubscriptionItem `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

type SubscriptionItem struct {
	ID             uint `gorm:"primarykey" json:"id"`
	SubscriptionID uint `gorm:"not null;index" json:"subscription_id"`
	PublicationID  uint `gorm:"not null;index" json:"publication_id"`
	Quantity       int  `gorm:"not null" json:"quantity"`

	Publication *Publication `gorm:"foreignKey:PublicationID" json:"publication,omitempty"`
}

func (SubscriptionItem) TableName() string {
	return "subscription_items"
}

// SubscriptionSummary is a subscription row joined with its customer name.
type SubscriptionSummary struct {
	ID                uint               `json:"id"`
	CustomerID        uint               `json:"customer_id"`
	CustomerName      string             `json:"customer_name"`
	StartDate         util.DateOnly      `json:"start_date"`
	EndDate           util.DateOnly      `json:"end_date"`
	Frequency         Frequency          `json:"frequency"`
	Status            SubscriptionStatus `json:"status"`
	LastGeneratedDate *util.DateOnly     `json:"last_generated_date"`
}

// SubscriptionRun records one execution of the due-order sweep.
type SubscriptionRun struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	RunDate        util.DateOnly  `gorm:"type:date;not null;index" json:"run_date"`
	Trigger        SweepTrigger   `gorm:"type:varchar(20);not null" json:"trigger"`
	DueCount       int            `json:"due_count"`
	GeneratedCount int            `json:"generated_count"`
	FailedCount    int            `json:"failed_count"`
	OrderIDs       datatypes.JSON `json:"order_ids"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (SubscriptionRun) TableName() string {
	return "subscription_runs"
}
