package repository

import (
	"context"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *model.Subscription) error
	FindAllWithDetails(ctx context.Context) ([]model.SubscriptionSummary, error)
	FindByID(ctx context.Context, id uint) (*model.Subscription, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Subscription, error)
	FindActive(ctx context.Context) ([]model.Subscription, error)
	UpdateStatus(ctx context.Context, id uint, status model.SubscriptionStatus) error
	MarkGenerated(ctx context.Context, id uint, date util.DateOnly) error
	CreateRun(ctx context.Context, run *model.SubscriptionRun) error
	FindRuns(ctx context.Context, limit int) ([]model.SubscriptionRun, error)
	WithTx(tx *gorm.DB) SubscriptionRepository
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: tx}
}

// Create inserts the subscription and its items. The caller owns the transaction.
func (r *subscriptionRepository) Create(ctx context.Context, subscription *model.Subscription) error {
	logger.Debug("Creating subscription in database", map[string]interface{}{
		"customer_id": subscription.CustomerID,
		"frequency":   subscription.Frequency,
	})

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(subscription).Error; err != nil {
		logger.Error("Failed to create subscription in database", err, map[string]interface{}{
			"customer_id": subscription.CustomerID,
		})
		return err
	}

	for i := range subscription.Items {
		subscription.Items[i].SubscriptionID = subscription.ID
	}
	if len(subscription.Items) > 0 {
		if err := db.Omit(clause.Associations).Create(&subscription.Items).Error; err != nil {
			logger.Error("Failed to create subscription items in database", err, map[string]interface{}{
				"subscription_id": subscription.ID,
			})
			return err
		}
	}

	logger.Debug("Subscription created in database", map[string]interface{}{
		"subscription_id": subscription.ID,
		"items_count":     len(subscription.Items),
	})
	return nil
}

func (r *subscriptionRepository) FindAllWithDetails(ctx context.Context) ([]model.SubscriptionSummary, error) {
	logger.Debug("Finding all subscriptions in database")

	var subscriptions []model.SubscriptionSummary
	err := r.db.WithContext(ctx).
		Table("subscriptions s").
		Select("s.id, s.customer_id, c.name AS customer_name, s.start_date, s.end_date, s.frequency, s.status, s.last_generated_date").
		Joins("LEFT JOIN customers c ON c.id = s.customer_id").
		Order("s.id DESC").
		Scan(&subscriptions).Error
	if err != nil {
		logger.Error("Failed to find subscriptions in database", err)
		return nil, err
	}
	return subscriptions, nil
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id uint) (*model.Subscription, error) {
	return r.findByID(r.db.WithContext(ctx).Preload("Customer"), id)
}

// FindByIDForUpdate locks the subscription row for the surrounding transaction.
func (r *subscriptionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Subscription, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *subscriptionRepository) findByID(q *gorm.DB, id uint) (*model.Subscription, error) {
	logger.Debug("Finding subscription by ID in database", map[string]interface{}{
		"subscription_id": id,
	})

	var subscription model.Subscription
	if err := q.Preload("Items.Publication").First(&subscription, id).Error; err != nil {
		logger.Error("Failed to find subscription by ID in database", err, map[string]interface{}{
			"subscription_id": id,
		})
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) FindActive(ctx context.Context) ([]model.Subscription, error) {
	logger.Debug("Finding active subscriptions in database")

	var subscriptions []model.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ?", model.SubscriptionActive).
		Order("id ASC").
		Find(&subscriptions).Error
	if err != nil {
		logger.Error("Failed to find active subscriptions in database", err)
		return nil, err
	}

	logger.Debug("Active subscriptions found in database", map[string]interface{}{
		"count": len(subscriptions),
	})
	return subscriptions, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, id uint, status model.SubscriptionStatus) error {
	logger.Debug("Updating subscription status in database", map[string]interface{}{
		"subscription_id": id,
		"status":          status,
	})

	result := r.db.WithContext(ctx).Model(&model.Subscription{ID: id}).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update subscription status in database", result.Error, map[string]interface{}{
			"subscription_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subscriptionRepository) MarkGenerated(ctx context.Context, id uint, date util.DateOnly) error {
	result := r.db.WithContext(ctx).Model(&model.Subscription{ID: id}).Update("last_generated_date", date)
	if result.Error != nil {
		logger.Error("Failed to mark subscription generated", result.Error, map[string]interface{}{
			"subscription_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subscriptionRepository) CreateRun(ctx context.Context, run *model.SubscriptionRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		logger.Error("Failed to record subscription run", err, map[string]interface{}{
			"run_date": run.RunDate.String(),
		})
		return err
	}
	return nil
}

func (r *subscriptionRepository) FindRuns(ctx context.Context, limit int) ([]model.SubscriptionRun, error) {
	var runs []model.SubscriptionRun
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		logger.Error("Failed to find subscription runs", err)
		return nil, err
	}
	return runs, nil
}
