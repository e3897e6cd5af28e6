package repository

import (
	"context"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateItems(ctx context.Context, items []model.OrderItem) error
	FindAllWithDetails(ctx context.Context) ([]model.OrderSummary, error)
	FindRecent(ctx context.Context, limit int) ([]model.OrderSummary, error)
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindItems(ctx context.Context, orderID uint) ([]model.OrderItemDetail, error)
	CountPending(ctx context.Context) (int64, error)
	CountBySubscriptionAndDate(ctx context.Context, subscriptionID uint, date time.Time) (int64, error)
	UpdateDeliveryStatus(ctx context.Context, id uint, status model.DeliveryStatus) error
	UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) error
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

// Create inserts the order row only; items are written with CreateItems.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"customer_id":  order.CustomerID,
		"total_amount": order.TotalAmount,
	})

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"customer_id": order.CustomerID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error; err != nil {
		logger.Error("Failed to create order items in database", err, map[string]interface{}{
			"order_id": items[0].OrderID,
			"count":    len(items),
		})
		return err
	}
	return nil
}

func (r *orderRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders o").
		Select("o.id, o.customer_id, c.name AS customer_name, o.order_date, o.total_amount, o.delivery_status, o.payment_status").
		Joins("LEFT JOIN customers c ON c.id = o.customer_id").
		Order("o.id DESC")
}

func (r *orderRepository) FindAllWithDetails(ctx context.Context) ([]model.OrderSummary, error) {
	logger.Debug("Finding all orders in database")

	var orders []model.OrderSummary
	if err := r.summaryQuery(ctx).Scan(&orders).Error; err != nil {
		logger.Error("Failed to find orders in database", err)
		return nil, err
	}

	logger.Debug("Orders found in database", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindRecent(ctx context.Context, limit int) ([]model.OrderSummary, error) {
	logger.Debug("Finding recent orders in database", map[string]interface{}{
		"limit": limit,
	})

	var orders []model.OrderSummary
	if err := r.summaryQuery(ctx).Limit(limit).Scan(&orders).Error; err != nil {
		logger.Error("Failed to find recent orders in database", err)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("OrderItems.Publication").
		First(&order, id).Error
	if err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found in database", map[string]interface{}{
		"order_id":    order.ID,
		"items_count": len(order.OrderItems),
	})
	return &order, nil
}

func (r *orderRepository) FindItems(ctx context.Context, orderID uint) ([]model.OrderItemDetail, error) {
	var items []model.OrderItemDetail
	err := r.db.WithContext(ctx).
		Table("order_items oi").
		Select("oi.publication_id, COALESCE(p.title, '') AS title, oi.quantity, oi.price_per_unit AS unit_price, oi.quantity * oi.price_per_unit AS subtotal").
		Joins("LEFT JOIN publications p ON p.id = oi.publication_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.id ASC").
		Scan(&items).Error
	if err != nil {
		logger.Error("Failed to find order items in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("delivery_status = ?", model.DeliveryPending).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count pending orders", err)
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) CountBySubscriptionAndDate(ctx context.Context, subscriptionID uint, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("subscription_id = ? AND order_date = ?", subscriptionID, date).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count subscription orders", err, map[string]interface{}{
			"subscription_id": subscriptionID,
		})
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) UpdateDeliveryStatus(ctx context.Context, id uint, status model.DeliveryStatus) error {
	return r.updateColumn(ctx, id, "delivery_status", status)
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) error {
	return r.updateColumn(ctx, id, "payment_status", status)
}

func (r *orderRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": id,
		column:     value,
	})

	result := r.db.WithContext(ctx).Model(&model.Order{ID: id}).Update(column, value)
	if result.Error != nil {
		logger.Error("Failed to update order in database", result.Error, map[string]interface{}{
			"order_id": id,
			"column":   column,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
