package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/export"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidOrderItem  = errors.New("order item needs a publication, a positive quantity and a non-negative price")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrTotalMismatch     = errors.New("total amount does not match the sum of the items")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockNotFound     = errors.New("stock record not found for publication")
)

// totalTolerance absorbs float rounding when comparing a client total with the item sum.
const totalTolerance = 0.005

// OrderPolicy carries the business rules applied when placing an order.
type OrderPolicy struct {
	StockPolicy string
	BillDueDays int
	Location    *time.Location
}

func NewOrderPolicy(cfg config.BusinessConfig) OrderPolicy {
	return OrderPolicy{
		StockPolicy: cfg.StockPolicy,
		BillDueDays: cfg.OrderBillDueDays,
		Location:    cfg.Location,
	}
}

type OrderItemInput struct {
	PublicationID uint    `json:"publication_id" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required,gt=0"`
	PricePerUnit  float64 `json:"price_per_unit" binding:"gte=0"`
}

type CreateOrderInput struct {
	CustomerID     uint                 `json:"customer_id" binding:"required"`
	OrderDate      util.DateOnly        `json:"order_date"`
	TotalAmount    float64              `json:"total_amount" binding:"gte=0"`
	Items          []OrderItemInput     `json:"items" binding:"required,min=1,dive"`
	DeliveryStatus model.DeliveryStatus `json:"delivery_status"`
	PaymentStatus  model.PaymentStatus  `json:"payment_status"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.OrderSummary, error)
	RecentOrders(ctx context.Context, limit int) ([]model.OrderSummary, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	GetOrderItems(ctx context.Context, id uint) ([]model.OrderItemDetail, error)
	UpdateDeliveryStatus(ctx context.Context, id uint, status model.DeliveryStatus) error
	UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) error
	ExportInvoice(ctx context.Context, id uint) (string, error)
}

type orderService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	placer    *orderPlacer
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	stockRepo repository.StockRepository,
	billRepo repository.BillRepository,
	policy OrderPolicy,
) OrderService {
	return &orderService{
		db:        db,
		orderRepo: orderRepo,
		placer:    newOrderPlacer(orderRepo, customerRepo, stockRepo, billRepo, policy),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"customer_id": input.CustomerID,
		"item_count":  len(input.Items),
	})

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"customer_id": input.CustomerID,
			})
			panic(r)
		}
	}()

	order, err := s.placer.place(ctx, tx, input, nil)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"customer_id": input.CustomerID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"total_amount": order.TotalAmount,
	})
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	return s.orderRepo.FindAllWithDetails(ctx)
}

func (s *orderService) RecentOrders(ctx context.Context, limit int) ([]model.OrderSummary, error) {
	if limit <= 0 {
		limit = DashboardRecentOrders
	}
	return s.orderRepo.FindRecent(ctx, limit)
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrderItems(ctx context.Context, id uint) ([]model.OrderItemDetail, error) {
	if _, err := s.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.orderRepo.FindItems(ctx, id)
}

func (s *orderService) UpdateDeliveryStatus(ctx context.Context, id uint, status model.DeliveryStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	logger.Info("Updating delivery status", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	if err := s.orderRepo.UpdateDeliveryStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

// UpdatePaymentStatus changes the order and its bill together.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	logger.Info("Updating payment status", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := s.orderRepo.WithTx(tx).UpdatePaymentStatus(ctx, id, status); err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	billStatus := model.BillUnpaid
	if status == model.PaymentPaid {
		billStatus = model.BillPaid
	}

	billRepo := s.placer.billRepo.WithTx(tx)
	bill, err := billRepo.FindByRelated(ctx, model.BillTypeOrder, id)
	switch {
	case err == nil:
		if err := billRepo.UpdateStatus(ctx, bill.ID, billStatus); err != nil {
			tx.Rollback()
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Warn("Order has no bill to update", map[string]interface{}{
			"order_id": id,
		})
	default:
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *orderService) ExportInvoice(ctx context.Context, id uint) (string, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	return export.RenderInvoice(order), nil
}

// orderPlacer writes an order, its items, the stock decrements and the
// bill inside a caller-owned transaction. The subscription sweep reuses it.
type orderPlacer struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	stockRepo    repository.StockRepository
	billRepo     repository.BillRepository
	policy       OrderPolicy
}

func newOrderPlacer(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	stockRepo repository.StockRepository,
	billRepo repository.BillRepository,
	policy OrderPolicy,
) *orderPlacer {
	if policy.StockPolicy == "" {
		policy.StockPolicy = config.StockPolicyAllowNegative
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &orderPlacer{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		stockRepo:    stockRepo,
		billRepo:     billRepo,
		policy:       policy,
	}
}

func (p *orderPlacer) place(ctx context.Context, tx *gorm.DB, input CreateOrderInput, subscriptionID *uint) (*model.Order, error) {
	total, err := p.validate(&input)
	if err != nil {
		return nil, err
	}

	if _, err := p.customerRepo.WithTx(tx).FindByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order rejected: customer not found", map[string]interface{}{
				"customer_id": input.CustomerID,
			})
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	if err := p.decrementStock(ctx, tx, input.Items); err != nil {
		return nil, err
	}

	order := &model.Order{
		CustomerID:     input.CustomerID,
		SubscriptionID: subscriptionID,
		OrderDate:      input.OrderDate,
		TotalAmount:    total,
		DeliveryStatus: input.DeliveryStatus,
		PaymentStatus:  input.PaymentStatus,
	}
	orderRepo := p.orderRepo.WithTx(tx)
	if err := orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(input.Items))
	for i, in := range input.Items {
		items[i] = model.OrderItem{
			OrderID:       order.ID,
			PublicationID: in.PublicationID,
			Quantity:      in.Quantity,
			PricePerUnit:  in.PricePerUnit,
		}
	}
	if err := orderRepo.CreateItems(ctx, items); err != nil {
		return nil, err
	}
	order.OrderItems = items

	billStatus := model.BillUnpaid
	if order.PaymentStatus == model.PaymentPaid {
		billStatus = model.BillPaid
	}
	bill := &model.Bill{
		CustomerID: order.CustomerID,
		BillType:   model.BillTypeOrder,
		RelatedID:  order.ID,
		DueAmount:  order.TotalAmount,
		DueDate:    util.DateOnly{Time: order.OrderDate.AddDate(0, 0, p.policy.BillDueDays)},
		Status:     billStatus,
	}
	if err := p.billRepo.WithTx(tx).Create(ctx, bill); err != nil {
		return nil, err
	}

	return order, nil
}

// validate fills defaults and returns the order total.
func (p *orderPlacer) validate(input *CreateOrderInput) (float64, error) {
	if len(input.Items) == 0 {
		return 0, ErrEmptyOrder
	}

	sum := 0.0
	for _, item := range input.Items {
		if item.PublicationID == 0 || item.Quantity <= 0 || item.PricePerUnit < 0 {
			return 0, ErrInvalidOrderItem
		}
		sum += float64(item.Quantity) * item.PricePerUnit
	}
	sum = roundCents(sum)

	if input.DeliveryStatus == "" {
		input.DeliveryStatus = model.DeliveryPending
	}
	if input.PaymentStatus == "" {
		input.PaymentStatus = model.PaymentUnpaid
	}
	if !input.DeliveryStatus.Valid() || !input.PaymentStatus.Valid() {
		return 0, ErrInvalidStatus
	}

	if input.OrderDate.IsZero() {
		input.OrderDate = util.DateOnly{Time: util.Today(p.policy.Location)}
	}

	if input.TotalAmount == 0 {
		return sum, nil
	}
	if math.Abs(input.TotalAmount-sum) > totalTolerance {
		logger.Warn("Order rejected: total mismatch", map[string]interface{}{
			"customer_id":  input.CustomerID,
			"total_amount": input.TotalAmount,
			"items_sum":    sum,
		})
		return 0, ErrTotalMismatch
	}
	return roundCents(input.TotalAmount), nil
}

func (p *orderPlacer) decrementStock(ctx context.Context, tx *gorm.DB, items []OrderItemInput) error {
	stockRepo := p.stockRepo.WithTx(tx)

	// quantities per publication, in first-seen order
	requested := make(map[uint]int)
	var order []uint
	for _, item := range items {
		if _, ok := requested[item.PublicationID]; !ok {
			order = append(order, item.PublicationID)
		}
		requested[item.PublicationID] += item.Quantity
	}

	for _, publicationID := range order {
		qty := requested[publicationID]

		if p.policy.StockPolicy == config.StockPolicyReject {
			stock, err := stockRepo.FindByPublicationIDForUpdate(ctx, publicationID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", ErrStockNotFound, publicationID)
				}
				return err
			}
			if stock.Quantity < qty {
				logger.Warn("Order rejected: insufficient stock", map[string]interface{}{
					"publication_id": publicationID,
					"requested":      qty,
					"available":      stock.Quantity,
				})
				return fmt.Errorf("%w: publication %d has %d, %d requested", ErrInsufficientStock, publicationID, stock.Quantity, qty)
			}
		}

		if err := stockRepo.Adjust(ctx, publicationID, -qty); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrStockNotFound, publicationID)
			}
			return err
		}
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
