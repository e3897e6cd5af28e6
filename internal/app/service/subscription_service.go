package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrEmptySubscription    = errors.New("subscription has no items")
	ErrInvalidPeriod        = errors.New("subscription end date is before its start date")
	ErrMissingPeriod        = errors.New("subscription start_date and end_date are required")
	ErrInvalidFrequency     = errors.New("frequency must be Daily, Weekly or Monthly")
	ErrSweepInProgress      = errors.New("subscription sweep already running")
	errNotDue               = errors.New("subscription no longer due")
)

const (
	sweepLockTTL    = 10 * time.Minute
	defaultRunLimit = 30
)

// Locker guards the sweep across instances. Acquire reports false when
// another holder owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// SweepNotifier receives a summary after every sweep.
type SweepNotifier interface {
	NotifySweep(ctx context.Context, result *SweepResult) error
}

type SubscriptionItemInput struct {
	PublicationID uint `json:"publication_id" binding:"required"`
	Quantity      int  `json:"quantity" binding:"required,gt=0"`
}

type CreateSubscriptionInput struct {
	CustomerID uint                    `json:"customer_id" binding:"required"`
	StartDate  util.DateOnly           `json:"start_date"`
	EndDate    util.DateOnly           `json:"end_date"`
	Frequency  model.Frequency         `json:"frequency" binding:"required"`
	Items      []SubscriptionItemInput `json:"items" binding:"required,min=1,dive"`
}

type SweepFailure struct {
	SubscriptionID uint   `json:"subscription_id"`
	Error          string `json:"error"`
}

type SweepResult struct {
	RunID     uint               `json:"run_id"`
	RunDate   util.DateOnly      `json:"run_date"`
	Trigger   model.SweepTrigger `json:"trigger"`
	Due       int                `json:"due"`
	Generated int                `json:"generated"`
	Failed    int                `json:"failed"`
	OrderIDs  []uint             `json:"order_ids"`
	Failures  []SweepFailure     `json:"failures,omitempty"`
}

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, input CreateSubscriptionInput) (*model.Subscription, error)
	CancelSubscription(ctx context.Context, id uint) error
	ListSubscriptions(ctx context.Context) ([]model.SubscriptionSummary, error)
	GetSubscription(ctx context.Context, id uint) (*model.Subscription, error)
	GetDueSubscriptions(ctx context.Context, today time.Time) ([]model.Subscription, error)
	GenerateDueOrders(ctx context.Context, today time.Time, trigger model.SweepTrigger) (*SweepResult, error)
	ListRuns(ctx context.Context, limit int) ([]model.SubscriptionRun, error)
}

type subscriptionService struct {
	gateway          *db.Gateway
	subscriptionRepo repository.SubscriptionRepository
	customerRepo     repository.CustomerRepository
	publicationRepo  repository.PublicationRepository
	orderRepo        repository.OrderRepository
	placer           *orderPlacer
	locker           Locker
	notifier         SweepNotifier
}

// NewSubscriptionService builds the service. locker and notifier may be nil.
func NewSubscriptionService(
	gateway *db.Gateway,
	subscriptionRepo repository.SubscriptionRepository,
	customerRepo repository.CustomerRepository,
	publicationRepo repository.PublicationRepository,
	orderRepo repository.OrderRepository,
	stockRepo repository.StockRepository,
	billRepo repository.BillRepository,
	policy OrderPolicy,
	locker Locker,
	notifier SweepNotifier,
) SubscriptionService {
	return &subscriptionService{
		gateway:          gateway,
		subscriptionRepo: subscriptionRepo,
		customerRepo:     customerRepo,
		publicationRepo:  publicationRepo,
		orderRepo:        orderRepo,
		placer:           newOrderPlacer(orderRepo, customerRepo, stockRepo, billRepo, policy),
		locker:           locker,
		notifier:         notifier,
	}
}

// IsDue reports whether sub should produce an order on today.
// Dates are compared as calendar days.
func IsDue(sub model.Subscription, today time.Time) bool {
	today = util.DateOf(today, today.Location())
	start := sub.StartDate.Time
	end := sub.EndDate.Time

	if sub.Status != model.SubscriptionActive {
		return false
	}
	if today.Before(start) || today.After(end) {
		return false
	}
	if sub.LastGeneratedDate != nil && !sub.LastGeneratedDate.Before(today) {
		return false
	}

	switch sub.Frequency {
	case model.FrequencyDaily:
		return true
	case model.FrequencyWeekly:
		return today.Weekday() == start.Weekday()
	case model.FrequencyMonthly:
		return today.Day() == start.Day()
	}
	return false
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, input CreateSubscriptionInput) (*model.Subscription, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptySubscription
	}
	for _, item := range input.Items {
		if item.PublicationID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
	}
	if !input.Frequency.Valid() {
		return nil, ErrInvalidFrequency
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, ErrMissingPeriod
	}
	if input.EndDate.Before(input.StartDate.Time) {
		return nil, ErrInvalidPeriod
	}

	for _, item := range input.Items {
		if _, err := s.publicationRepo.FindByID(ctx, item.PublicationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPublicationNotFound
			}
			return nil, err
		}
	}

	sub := &model.Subscription{
		CustomerID: input.CustomerID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Frequency:  input.Frequency,
		Status:     model.SubscriptionActive,
	}
	for _, item := range input.Items {
		sub.Items = append(sub.Items, model.SubscriptionItem{
			PublicationID: item.PublicationID,
			Quantity:      item.Quantity,
		})
	}

	err := s.gateway.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.customerRepo.WithTx(tx).FindByID(ctx, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}
		return s.subscriptionRepo.WithTx(tx).Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Subscription created", map[string]interface{}{
		"subscription_id": sub.ID,
		"customer_id":     sub.CustomerID,
		"frequency":       sub.Frequency,
	})
	return sub, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id uint) error {
	if err := s.subscriptionRepo.UpdateStatus(ctx, id, model.SubscriptionCancelled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}

	logger.Info("Subscription cancelled", map[string]interface{}{
		"subscription_id": id,
	})
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context) ([]model.SubscriptionSummary, error) {
	return s.subscriptionRepo.FindAllWithDetails(ctx)
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id uint) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) GetDueSubscriptions(ctx context.Context, today time.Time) ([]model.Subscription, error) {
	active, err := s.subscriptionRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	due := []model.Subscription{}
	for _, sub := range active {
		if IsDue(sub, today) {
			due = append(due, sub)
		}
	}
	return due, nil
}

// GenerateDueOrders places one order for every subscription due on today.
// Each subscription commits or rolls back on its own; a failure is
// recorded and the sweep moves on.
func (s *subscriptionService) GenerateDueOrders(ctx context.Context, today time.Time, trigger model.SweepTrigger) (*SweepResult, error) {
	runDate := util.NewDateOnly(today)

	if s.locker != nil {
		key := "subscription-sweep:" + runDate.String()
		ok, err := s.locker.Acquire(ctx, key, sweepLockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !ok {
			logger.Warn("Subscription sweep skipped: lock held", map[string]interface{}{
				"run_date": runDate.String(),
			})
			return nil, ErrSweepInProgress
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
				logger.Error("Failed to release sweep lock", err, map[string]interface{}{
					"run_date": runDate.String(),
				})
			}
		}()
	}

	due, err := s.GetDueSubscriptions(ctx, runDate.Time)
	if err != nil {
		return nil, err
	}

	logger.Info("Subscription sweep started", map[string]interface{}{
		"run_date": runDate.String(),
		"trigger":  trigger,
		"due":      len(due),
	})

	result := &SweepResult{
		RunDate:  runDate,
		Trigger:  trigger,
		Due:      len(due),
		OrderIDs: []uint{},
	}

	for _, sub := range due {
		orderID, err := s.generateOne(ctx, sub.ID, runDate)
		switch {
		case err == nil:
			result.Generated++
			result.OrderIDs = append(result.OrderIDs, orderID)
		case errors.Is(err, errNotDue):
			logger.Debug("Subscription skipped, no longer due", map[string]interface{}{
				"subscription_id": sub.ID,
			})
		default:
			result.Failed++
			result.Failures = append(result.Failures, SweepFailure{SubscriptionID: sub.ID, Error: err.Error()})
			logger.Error("Failed to generate subscription order", err, map[string]interface{}{
				"subscription_id": sub.ID,
			})
		}
	}

	if err := s.recordRun(ctx, result); err != nil {
		return result, err
	}

	logger.Info("Subscription sweep finished", map[string]interface{}{
		"run_id":    result.RunID,
		"generated": result.Generated,
		"failed":    result.Failed,
	})

	if s.notifier != nil {
		if err := s.notifier.NotifySweep(ctx, result); err != nil {
			logger.Warn("Failed to send sweep summary", map[string]interface{}{
				"run_id": result.RunID,
				"error":  err.Error(),
			})
		}
	}
	return result, nil
}

func (s *subscriptionService) generateOne(ctx context.Context, subscriptionID uint, runDate util.DateOnly) (uint, error) {
	var orderID uint
	err := s.gateway.WithTx(ctx, func(tx *gorm.DB) error {
		subRepo := s.subscriptionRepo.WithTx(tx)
		sub, err := subRepo.FindByIDForUpdate(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if !IsDue(*sub, runDate.Time) {
			return errNotDue
		}
		count, err := s.orderRepo.WithTx(tx).CountBySubscriptionAndDate(ctx, sub.ID, runDate.Time)
		if err != nil {
			return err
		}
		if count > 0 {
			return errNotDue
		}
		if len(sub.Items) == 0 {
			return ErrEmptySubscription
		}

		input := CreateOrderInput{
			CustomerID:     sub.CustomerID,
			OrderDate:      runDate,
			DeliveryStatus: model.DeliveryPending,
			PaymentStatus:  model.PaymentUnpaid,
		}
		for _, item := range sub.Items {
			if item.Publication == nil {
				return ErrPublicationNotFound
			}
			input.Items = append(input.Items, OrderItemInput{
				PublicationID: item.PublicationID,
				Quantity:      item.Quantity,
				PricePerUnit:  item.Publication.Price,
			})
		}

		order, err := s.placer.place(ctx, tx, input, &sub.ID)
		if err != nil {
			return err
		}
		if err := subRepo.MarkGenerated(ctx, sub.ID, runDate); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	return orderID, err
}

func (s *subscriptionService) recordRun(ctx context.Context, result *SweepResult) error {
	ids, err := json.Marshal(result.OrderIDs)
	if err != nil {
		return err
	}

	run := &model.SubscriptionRun{
		RunDate:        result.RunDate,
		Trigger:        result.Trigger,
		DueCount:       result.Due,
		GeneratedCount: result.Generated,
		FailedCount:    result.Failed,
		OrderIDs:       datatypes.JSON(ids),
	}
	if err := s.subscriptionRepo.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record subscription run: %w", err)
	}
	result.RunID = run.ID
	return nil
}

func (s *subscriptionService) ListRuns(ctx context.Context, limit int) ([]model.SubscriptionRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	return s.subscriptionRepo.FindRuns(ctx, limit)
}
