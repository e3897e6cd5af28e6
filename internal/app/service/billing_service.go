package service

import (
	"context"
	"errors"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrBillNotFound = errors.New("bill not found")

type BillingService interface {
	ListBills(ctx context.Context) ([]model.BillDetail, error)
	GetBill(ctx context.Context, id uint) (*model.Bill, error)
	CustomerBills(ctx context.Context, customerID uint) ([]model.Bill, error)
	MarkPaid(ctx context.Context, id uint) (*model.Bill, error)
}

type billingService struct {
	gateway      *db.Gateway
	billRepo     repository.BillRepository
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
}

func NewBillingService(
	gateway *db.Gateway,
	billRepo repository.BillRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
) BillingService {
	return &billingService{
		gateway:      gateway,
		billRepo:     billRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

func (s *billingService) ListBills(ctx context.Context) ([]model.BillDetail, error) {
	return s.billRepo.FindAllWithDetails(ctx)
}

func (s *billingService) GetBill(ctx context.Context, id uint) (*model.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return bill, nil
}

func (s *billingService) CustomerBills(ctx context.Context, customerID uint) ([]model.Bill, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return s.billRepo.FindByCustomer(ctx, customerID)
}

// MarkPaid settles a bill. An order bill also marks its order paid.
// Paying an already paid bill changes nothing.
func (s *billingService) MarkPaid(ctx context.Context, id uint) (*model.Bill, error) {
	var bill *model.Bill
	err := s.gateway.WithTx(ctx, func(tx *gorm.DB) error {
		billRepo := s.billRepo.WithTx(tx)

		var err error
		bill, err = billRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bill.Status == model.BillPaid {
			return nil
		}

		if err := billRepo.UpdateStatus(ctx, bill.ID, model.BillPaid); err != nil {
			return err
		}
		bill.Status = model.BillPaid

		if bill.BillType == model.BillTypeOrder {
			err := s.orderRepo.WithTx(tx).UpdatePaymentStatus(ctx, bill.RelatedID, bill.Status.PaymentStatus())
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Paid bill refers to a missing order", map[string]interface{}{
					"bill_id":  bill.ID,
					"order_id": bill.RelatedID,
				})
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}

	logger.Info("Bill marked paid", map[string]interface{}{
		"bill_id":   bill.ID,
		"bill_type": bill.BillType,
	})
	return bill, nil
}
