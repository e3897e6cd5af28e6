package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInvalidCustomer     = errors.New("customer needs a name")
	ErrInvalidCustomerType = errors.New("customer type must be Prepaid or Postpaid")
)

type CustomerInput struct {
	Name         string             `json:"name" binding:"required"`
	Address      string             `json:"address"`
	ContactNo    string             `json:"contact_no"`
	CustomerType model.CustomerType `json:"customer_type"`
}

func (in CustomerInput) toModel() (model.Customer, error) {
	c := model.Customer{
		Name:         strings.TrimSpace(in.Name),
		Address:      strings.TrimSpace(in.Address),
		ContactNo:    strings.TrimSpace(in.ContactNo),
		CustomerType: in.CustomerType,
	}
	if c.Name == "" {
		return c, ErrInvalidCustomer
	}
	if c.CustomerType == "" {
		c.CustomerType = model.CustomerPrepaid
	}
	if !c.CustomerType.Valid() {
		return c, ErrInvalidCustomerType
	}
	return c, nil
}

type CustomerService interface {
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uint) (*model.Customer, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, input CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error
	CountCustomers(ctx context.Context) (int64, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindAll(ctx)
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*model.Customer, error) {
	customer, err := input.toModel()
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, &customer); err != nil {
		return nil, err
	}

	logger.Info("Customer created", map[string]interface{}{
		"customer_id":   customer.ID,
		"customer_type": customer.CustomerType,
	})
	return &customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uint, input CustomerInput) (*model.Customer, error) {
	customer, err := input.toModel()
	if err != nil {
		return nil, err
	}
	customer.ID = id

	if err := s.customerRepo.Update(ctx, &customer); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return s.GetCustomer(ctx, id)
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uint) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	logger.Info("Customer deleted", map[string]interface{}{
		"customer_id": id,
	})
	return nil
}

func (s *customerService) CountCustomers(ctx context.Context) (int64, error) {
	return s.customerRepo.Count(ctx)
}
