package repository

import (
	"context"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) CustomerRepository
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) WithTx(tx *gorm.DB) CustomerRepository {
	return &customerRepository{db: tx}
}

func (r *customerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	logger.Debug("Finding all customers in database")

	var customers []model.Customer
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&customers).Error; err != nil {
		logger.Error("Failed to find customers in database", err)
		return nil, err
	}

	logger.Debug("Customers found in database", map[string]interface{}{
		"count": len(customers),
	})
	return customers, nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	logger.Debug("Finding customer by ID in database", map[string]interface{}{
		"customer_id": id,
	})

	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		logger.Error("Failed to find customer by ID in database", err, map[string]interface{}{
			"customer_id": id,
		})
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	logger.Debug("Creating customer in database", map[string]interface{}{
		"name": customer.Name,
	})

	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"name": customer.Name,
		})
		return err
	}

	logger.Debug("Customer created in database", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	logger.Debug("Updating customer in database", map[string]interface{}{
		"customer_id": customer.ID,
	})

	result := r.db.WithContext(ctx).
		Model(&model.Customer{ID: customer.ID}).
		Updates(map[string]interface{}{
			"name":          customer.Name,
			"address":       customer.Address,
			"contact_no":    customer.ContactNo,
			"customer_type": customer.CustomerType,
		})
	if result.Error != nil {
		logger.Error("Failed to update customer in database", result.Error, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting customer from database", map[string]interface{}{
		"customer_id": id,
	})

	result := r.db.WithContext(ctx).Delete(&model.Customer{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete customer from database", result.Error, map[string]interface{}{
			"customer_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count customers", err)
		return 0, err
	}
	return count, nil
}
