package repository

import (
	"context"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	FindAllWithDetails(ctx context.Context) ([]model.BillDetail, error)
	FindByID(ctx context.Context, id uint) (*model.Bill, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Bill, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]model.Bill, error)
	FindByRelated(ctx context.Context, billType model.BillType, relatedID uint) (*model.Bill, error)
	UpdateStatus(ctx context.Context, id uint, status model.BillStatus) error
	WithTx(tx *gorm.DB) BillRepository
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) WithTx(tx *gorm.DB) BillRepository {
	return &billRepository{db: tx}
}

func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	logger.Debug("Creating bill in database", map[string]interface{}{
		"customer_id": bill.CustomerID,
		"bill_type":   bill.BillType,
		"related_id":  bill.RelatedID,
	})

	if err := r.db.WithContext(ctx).Create(bill).Error; err != nil {
		logger.Error("Failed to create bill in database", err, map[string]interface{}{
			"bill_type":  bill.BillType,
			"related_id": bill.RelatedID,
		})
		return err
	}
	return nil
}

func (r *billRepository) FindAllWithDetails(ctx context.Context) ([]model.BillDetail, error) {
	logger.Debug("Finding all bills in database")

	var bills []model.BillDetail
	err := r.db.WithContext(ctx).
		Table("bills b").
		Select("b.id, b.customer_id, c.name AS customer_name, b.bill_type, b.related_id, b.due_amount, b.due_date, b.status").
		Joins("LEFT JOIN customers c ON c.id = b.customer_id").
		Order("b.id DESC").
		Scan(&bills).Error
	if err != nil {
		logger.Error("Failed to find bills in database", err)
		return nil, err
	}
	return bills, nil
}

func (r *billRepository) FindByID(ctx context.Context, id uint) (*model.Bill, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

func (r *billRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Bill, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *billRepository) findByID(q *gorm.DB, id uint) (*model.Bill, error) {
	var bill model.Bill
	if err := q.First(&bill, id).Error; err != nil {
		logger.Error("Failed to find bill by ID in database", err, map[string]interface{}{
			"bill_id": id,
		})
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindByCustomer(ctx context.Context, customerID uint) ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("due_date DESC, id DESC").
		Find(&bills).Error
	if err != nil {
		logger.Error("Failed to find bills by customer", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}
	return bills, nil
}

func (r *billRepository) FindByRelated(ctx context.Context, billType model.BillType, relatedID uint) (*model.Bill, error) {
	var bill model.Bill
	err := r.db.WithContext(ctx).
		Where("bill_type = ? AND related_id = ?", billType, relatedID).
		First(&bill).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) UpdateStatus(ctx context.Context, id uint, status model.BillStatus) error {
	logger.Debug("Updating bill status in database", map[string]interface{}{
		"bill_id": id,
		"status":  status,
	})

	result := r.db.WithContext(ctx).Model(&model.Bill{ID: id}).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update bill status in database", result.Error, map[string]interface{}{
			"bill_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
