package repository

import (
	"context"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdvertisementRepository interface {
	Create(ctx context.Context, ad *model.Advertisement) error
	FindAllWithDetails(ctx context.Context) ([]model.AdvertisementDetail, error)
	FindByID(ctx context.Context, id uint) (*model.Advertisement, error)
	Delete(ctx context.Context, id uint) error
	CountByDate(ctx context.Context, date util.DateOnly) (int64, error)
	WithTx(tx *gorm.DB) AdvertisementRepository
}

type advertisementRepository struct {
	db *gorm.DB
}

func NewAdvertisementRepository(db *gorm.DB) AdvertisementRepository {
	return &advertisementRepository{db: db}
}

func (r *advertisementRepository) WithTx(tx *gorm.DB) AdvertisementRepository {
	return &advertisementRepository{db: tx}
}

func (r *advertisementRepository) Create(ctx context.Context, ad *model.Advertisement) error {
	logger.Debug("Creating advertisement in database", map[string]interface{}{
		"customer_id":    ad.CustomerID,
		"publication_id": ad.PublicationID,
	})

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ad).Error; err != nil {
		logger.Error("Failed to create advertisement in database", err, map[string]interface{}{
			"customer_id": ad.CustomerID,
		})
		return err
	}
	return nil
}

func (r *advertisementRepository) FindAllWithDetails(ctx context.Context) ([]model.AdvertisementDetail, error) {
	logger.Debug("Finding all advertisements in database")

	var ads []model.AdvertisementDetail
	err := r.db.WithContext(ctx).
		Table("advertisements a").
		Select("a.id, a.customer_id, c.name AS customer_name, a.publication_id, p.title AS publication_title, a.publication_date, a.cost, a.content").
		Joins("LEFT JOIN customers c ON c.id = a.customer_id").
		Joins("LEFT JOIN publications p ON p.id = a.publication_id").
		Order("a.publication_date DESC, a.id DESC").
		Scan(&ads).Error
	if err != nil {
		logger.Error("Failed to find advertisements in database", err)
		return nil, err
	}
	return ads, nil
}

func (r *advertisementRepository) FindByID(ctx context.Context, id uint) (*model.Advertisement, error) {
	var ad model.Advertisement
	if err := r.db.WithContext(ctx).First(&ad, id).Error; err != nil {
		logger.Error("Failed to find advertisement by ID in database", err, map[string]interface{}{
			"advertisement_id": id,
		})
		return nil, err
	}
	return &ad, nil
}

// Delete removes the advertisement only; its bill stays as a financial record.
func (r *advertisementRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting advertisement from database", map[string]interface{}{
		"advertisement_id": id,
	})

	result := r.db.WithContext(ctx).Delete(&model.Advertisement{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete advertisement from database", result.Error, map[string]interface{}{
			"advertisement_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *advertisementRepository) CountByDate(ctx context.Context, date util.DateOnly) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Advertisement{}).
		Where("publication_date = ?", date).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count advertisements by date", err)
		return 0, err
	}
	return count, nil
}
