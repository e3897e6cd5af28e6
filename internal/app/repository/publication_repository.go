package repository

import (
	"context"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
)

type PublicationRepository interface {
	FindAll(ctx context.Context) ([]model.Publication, error)
	FindByID(ctx context.Context, id uint) (*model.Publication, error)
	SearchByTitle(ctx context.Context, query string) ([]model.Publication, error)
	Create(ctx context.Context, publication *model.Publication) error
	Update(ctx context.Context, publication *model.Publication) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type publicationRepository struct {
	db *gorm.DB
}

func NewPublicationRepository(db *gorm.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

func (r *publicationRepository) FindAll(ctx context.Context) ([]model.Publication, error) {
	logger.Debug("Finding all publications in database")

	var publications []model.Publication
	if err := r.db.WithContext(ctx).Preload("Stock").Order("id DESC").Find(&publications).Error; err != nil {
		logger.Error("Failed to find publications in database", err)
		return nil, err
	}

	logger.Debug("Publications found in database", map[string]interface{}{
		"count": len(publications),
	})
	return publications, nil
}

func (r *publicationRepository) FindByID(ctx context.Context, id uint) (*model.Publication, error) {
	logger.Debug("Finding publication by ID in database", map[string]interface{}{
		"publication_id": id,
	})

	var publication model.Publication
	if err := r.db.WithContext(ctx).Preload("Stock").First(&publication, id).Error; err != nil {
		logger.Error("Failed to find publication by ID in database", err, map[string]interface{}{
			"publication_id": id,
		})
		return nil, err
	}

	return &publication, nil
}

func (r *publicationRepository) SearchByTitle(ctx context.Context, query string) ([]model.Publication, error) {
	logger.Debug("Searching publications by title in database", map[string]interface{}{
		"query": query,
	})

	var publications []model.Publication
	err := r.db.WithContext(ctx).
		Preload("Stock").
		Where("LOWER(title) LIKE LOWER(?)", "%"+query+"%").
		Order("title ASC").
		Find(&publications).Error
	if err != nil {
		logger.Error("Failed to search publications in database", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}

	logger.Debug("Publication search completed", map[string]interface{}{
		"query": query,
		"count": len(publications),
	})
	return publications, nil
}

// Create inserts the publication and its empty stock row in one transaction.
func (r *publicationRepository) Create(ctx context.Context, publication *model.Publication) error {
	logger.Debug("Creating publication in database", map[string]interface{}{
		"title": publication.Title,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Stock").Create(publication).Error; err != nil {
			return err
		}
		stock := model.Stock{
			PublicationID: publication.ID,
			Quantity:      0,
			LastUpdated:   time.Now(),
		}
		if err := tx.Create(&stock).Error; err != nil {
			return err
		}
		publication.Stock = &stock
		return nil
	})
	if err != nil {
		logger.Error("Failed to create publication in database", err, map[string]interface{}{
			"title": publication.Title,
		})
		return err
	}

	logger.Debug("Publication created in database", map[string]interface{}{
		"publication_id": publication.ID,
	})
	return nil
}

func (r *publicationRepository) Update(ctx context.Context, publication *model.Publication) error {
	logger.Debug("Updating publication in database", map[string]interface{}{
		"publication_id": publication.ID,
	})

	result := r.db.WithContext(ctx).
		Model(&model.Publication{ID: publication.ID}).
		Updates(map[string]interface{}{
			"category":     publication.Category,
			"title":        publication.Title,
			"publisher":    publication.Publisher,
			"publish_type": publication.PublishType,
			"price":        publication.Price,
		})
	if result.Error != nil {
		logger.Error("Failed to update publication in database", result.Error, map[string]interface{}{
			"publication_id": publication.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the stock row and the publication in one transaction.
func (r *publicationRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting publication from database", map[string]interface{}{
		"publication_id": id,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("publication_id = ?", id).Delete(&model.Stock{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Publication{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete publication from database", err, map[string]interface{}{
			"publication_id": id,
		})
		return err
	}

	logger.Debug("Publication deleted from database", map[string]interface{}{
		"publication_id": id,
	})
	return nil
}

func (r *publicationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Publication{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count publications", err)
		return 0, err
	}
	return count, nil
}
