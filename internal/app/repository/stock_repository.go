package repository

import (
	"context"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	FindAllWithDetails(ctx context.Context) ([]model.StockDetail, error)
	FindByPublicationID(ctx context.Context, publicationID uint) (*model.Stock, error)
	FindByPublicationIDForUpdate(ctx context.Context, publicationID uint) (*model.Stock, error)
	SetQuantity(ctx context.Context, publicationID uint, quantity int) error
	Adjust(ctx context.Context, publicationID uint, delta int) error
	WithTx(tx *gorm.DB) StockRepository
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) WithTx(tx *gorm.DB) StockRepository {
	return &stockRepository{db: tx}
}

func (r *stockRepository) FindAllWithDetails(ctx context.Context) ([]model.StockDetail, error) {
	logger.Debug("Finding stock levels in database")

	var details []model.StockDetail
	err := r.db.WithContext(ctx).
		Table("stock s").
		Select("s.publication_id, p.title, s.quantity, s.last_updated").
		Joins("JOIN publications p ON p.id = s.publication_id").
		Order("p.title ASC").
		Scan(&details).Error
	if err != nil {
		logger.Error("Failed to find stock levels in database", err)
		return nil, err
	}

	logger.Debug("Stock levels found in database", map[string]interface{}{
		"count": len(details),
	})
	return details, nil
}

func (r *stockRepository) FindByPublicationID(ctx context.Context, publicationID uint) (*model.Stock, error) {
	return r.findByPublicationID(r.db.WithContext(ctx), publicationID)
}

// FindByPublicationIDForUpdate locks the row until the surrounding
// transaction ends. Only meaningful on a repository bound with WithTx.
func (r *stockRepository) FindByPublicationIDForUpdate(ctx context.Context, publicationID uint) (*model.Stock, error) {
	return r.findByPublicationID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), publicationID)
}

func (r *stockRepository) findByPublicationID(q *gorm.DB, publicationID uint) (*model.Stock, error) {
	var stock model.Stock
	if err := q.Where("publication_id = ?", publicationID).First(&stock).Error; err != nil {
		logger.Error("Failed to find stock in database", err, map[string]interface{}{
			"publication_id": publicationID,
		})
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) SetQuantity(ctx context.Context, publicationID uint, quantity int) error {
	logger.Debug("Setting stock quantity in database", map[string]interface{}{
		"publication_id": publicationID,
		"quantity":       quantity,
	})

	return r.update(ctx, publicationID, quantity)
}

// Adjust adds delta (possibly negative) to the on-hand quantity.
func (r *stockRepository) Adjust(ctx context.Context, publicationID uint, delta int) error {
	logger.Debug("Adjusting stock quantity in database", map[string]interface{}{
		"publication_id": publicationID,
		"delta":          delta,
	})

	return r.update(ctx, publicationID, gorm.Expr("quantity + ?", delta))
}

func (r *stockRepository) update(ctx context.Context, publicationID uint, quantity interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("publication_id = ?", publicationID).
		Updates(map[string]interface{}{
			"quantity":     quantity,
			"last_updated": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to update stock in database", result.Error, map[string]interface{}{
			"publication_id": publicationID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
