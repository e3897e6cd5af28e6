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
	ErrPublicationNotFound = errors.New("publication not found")
	ErrInvalidPublication  = errors.New("publication needs a title and a non-negative price")
	ErrNegativeStock       = errors.New("stock quantity cannot be negative")
)

type PublicationInput struct {
	Category    model.PublicationCategory `json:"category" binding:"required,oneof=Newspaper Magazine Book Other"`
	Title       string                    `json:"title" binding:"required"`
	Publisher   string                    `json:"publisher"`
	PublishType string                    `json:"publish_type"`
	Price       float64                   `json:"price" binding:"gte=0"`
}

func (in PublicationInput) toModel() model.Publication {
	return model.Publication{
		Category:    in.Category,
		Title:       strings.TrimSpace(in.Title),
		Publisher:   strings.TrimSpace(in.Publisher),
		PublishType: strings.TrimSpace(in.PublishType),
		Price:       roundCents(in.Price),
	}
}

type PublicationService interface {
	ListPublications(ctx context.Context) ([]model.Publication, error)
	SearchPublications(ctx context.Context, query string) ([]model.Publication, error)
	GetPublication(ctx context.Context, id uint) (*model.Publication, error)
	CreatePublication(ctx context.Context, input PublicationInput) (*model.Publication, error)
	UpdatePublication(ctx context.Context, id uint, input PublicationInput) (*model.Publication, error)
	DeletePublication(ctx context.Context, id uint) error
	CountPublications(ctx context.Context) (int64, error)
}

type publicationService struct {
	publicationRepo repository.PublicationRepository
}

func NewPublicationService(publicationRepo repository.PublicationRepository) PublicationService {
	return &publicationService{publicationRepo: publicationRepo}
}

func (s *publicationService) ListPublications(ctx context.Context) ([]model.Publication, error) {
	return s.publicationRepo.FindAll(ctx)
}

// SearchPublications matches titles containing query; an empty query lists everything.
func (s *publicationService) SearchPublications(ctx context.Context, query string) ([]model.Publication, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.publicationRepo.FindAll(ctx)
	}
	return s.publicationRepo.SearchByTitle(ctx, query)
}

func (s *publicationService) GetPublication(ctx context.Context, id uint) (*model.Publication, error) {
	pub, err := s.publicationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublicationNotFound
		}
		return nil, err
	}
	return pub, nil
}

func (s *publicationService) CreatePublication(ctx context.Context, input PublicationInput) (*model.Publication, error) {
	pub := input.toModel()
	if pub.Title == "" || pub.Price < 0 {
		return nil, ErrInvalidPublication
	}

	if err := s.publicationRepo.Create(ctx, &pub); err != nil {
		return nil, err
	}

	logger.Info("Publication created", map[string]interface{}{
		"publication_id": pub.ID,
		"title":          pub.Title,
	})
	return &pub, nil
}

func (s *publicationService) UpdatePublication(ctx context.Context, id uint, input PublicationInput) (*model.Publication, error) {
	pub := input.toModel()
	if pub.Title == "" || pub.Price < 0 {
		return nil, ErrInvalidPublication
	}
	pub.ID = id

	if err := s.publicationRepo.Update(ctx, &pub); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublicationNotFound
		}
		return nil, err
	}

	logger.Info("Publication updated", map[string]interface{}{
		"publication_id": id,
	})
	return s.GetPublication(ctx, id)
}

func (s *publicationService) DeletePublication(ctx context.Context, id uint) error {
	if err := s.publicationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPublicationNotFound
		}
		return err
	}

	logger.Info("Publication deleted", map[string]interface{}{
		"publication_id": id,
	})
	return nil
}

func (s *publicationService) CountPublications(ctx context.Context) (int64, error) {
	return s.publicationRepo.Count(ctx)
}

type StockService interface {
	ListStock(ctx context.Context) ([]model.StockDetail, error)
	SetStock(ctx context.Context, publicationID uint, quantity int) (*model.Stock, error)
	AdjustStock(ctx context.Context, publicationID uint, delta int) (*model.Stock, error)
}

type stockService struct {
	stockRepo repository.StockRepository
}

func NewStockService(stockRepo repository.StockRepository) StockService {
	return &stockService{stockRepo: stockRepo}
}

func (s *stockService) ListStock(ctx context.Context) ([]model.StockDetail, error) {
	return s.stockRepo.FindAllWithDetails(ctx)
}

// SetStock records an absolute count, e.g. after a stock take.
func (s *stockService) SetStock(ctx context.Context, publicationID uint, quantity int) (*model.Stock, error) {
	if quantity < 0 {
		return nil, ErrNegativeStock
	}

	if err := s.stockRepo.SetQuantity(ctx, publicationID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}

	logger.Info("Stock quantity set", map[string]interface{}{
		"publication_id": publicationID,
		"quantity":       quantity,
	})
	return s.stockRepo.FindByPublicationID(ctx, publicationID)
}

// AdjustStock applies a delivery (positive) or a write-off (negative).
func (s *stockService) AdjustStock(ctx context.Context, publicationID uint, delta int) (*model.Stock, error) {
	if err := s.stockRepo.Adjust(ctx, publicationID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}

	logger.Info("Stock quantity adjusted", map[string]interface{}{
		"publication_id": publicationID,
		"delta":          delta,
	})
	return s.stockRepo.FindByPublicationID(ctx, publicationID)
}
