package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrAdvertisementNotFound  = errors.New("advertisement not found")
	ErrEmptyAdvertisement     = errors.New("advertisement content is empty")
	ErrInvalidCost            = errors.New("cost cannot be negative")
	ErrMissingPublicationDate = errors.New("publication_date is required")
)

type CreateAdvertisementInput struct {
	CustomerID      uint          `json:"customer_id" binding:"required"`
	PublicationID   uint          `json:"publication_id" binding:"required"`
	PublicationDate util.DateOnly `json:"publication_date"`
	Content         string        `json:"content" binding:"required"`
	Cost            float64       `json:"cost" binding:"gte=0"`
}

type CostQuote struct {
	Words int     `json:"words"`
	Rate  float64 `json:"rate"`
	Cost  float64 `json:"cost"`
}

type AdvertisementService interface {
	QuoteCost(content string) CostQuote
	AddAdvertisement(ctx context.Context, input CreateAdvertisementInput) (*model.Advertisement, error)
	ListAdvertisements(ctx context.Context) ([]model.AdvertisementDetail, error)
	GetAdvertisement(ctx context.Context, id uint) (*model.Advertisement, error)
	DeleteAdvertisement(ctx context.Context, id uint) error
	CountForDate(ctx context.Context, date time.Time) (int64, error)
}

type advertisementService struct {
	gateway         *db.Gateway
	adRepo          repository.AdvertisementRepository
	customerRepo    repository.CustomerRepository
	publicationRepo repository.PublicationRepository
	billRepo        repository.BillRepository
	ratePerWord     float64
}

func NewAdvertisementService(
	gateway *db.Gateway,
	adRepo repository.AdvertisementRepository,
	customerRepo repository.CustomerRepository,
	publicationRepo repository.PublicationRepository,
	billRepo repository.BillRepository,
	ratePerWord float64,
) AdvertisementService {
	return &advertisementService{
		gateway:         gateway,
		adRepo:          adRepo,
		customerRepo:    customerRepo,
		publicationRepo: publicationRepo,
		billRepo:        billRepo,
		ratePerWord:     ratePerWord,
	}
}

// QuoteCost prices content at the configured rate per whitespace separated word.
func (s *advertisementService) QuoteCost(content string) CostQuote {
	words := len(strings.Fields(content))
	return CostQuote{
		Words: words,
		Rate:  s.ratePerWord,
		Cost:  roundCents(float64(words) * s.ratePerWord),
	}
}

// AddAdvertisement stores the advertisement with its Unpaid bill. A zero
// cost is replaced by the quote.
func (s *advertisementService) AddAdvertisement(ctx context.Context, input CreateAdvertisementInput) (*model.Advertisement, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyAdvertisement
	}
	if input.Cost < 0 {
		return nil, ErrInvalidCost
	}
	if input.PublicationDate.IsZero() {
		return nil, ErrMissingPublicationDate
	}

	cost := roundCents(input.Cost)
	if cost == 0 {
		cost = s.QuoteCost(content).Cost
	}

	if _, err := s.publicationRepo.FindByID(ctx, input.PublicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublicationNotFound
		}
		return nil, err
	}

	ad := &model.Advertisement{
		CustomerID:      input.CustomerID,
		PublicationID:   input.PublicationID,
		PublicationDate: input.PublicationDate,
		Content:         content,
		Cost:            cost,
	}

	err := s.gateway.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.customerRepo.WithTx(tx).FindByID(ctx, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}
		if err := s.adRepo.WithTx(tx).Create(ctx, ad); err != nil {
			return err
		}
		return s.billRepo.WithTx(tx).Create(ctx, &model.Bill{
			CustomerID: ad.CustomerID,
			BillType:   model.BillTypeAdvertisement,
			RelatedID:  ad.ID,
			DueAmount:  ad.Cost,
			DueDate:    ad.PublicationDate,
			Status:     model.BillUnpaid,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Advertisement created", map[string]interface{}{
		"advertisement_id": ad.ID,
		"customer_id":      ad.CustomerID,
		"cost":             ad.Cost,
	})
	return ad, nil
}

func (s *advertisementService) ListAdvertisements(ctx context.Context) ([]model.AdvertisementDetail, error) {
	return s.adRepo.FindAllWithDetails(ctx)
}

func (s *advertisementService) GetAdvertisement(ctx context.Context, id uint) (*model.Advertisement, error) {
	ad, err := s.adRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdvertisementNotFound
		}
		return nil, err
	}
	return ad, nil
}

// DeleteAdvertisement removes the advertisement; its bill stays on the ledger.
func (s *advertisementService) DeleteAdvertisement(ctx context.Context, id uint) error {
	if err := s.adRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdvertisementNotFound
		}
		return err
	}

	logger.Info("Advertisement deleted", map[string]interface{}{
		"advertisement_id": id,
	})
	return nil
}

func (s *advertisementService) CountForDate(ctx context.Context, date time.Time) (int64, error) {
	return s.adRepo.CountByDate(ctx, util.NewDateOnly(date))
}
