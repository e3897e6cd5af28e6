package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

type AdvertisementController struct {
	advertisementService service.AdvertisementService
}

func NewAdvertisementController(advertisementService service.AdvertisementService) *AdvertisementController {
	return &AdvertisementController{advertisementService: advertisementService}
}

type QuoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListAdvertisements GET /api/v1/advertisements
func (ctrl *AdvertisementController) ListAdvertisements(c *gin.Context) {
	ads, err := ctrl.advertisementService.ListAdvertisements(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list advertisements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"advertisements": ads,
		"count":          len(ads),
	})
}

// GetAdvertisement GET /api/v1/advertisements/:id
func (ctrl *AdvertisementController) GetAdvertisement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ad, err := ctrl.advertisementService.GetAdvertisement(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch advertisement")
		return
	}

	c.JSON(http.StatusOK, gin.H{"advertisement": ad})
}

// QuoteCost POST /api/v1/advertisements/quote
func (ctrl *AdvertisementController) QuoteCost(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": ctrl.advertisementService.QuoteCost(req.Content)})
}

// CreateAdvertisement books an ad and bills the customer
// POST /api/v1/advertisements
func (ctrl *AdvertisementController) CreateAdvertisement(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateAdvertisementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	ad, err := ctrl.advertisementService.AddAdvertisement(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "create advertisement")
		return
	}

	log.Info("Advertisement booked", map[string]interface{}{
		"advertisement_id": ad.ID,
		"customer_id":      ad.CustomerID,
		"cost":             ad.Cost,
	})
	c.JSON(http.StatusCreated, gin.H{"advertisement": ad})
}

// DeleteAdvertisement DELETE /api/v1/advertisements/:id
func (ctrl *AdvertisementController) DeleteAdvertisement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.advertisementService.DeleteAdvertisement(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete advertisement")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Advertisement deleted"})
}
