package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

type StockController struct {
	stockService service.StockService
}

func NewStockController(stockService service.StockService) *StockController {
	return &StockController{stockService: stockService}
}

type SetStockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ListStock GET /api/v1/stock
func (ctrl *StockController) ListStock(c *gin.Context) {
	stock, err := ctrl.stockService.ListStock(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stock": stock,
		"count": len(stock),
	})
}

// SetStock PUT /api/v1/stock/:publication_id
func (ctrl *StockController) SetStock(c *gin.Context) {
	publicationID, ok := parseID(c, "publication_id")
	if !ok {
		return
	}

	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	stock, err := ctrl.stockService.SetStock(c.Request.Context(), publicationID, *req.Quantity)
	if err != nil {
		respondServiceError(c, err, "update stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stock": stock})
}

// AdjustStock POST /api/v1/stock/:publication_id/adjust
func (ctrl *StockController) AdjustStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	publicationID, ok := parseID(c, "publication_id")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	stock, err := ctrl.stockService.AdjustStock(c.Request.Context(), publicationID, req.Delta)
	if err != nil {
		respondServiceError(c, err, "adjust stock")
		return
	}

	log.Info("Stock adjusted", map[string]interface{}{
		"publication_id": publicationID,
		"delta":          req.Delta,
		"quantity":       stock.Quantity,
	})
	c.JSON(http.StatusOK, gin.H{"stock": stock})
}
