package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

type BillController struct {
	billingService service.BillingService
}

func NewBillController(billingService service.BillingService) *BillController {
	return &BillController{billingService: billingService}
}

// ListBills GET /api/v1/bills
func (ctrl *BillController) ListBills(c *gin.Context) {
	bills, err := ctrl.billingService.ListBills(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list bills")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bills": bills,
		"count": len(bills),
	})
}

// GetBill GET /api/v1/bills/:id
func (ctrl *BillController) GetBill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	bill, err := ctrl.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch bill")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bill": bill})
}

// PayBill PUT /api/v1/bills/:id/pay
func (ctrl *BillController) PayBill(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	bill, err := ctrl.billingService.MarkPaid(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "pay bill")
		return
	}

	log.Info("Bill paid", map[string]interface{}{
		"bill_id": bill.ID,
		"amount":  bill.DueAmount,
	})
	c.JSON(http.StatusOK, gin.H{"bill": bill})
}
