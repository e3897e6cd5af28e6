package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

const defaultRecentOrders = 15

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type UpdateDeliveryStatusRequest struct {
	Status model.DeliveryStatus `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	Status model.PaymentStatus `json:"status" binding:"required"`
}

// GetOrders returns every order with its customer name
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	orders, err := ctrl.orderService.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetRecentOrders GET /api/v1/orders/recent?limit=
func (ctrl *OrderController) GetRecentOrders(c *gin.Context) {
	limit := defaultRecentOrders
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "limit must be a positive integer")
			return
		}
		limit = n
	}

	orders, err := ctrl.orderService.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err, "list recent orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetOrderItems GET /api/v1/orders/:id/items
func (ctrl *OrderController) GetOrderItems(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	items, err := ctrl.orderService.GetOrderItems(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch order items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// CreateOrder places an order and decrements stock
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.InvalidInput(c, err)
		return
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "create order")
		return
	}

	log.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"total_amount": order.TotalAmount,
	})
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// UpdateDeliveryStatus PUT /api/v1/orders/:id/delivery
func (ctrl *OrderController) UpdateDeliveryStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	if err := ctrl.orderService.UpdateDeliveryStatus(c.Request.Context(), id, req.Status); err != nil {
		respondServiceError(c, err, "update delivery status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery status updated"})
}

// UpdatePaymentStatus PUT /api/v1/orders/:id/payment
func (ctrl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	if err := ctrl.orderService.UpdatePaymentStatus(c.Request.Context(), id, req.Status); err != nil {
		respondServiceError(c, err, "update payment status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated"})
}

// GetInvoice renders a plain text invoice
// GET /api/v1/orders/:id/invoice
func (ctrl *OrderController) GetInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := ctrl.orderService.ExportInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "export invoice")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=invoice_"+strconv.FormatUint(uint64(id), 10)+".txt")
	c.String(http.StatusOK, invoice)
}
