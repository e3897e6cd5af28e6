package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
)

type CustomerController struct {
	customerService service.CustomerService
	billingService  service.BillingService
}

func NewCustomerController(customerService service.CustomerService, billingService service.BillingService) *CustomerController {
	return &CustomerController{
		customerService: customerService,
		billingService:  billingService,
	}
}

// ListCustomers GET /api/v1/customers
func (ctrl *CustomerController) ListCustomers(c *gin.Context) {
	customers, err := ctrl.customerService.ListCustomers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"count":     len(customers),
	})
}

// GetCustomer GET /api/v1/customers/:id
func (ctrl *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	customer, err := ctrl.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// CreateCustomer POST /api/v1/customers
func (ctrl *CustomerController) CreateCustomer(c *gin.Context) {
	var input service.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	customer, err := ctrl.customerService.CreateCustomer(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "create customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// UpdateCustomer PUT /api/v1/customers/:id
func (ctrl *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input service.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	customer, err := ctrl.customerService.UpdateCustomer(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, "update customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// DeleteCustomer DELETE /api/v1/customers/:id
func (ctrl *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

// GetCustomerBills GET /api/v1/customers/:id/bills
func (ctrl *CustomerController) GetCustomerBills(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	bills, err := ctrl.billingService.CustomerBills(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch customer bills")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bills": bills,
		"count": len(bills),
	})
}
