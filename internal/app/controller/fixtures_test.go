package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/internal/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "controller-test-secret"

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine

	publicationRepo repository.PublicationRepository
	customerRepo    repository.CustomerRepository
	stockRepo       repository.StockRepository

	authService service.AuthService
	archiver    *fakeArchiver
}

type fakeArchiver struct {
	calls int
	ext   string
}

func (f *fakeArchiver) Archive(_ context.Context, body []byte, ext, _ string) (string, error) {
	f.calls++
	f.ext = ext
	return "https://cdn.example.com/reports/test." + ext, nil
}

// setupControllerTest wires every controller onto a gin engine backed by
// an in-memory database. Requests run as an admin unless asStaff is used.
func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	gateway := db.NewGateway(testDB)
	publicationRepo := repository.NewPublicationRepository(testDB)
	customerRepo := repository.NewCustomerRepository(testDB)
	stockRepo := repository.NewStockRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	subscriptionRepo := repository.NewSubscriptionRepository(testDB)
	adRepo := repository.NewAdvertisementRepository(testDB)
	billRepo := repository.NewBillRepository(testDB)
	reportRepo := repository.NewReportRepository(gateway)

	policy := service.OrderPolicy{StockPolicy: config.StockPolicyReject, Location: time.UTC}
	authService := service.NewAuthService(userRepo, testJWTSecret, time.Hour)
	billingService := service.NewBillingService(gateway, billRepo, orderRepo, customerRepo)
	orderService := service.NewOrderService(testDB, orderRepo, customerRepo, stockRepo, billRepo, policy)
	subscriptionService := service.NewSubscriptionService(gateway, subscriptionRepo, customerRepo, publicationRepo, orderRepo, stockRepo, billRepo, policy, nil, nil)
	adService := service.NewAdvertisementService(gateway, adRepo, customerRepo, publicationRepo, billRepo, 5)
	archiver := &fakeArchiver{}
	reportService := service.NewReportService(reportRepo, publicationRepo, customerRepo, orderRepo, adRepo, archiver, time.UTC)

	authController := NewAuthController(authService)
	publicationController := NewPublicationController(service.NewPublicationService(publicationRepo))
	customerController := NewCustomerController(service.NewCustomerService(customerRepo), billingService)
	stockController := NewStockController(service.NewStockService(stockRepo))
	orderController := NewOrderController(orderService)
	subscriptionController := NewSubscriptionController(subscriptionService, time.UTC)
	adController := NewAdvertisementController(adService)
	billController := NewBillController(billingService)
	reportController := NewReportController(reportService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/login", authController.Login)

	api := router.Group("")
	api.Use(setUserInContext)
	api.GET("/auth/me", authController.GetMe)
	api.POST("/auth/users", middleware.NewAuthMiddleware(testJWTSecret).RequireRole(model.RoleAdmin), authController.CreateUser)

	api.GET("/publications", publicationController.ListPublications)
	api.POST("/publications", publicationController.CreatePublication)
	api.GET("/publications/search", publicationController.SearchPublications)
	api.GET("/publications/:id", publicationController.GetPublication)
	api.PUT("/publications/:id", publicationController.UpdatePublication)
	api.DELETE("/publications/:id", publicationController.DeletePublication)

	api.GET("/customers", customerController.ListCustomers)
	api.POST("/customers", customerController.CreateCustomer)
	api.GET("/customers/:id", customerController.GetCustomer)
	api.PUT("/customers/:id", customerController.UpdateCustomer)
	api.DELETE("/customers/:id", customerController.DeleteCustomer)
	api.GET("/customers/:id/bills", customerController.GetCustomerBills)

	api.GET("/stock", stockController.ListStock)
	api.PUT("/stock/:publication_id", stockController.SetStock)
	api.POST("/stock/:publication_id/adjust", stockController.AdjustStock)

	api.GET("/orders", orderController.GetOrders)
	api.POST("/orders", orderController.CreateOrder)
	api.GET("/orders/recent", orderController.GetRecentOrders)
	api.GET("/orders/:id", orderController.GetOrderByID)
	api.GET("/orders/:id/items", orderController.GetOrderItems)
	api.PUT("/orders/:id/delivery", orderController.UpdateDeliveryStatus)
	api.PUT("/orders/:id/payment", orderController.UpdatePaymentStatus)
	api.GET("/orders/:id/invoice", orderController.GetInvoice)

	api.GET("/subscriptions", subscriptionController.ListSubscriptions)
	api.POST("/subscriptions", subscriptionController.CreateSubscription)
	api.GET("/subscriptions/due", subscriptionController.GetDueSubscriptions)
	api.POST("/subscriptions/generate", subscriptionController.GenerateDueOrders)
	api.GET("/subscriptions/runs", subscriptionController.GetRuns)
	api.GET("/subscriptions/:id", subscriptionController.GetSubscription)
	api.PUT("/subscriptions/:id/cancel", subscriptionController.CancelSubscription)

	api.GET("/advertisements", adController.ListAdvertisements)
	api.POST("/advertisements", adController.CreateAdvertisement)
	api.POST("/advertisements/quote", adController.QuoteCost)
	api.GET("/advertisements/:id", adController.GetAdvertisement)
	api.DELETE("/advertisements/:id", adController.DeleteAdvertisement)

	api.GET("/bills", billController.ListBills)
	api.GET("/bills/:id", billController.GetBill)
	api.PUT("/bills/:id/pay", billController.PayBill)

	api.GET("/reports/sales", reportController.SalesReport)
	api.GET("/reports/stock", reportController.StockReport)
	api.GET("/reports/statement", reportController.StatementReport)
	api.GET("/reports/dashboard", reportController.Dashboard)
	api.GET("/reports/:type/export", reportController.ExportReport)

	return &testEnv{
		db:              testDB,
		router:          router,
		publicationRepo: publicationRepo,
		customerRepo:    customerRepo,
		stockRepo:       stockRepo,
		authService:     authService,
		archiver:        archiver,
	}
}

// Test requests carry the acting user in these headers instead of a token.
const (
	testUserIDHeader = "X-Test-User-ID"
	testRoleHeader   = "X-Test-Role"
)

func setUserInContext(c *gin.Context) {
	role := model.RoleAdmin
	if r := c.GetHeader(testRoleHeader); r != "" {
		role = model.UserRole(r)
	}
	var userID uint = 1
	if raw := c.GetHeader(testUserIDHeader); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			userID = uint(id)
		}
	}
	c.Set(middleware.UserIDKey, userID)
	c.Set(middleware.UserRoleKey, role)
	c.Next()
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (env *testEnv) createPublication(t *testing.T, title string, price float64, stock int) *model.Publication {
	t.Helper()
	ctx := context.Background()
	pub := &model.Publication{
		Category:    model.CategoryNewspaper,
		Title:       title,
		Publisher:   "Lake House",
		PublishType: "Daily",
		Price:       price,
	}
	require.NoError(t, env.publicationRepo.Create(ctx, pub))
	require.NoError(t, env.stockRepo.SetQuantity(ctx, pub.ID, stock))
	return pub
}

func (env *testEnv) createCustomer(t *testing.T, name string) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		Name:         name,
		Address:      "12 Temple Road, Kandy",
		ContactNo:    "0771234567",
		CustomerType: model.CustomerPostpaid,
	}
	require.NoError(t, env.customerRepo.Create(context.Background(), customer))
	return customer
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
