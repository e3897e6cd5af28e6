package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/controller"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

// Controllers groups every HTTP handler set served by the router.
type Controllers struct {
	Auth          *controller.AuthController
	Publication   *controller.PublicationController
	Customer      *controller.CustomerController
	Stock         *controller.StockController
	Order         *controller.OrderController
	Subscription  *controller.SubscriptionController
	Advertisement *controller.AdvertisementController
	Bill          *controller.BillController
	Report        *controller.ReportController
	Events        *controller.EventsController // optional
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "BookCity API is running",
		})
	})

	ctrl := r.controllers

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", ctrl.Auth.Login)
	if ctrl.Events != nil {
		// authenticates its own handshake
		v1.GET("/events/ws", ctrl.Events.Subscribe)
	}

	api := v1.Group("")
	api.Use(r.authMiddleware.Authenticate())
	{
		auth := api.Group("/auth")
		{
			auth.GET("/me", ctrl.Auth.GetMe)
			auth.POST("/users", r.authMiddleware.RequireRole(model.RoleAdmin), ctrl.Auth.CreateUser)
		}

		publications := api.Group("/publications")
		{
			publications.GET("", ctrl.Publication.ListPublications)
			publications.POST("", ctrl.Publication.CreatePublication)
			publications.GET("/search", ctrl.Publication.SearchPublications)
			publications.GET("/:id", ctrl.Publication.GetPublication)
			publications.PUT("/:id", ctrl.Publication.UpdatePublication)
			publications.DELETE("/:id", ctrl.Publication.DeletePublication)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", ctrl.Customer.ListCustomers)
			customers.POST("", ctrl.Customer.CreateCustomer)
			customers.GET("/:id", ctrl.Customer.GetCustomer)
			customers.PUT("/:id", ctrl.Customer.UpdateCustomer)
			customers.DELETE("/:id", ctrl.Customer.DeleteCustomer)
			customers.GET("/:id/bills", ctrl.Customer.GetCustomerBills)
		}

		stock := api.Group("/stock")
		{
			stock.GET("", ctrl.Stock.ListStock)
			stock.PUT("/:publication_id", ctrl.Stock.SetStock)
			stock.POST("/:publication_id/adjust", ctrl.Stock.AdjustStock)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", ctrl.Order.GetOrders)
			orders.POST("", ctrl.Order.CreateOrder)
			orders.GET("/recent", ctrl.Order.GetRecentOrders)
			orders.GET("/:id", ctrl.Order.GetOrderByID)
			orders.GET("/:id/items", ctrl.Order.GetOrderItems)
			orders.PUT("/:id/delivery", ctrl.Order.UpdateDeliveryStatus)
			orders.PUT("/:id/payment", ctrl.Order.UpdatePaymentStatus)
			orders.GET("/:id/invoice", ctrl.Order.GetInvoice)
		}

		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.GET("", ctrl.Subscription.ListSubscriptions)
			subscriptions.POST("", ctrl.Subscription.CreateSubscription)
			subscriptions.GET("/due", ctrl.Subscription.GetDueSubscriptions)
			subscriptions.POST("/generate", ctrl.Subscription.GenerateDueOrders)
			subscriptions.GET("/runs", ctrl.Subscription.GetRuns)
			subscriptions.GET("/:id", ctrl.Subscription.GetSubscription)
			subscriptions.PUT("/:id/cancel", ctrl.Subscription.CancelSubscription)
		}

		advertisements := api.Group("/advertisements")
		{
			advertisements.GET("", ctrl.Advertisement.ListAdvertisements)
			advertisements.POST("", ctrl.Advertisement.CreateAdvertisement)
			advertisements.POST("/quote", ctrl.Advertisement.QuoteCost)
			advertisements.GET("/:id", ctrl.Advertisement.GetAdvertisement)
			advertisements.DELETE("/:id", ctrl.Advertisement.DeleteAdvertisement)
		}

		bills := api.Group("/bills")
		{
			bills.GET("", ctrl.Bill.ListBills)
			bills.GET("/:id", ctrl.Bill.GetBill)
			bills.PUT("/:id/pay", ctrl.Bill.PayBill)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/sales", ctrl.Report.SalesReport)
			reports.GET("/stock", ctrl.Report.StockReport)
			reports.GET("/statement", ctrl.Report.StatementReport)
			reports.GET("/dashboard", ctrl.Report.Dashboard)
			reports.GET("/:type/export", ctrl.Report.ExportReport)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Archive-URL")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
