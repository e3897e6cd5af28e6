package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
	"github.com/ikkim/bookcity-backend/pkg/util"
)

type SubscriptionController struct {
	subscriptionService service.SubscriptionService
	location            *time.Location
}

func NewSubscriptionController(subscriptionService service.SubscriptionService, location *time.Location) *SubscriptionController {
	if location == nil {
		location = time.UTC
	}
	return &SubscriptionController{
		subscriptionService: subscriptionService,
		location:            location,
	}
}

// runDate reads ?date= and falls back to today in the business location.
func (ctrl *SubscriptionController) runDate(c *gin.Context) (time.Time, bool) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return time.Time{}, false
	}
	if date.IsZero() {
		date = util.Today(ctrl.location)
	}
	return date, true
}

// ListSubscriptions GET /api/v1/subscriptions
func (ctrl *SubscriptionController) ListSubscriptions(c *gin.Context) {
	subscriptions, err := ctrl.subscriptionService.ListSubscriptions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list subscriptions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": subscriptions,
		"count":         len(subscriptions),
	})
}

// GetSubscription GET /api/v1/subscriptions/:id
func (ctrl *SubscriptionController) GetSubscription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	subscription, err := ctrl.subscriptionService.GetSubscription(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// CreateSubscription POST /api/v1/subscriptions
func (ctrl *SubscriptionController) CreateSubscription(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateSubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid subscription request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.InvalidInput(c, err)
		return
	}

	subscription, err := ctrl.subscriptionService.CreateSubscription(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "create subscription")
		return
	}

	log.Info("Subscription created", map[string]interface{}{
		"subscription_id": subscription.ID,
		"customer_id":     subscription.CustomerID,
		"frequency":       subscription.Frequency,
	})
	c.JSON(http.StatusCreated, gin.H{"subscription": subscription})
}

// CancelSubscription PUT /api/v1/subscriptions/:id/cancel
func (ctrl *SubscriptionController) CancelSubscription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.subscriptionService.CancelSubscription(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "cancel subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription cancelled"})
}

// GetDueSubscriptions GET /api/v1/subscriptions/due?date=
func (ctrl *SubscriptionController) GetDueSubscriptions(c *gin.Context) {
	date, ok := ctrl.runDate(c)
	if !ok {
		return
	}

	subscriptions, err := ctrl.subscriptionService.GetDueSubscriptions(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err, "list due subscriptions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":          date.Format(util.DateLayout),
		"subscriptions": subscriptions,
		"count":         len(subscriptions),
	})
}

// GenerateDueOrders runs the sweep for today, or for a missed past day
// POST /api/v1/subscriptions/generate?date=
func (ctrl *SubscriptionController) GenerateDueOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	date, ok := ctrl.runDate(c)
	if !ok {
		return
	}
	// a future run would stamp last_generated_date ahead of every real sweep
	if today := util.Today(ctrl.location); date.After(today) {
		apperrors.BadRequest(c, apperrors.SubscriptionFutureRunDate,
			"date cannot be after "+today.Format(util.DateLayout))
		return
	}

	result, err := ctrl.subscriptionService.GenerateDueOrders(c.Request.Context(), date, model.TriggerManual)
	if err != nil {
		respondServiceError(c, err, "generate subscription orders")
		return
	}

	log.Info("Subscription sweep finished", map[string]interface{}{
		"run_date":  date.Format(util.DateLayout),
		"due":       result.Due,
		"generated": result.Generated,
		"failed":    result.Failed,
	})
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// GetRuns GET /api/v1/subscriptions/runs?limit=
func (ctrl *SubscriptionController) GetRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := ctrl.subscriptionService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err, "list sweep runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}
