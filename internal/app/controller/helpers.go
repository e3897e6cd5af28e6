package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
	"github.com/ikkim/bookcity-backend/pkg/util"
)

// serviceError maps a service sentinel onto an HTTP response.
type serviceError struct {
	target error
	status int
	code   string
}

var serviceErrors = []serviceError{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
	{service.ErrUserExists, http.StatusConflict, apperrors.AuthUsernameExists},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.ResourceNotFound},
	{service.ErrInvalidUser, http.StatusBadRequest, apperrors.ValidationInvalidInput},

	{service.ErrPublicationNotFound, http.StatusNotFound, apperrors.PublicationNotFound},
	{service.ErrInvalidPublication, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrStockNotFound, http.StatusNotFound, apperrors.StockNotFound},
	{service.ErrNegativeStock, http.StatusBadRequest, apperrors.StockNegative},
	{service.ErrInsufficientStock, http.StatusConflict, apperrors.StockInsufficient},

	{service.ErrCustomerNotFound, http.StatusNotFound, apperrors.CustomerNotFound},
	{service.ErrInvalidCustomer, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrInvalidCustomerType, http.StatusBadRequest, apperrors.ValidationInvalidInput},

	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound},
	{service.ErrEmptyOrder, http.StatusBadRequest, apperrors.OrderEmpty},
	{service.ErrInvalidOrderItem, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrInvalidStatus, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrTotalMismatch, http.StatusBadRequest, apperrors.OrderTotalMismatch},

	{service.ErrSubscriptionNotFound, http.StatusNotFound, apperrors.SubscriptionNotFound},
	{service.ErrEmptySubscription, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrInvalidPeriod, http.StatusBadRequest, apperrors.SubscriptionInvalidPeriod},
	{service.ErrMissingPeriod, http.StatusBadRequest, apperrors.ValidationRequired},
	{service.ErrInvalidFrequency, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrSweepInProgress, http.StatusConflict, apperrors.SubscriptionSweepRunning},

	{service.ErrAdvertisementNotFound, http.StatusNotFound, apperrors.AdvertisementNotFound},
	{service.ErrEmptyAdvertisement, http.StatusBadRequest, apperrors.AdvertisementEmpty},
	{service.ErrInvalidCost, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrMissingPublicationDate, http.StatusBadRequest, apperrors.ValidationRequired},

	{service.ErrBillNotFound, http.StatusNotFound, apperrors.BillNotFound},

	{service.ErrUnknownReport, http.StatusNotFound, apperrors.ReportUnknownType},
	{service.ErrInvalidDateRange, http.StatusBadRequest, apperrors.ValidationInvalidRange},
	{service.ErrArchiveUnavailable, http.StatusBadRequest, apperrors.ReportArchiveFailed},
}

// respondServiceError writes the response for err. Unknown errors go
// through the storage error parser and are logged.
func respondServiceError(c *gin.Context, err error, action string) {
	log := middleware.GetLoggerFromContext(c)

	for _, se := range serviceErrors {
		if errors.Is(err, se.target) {
			log.Warn("Request rejected", map[string]interface{}{
				"action": action,
				"error":  err.Error(),
			})
			apperrors.RespondWithError(c, se.status, se.code, err.Error())
			return
		}
	}

	log.Error("Request failed", err, map[string]interface{}{
		"action": action,
	})
	apperrors.ParseAndRespond(c, err, action)
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name+": "+raw)
		return 0, false
	}
	return uint(id), true
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
// A missing parameter yields the zero time.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	d, err := util.ParseDate(raw)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, err.Error())
		return time.Time{}, false
	}
	return d, true
}
