package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is a code plus a message safe to show to clients.
type ErrorInfo struct {
	Code    string
	Message string
	Status  int
}

// ParseError maps a storage error to a client-facing code and message.
// context names the operation, e.g. "create customer" or "delete publication".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return internal(context)
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
			Status:  http.StatusNotFound,
		}
	}

	// Postgres 23505
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Postgres 23503
	if strings.Contains(errStr, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}

	// Postgres 23502
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
			Status:  http.StatusBadRequest,
		}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "bad connection") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The database is unavailable. Please try again later",
			Status:  http.StatusServiceUnavailable,
		}
	}

	return internal(context)
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "username") || strings.Contains(errStr, "idx_users_username") {
		return ErrorInfo{
			Code:    AuthUsernameExists,
			Message: "Username is already taken",
			Status:  http.StatusConflict,
		}
	}
	if strings.Contains(errStr, "publication_id") || strings.Contains(errStr, "idx_stock_publication_id") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Stock already exists for this publication",
			Status:  http.StatusConflict,
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "The record already exists",
		Status:  http.StatusConflict,
	}
}

func parseForeignKeyError(errStr string, context string) ErrorInfo {
	if strings.Contains(errStr, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The record is still referenced by " + referencedBy(errStr) + " and cannot be deleted",
			Status:  http.StatusConflict,
		}
	}
	if strings.Contains(errStr, "customer_id") || strings.Contains(errStr, "fk_customers") {
		return ErrorInfo{Code: CustomerNotFound, Message: "Customer does not exist", Status: http.StatusBadRequest}
	}
	if strings.Contains(errStr, "publication_id") || strings.Contains(errStr, "fk_publications") {
		return ErrorInfo{Code: PublicationNotFound, Message: "Publication does not exist", Status: http.StatusBadRequest}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record does not exist",
		Status:  http.StatusBadRequest,
	}
}

func referencedBy(errStr string) string {
	for _, table := range []string{"order_items", "orders", "subscriptions", "subscription_items", "advertisements", "bills"} {
		if strings.Contains(errStr, `table "`+table+`"`) {
			return strings.ReplaceAll(table, "_", " ")
		}
	}
	return "other records"
}

func notFoundMessage(context string) string {
	context = strings.ToLower(context)
	for _, entity := range []string{"publication", "customer", "order", "subscription", "advertisement", "bill", "user", "stock"} {
		if strings.Contains(context, entity) {
			return strings.ToUpper(entity[:1]) + entity[1:] + " not found"
		}
	}
	return "The requested record was not found"
}

func internal(context string) ErrorInfo {
	msg := "Something went wrong. Please try again later"
	if context != "" {
		msg = "Failed to " + context + ". Please try again later"
	}
	return ErrorInfo{
		Code:    InternalServerError,
		Message: msg,
		Status:  http.StatusInternalServerError,
	}
}

// ParseAndRespond writes the ErrorResponse for err.
func ParseAndRespond(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, info.Status, info.Code, info.Message)
}
