package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (PUBLICATION_, STOCK_) ====================
	PublicationNotFound = "PUBLICATION_NOT_FOUND"
	StockNotFound       = "STOCK_NOT_FOUND"
	StockInsufficient   = "STOCK_INSUFFICIENT"
	StockNegative       = "STOCK_NEGATIVE"

	// ==================== Customers (CUSTOMER_) ====================
	CustomerNotFound = "CUSTOMER_NOT_FOUND"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderEmpty         = "ORDER_EMPTY"
	OrderTotalMismatch = "ORDER_TOTAL_MISMATCH"

	// ==================== Subscriptions (SUBSCRIPTION_) ====================
	SubscriptionNotFound      = "SUBSCRIPTION_NOT_FOUND"
	SubscriptionInvalidPeriod = "SUBSCRIPTION_INVALID_PERIOD"
	SubscriptionSweepRunning  = "SUBSCRIPTION_SWEEP_RUNNING"
	SubscriptionFutureRunDate = "SUBSCRIPTION_FUTURE_RUN_DATE"

	// ==================== Advertisements (AD_) ====================
	AdvertisementNotFound = "AD_NOT_FOUND"
	AdvertisementEmpty    = "AD_EMPTY_CONTENT"

	// ==================== Bills (BILL_) ====================
	BillNotFound = "BILL_NOT_FOUND"

	// ==================== Reports (REPORT_) ====================
	ReportUnknownType   = "REPORT_UNKNOWN_TYPE"
	ReportUnknownFormat = "REPORT_UNKNOWN_FORMAT"
	ReportArchiveFailed = "REPORT_ARCHIVE_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
