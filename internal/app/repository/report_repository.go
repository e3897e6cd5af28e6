package repository

import (
	"context"
	"time"

	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/logger"
)

// Report columns, in output order.
var (
	SalesReportColumns     = []string{"order_id", "order_date", "customer_name", "publication_title", "quantity", "price_per_unit", "subtotal"}
	StockReportColumns     = []string{"publication_id", "title", "category", "quantity"}
	StatementReportColumns = []string{"bill_id", "bill_type", "transaction_id", "due_date", "due_amount", "status"}
)

const salesReportSQL = `
SELECT o.id AS order_id, o.order_date, c.name AS customer_name,
       p.title AS publication_title, oi.quantity, oi.price_per_unit,
       oi.quantity * oi.price_per_unit AS subtotal
FROM orders o
JOIN customers c ON c.id = o.customer_id
JOIN order_items oi ON oi.order_id = o.id
JOIN publications p ON p.id = oi.publication_id
WHERE o.order_date >= ? AND o.order_date < ?
ORDER BY o.order_date ASC, o.id ASC, oi.id ASC`

const stockReportSQL = `
SELECT p.id AS publication_id, p.title, p.category, COALESCE(s.quantity, 0) AS quantity
FROM publications p
LEFT JOIN stock s ON s.publication_id = p.id
ORDER BY p.title ASC`

const statementReportSQL = `
SELECT b.id AS bill_id, b.bill_type, b.related_id AS transaction_id,
       b.due_date, b.due_amount, b.status
FROM bills b
WHERE b.customer_id = ? AND b.due_date >= ? AND b.due_date < ?
ORDER BY b.due_date ASC, b.id ASC`

// ReportRepository runs the reporting queries through the raw SQL gateway.
type ReportRepository interface {
	Sales(ctx context.Context, start, end time.Time) ([]db.Row, error)
	StockLevels(ctx context.Context) ([]db.Row, error)
	CustomerStatement(ctx context.Context, customerID uint, start, end time.Time) ([]db.Row, error)
}

type reportRepository struct {
	gateway *db.Gateway
}

func NewReportRepository(gateway *db.Gateway) ReportRepository {
	return &reportRepository{gateway: gateway}
}

// Sales returns one row per order line with order_date in [start, end].
func (r *reportRepository) Sales(ctx context.Context, start, end time.Time) ([]db.Row, error) {
	logger.Debug("Running sales report", map[string]interface{}{
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
	})
	return r.gateway.FetchAll(ctx, salesReportSQL, start, end.AddDate(0, 0, 1))
}

func (r *reportRepository) StockLevels(ctx context.Context) ([]db.Row, error) {
	logger.Debug("Running stock level report")
	return r.gateway.FetchAll(ctx, stockReportSQL)
}

// CustomerStatement returns the customer's bills due in [start, end].
func (r *reportRepository) CustomerStatement(ctx context.Context, customerID uint, start, end time.Time) ([]db.Row, error) {
	logger.Debug("Running customer statement", map[string]interface{}{
		"customer_id": customerID,
		"start":       start.Format("2006-01-02"),
		"end":         end.Format("2006-01-02"),
	})
	return r.gateway.FetchAll(ctx, statementReportSQL, customerID, start, end.AddDate(0, 0, 1))
}
