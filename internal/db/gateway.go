package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ikkim/bookcity-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrNoRows is returned by FetchOne when the statement matched nothing.
// Driver and connection failures are returned as wrapped errors instead.
var ErrNoRows = errors.New("no rows in result set")

// Row is one result row with its column order preserved.
type Row struct {
	Columns []string
	Values  []interface{}
}

// Get returns the value of the named column.
func (r Row) Get(column string) (interface{}, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Gateway runs raw parameterized SQL over the shared pool.
type Gateway struct {
	db *gorm.DB
}

func NewGateway(conn *gorm.DB) *Gateway {
	return &Gateway{db: conn}
}

// FetchOne returns the first row of the result or ErrNoRows.
func (g *Gateway) FetchOne(ctx context.Context, stmt string, args ...interface{}) (Row, error) {
	rows, err := g.FetchAll(ctx, stmt, args...)
	if err != nil {
		return Row{}, err
	}
	if len(rows) == 0 {
		return Row{}, ErrNoRows
	}
	return rows[0], nil
}

// FetchAll returns every row of the result; an empty slice is not an error.
func (g *Gateway) FetchAll(ctx context.Context, stmt string, args ...interface{}) ([]Row, error) {
	rows, err := g.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		logger.Error("Query failed", err, map[string]interface{}{
			"statement": stmt,
		})
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		logger.Error("Failed to read query result", err, map[string]interface{}{
			"statement": stmt,
		})
		return nil, fmt.Errorf("failed to read query result: %w", err)
	}
	return result, nil
}

// Exec runs a write statement and returns the number of affected rows.
func (g *Gateway) Exec(ctx context.Context, stmt string, args ...interface{}) (int64, error) {
	res := g.db.WithContext(ctx).Exec(stmt, args...)
	if res.Error != nil {
		logger.Error("Statement failed", res.Error, map[string]interface{}{
			"statement": stmt,
		})
		return 0, fmt.Errorf("statement failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// WithTx runs fn in a transaction. The transaction commits when fn
// returns nil and rolls back on error or panic.
func (g *Gateway) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []Row{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, Row{Columns: columns, Values: values})
	}
	return result, rows.Err()
}
