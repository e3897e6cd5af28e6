package repository

import (
	"context"
	"testing"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func date(s string) util.DateOnly {
	d, err := util.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return util.DateOnly{Time: d}
}

func createPublication(t *testing.T, testDB *gorm.DB, title string, price float64) *model.Publication {
	t.Helper()
	pub := &model.Publication{
		Category:    model.CategoryNewspaper,
		Title:       title,
		Publisher:   "Lake House",
		PublishType: "Daily",
		Price:       price,
	}
	require.NoError(t, NewPublicationRepository(testDB).Create(context.Background(), pub))
	return pub
}

func createCustomer(t *testing.T, testDB *gorm.DB, name string) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		Name:         name,
		Address:      "12 Temple Road, Kandy",
		ContactNo:    "0771234567",
		CustomerType: model.CustomerPrepaid,
	}
	require.NoError(t, NewCustomerRepository(testDB).Create(context.Background(), customer))
	return customer
}

func createOrder(t *testing.T, testDB *gorm.DB, customerID uint, orderDate string, items ...model.OrderItem) *model.Order {
	t.Helper()
	ctx := context.Background()
	repo := NewOrderRepository(testDB)

	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	order := &model.Order{
		CustomerID:     customerID,
		OrderDate:      date(orderDate),
		TotalAmount:    total,
		DeliveryStatus: model.DeliveryPending,
		PaymentStatus:  model.PaymentUnpaid,
	}
	require.NoError(t, repo.Create(ctx, order))
	for i := range items {
		items[i].OrderID = order.ID
	}
	require.NoError(t, repo.CreateItems(ctx, items))
	return order
}

func createBill(t *testing.T, testDB *gorm.DB, customerID uint, billType model.BillType, relatedID uint, amount float64, due string) *model.Bill {
	t.Helper()
	bill := &model.Bill{
		CustomerID: customerID,
		BillType:   billType,
		RelatedID:  relatedID,
		DueAmount:  amount,
		DueDate:    date(due),
		Status:     model.BillUnpaid,
	}
	require.NoError(t, NewBillRepository(testDB).Create(context.Background(), bill))
	return bill
}
