package service

import (
	"context"
	"testing"

	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingService_MarkPaid_OrderBill(t *testing.T) {
	testDB, repos := setupServiceTest(t)
	billingService := NewBillingService(db.NewGateway(testDB), repos.bill, repos.order, repos.customer)
	orderService := newTestOrderService(testDB, repos, config.StockPolicyAllowNegative)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Perera Stores")
	pub := createPublication(t, repos, "Daily Mirror", 50, 10)
	order, err := orderService.CreateOrder(ctx, CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []OrderItemInput{{PublicationID: pub.ID, Quantity: 1, PricePerUnit: 50}},
	})
	require.NoError(t, err)

	bill, err := repos.bill.FindByRelated(ctx, model.BillTypeOrder, order.ID)
	require.NoError(t, err)

	paid, err := billingService.MarkPaid(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillPaid, paid.Status)

	found, err := orderService.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, found.PaymentStatus)

	// paying twice is harmless
	again, err := billingService.MarkPaid(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillPaid, again.Status)
}

func TestBillingService_MarkPaid_AdvertisementBill(t *testing.T) {
	testDB, repos := setupServiceTest(t)
	gateway := db.NewGateway(testDB)
	billingService := NewBillingService(gateway, repos.bill, repos.order, repos.customer)
	adService := NewAdvertisementService(gateway, repos.advertisement, repos.customer, repos.publication, repos.bill, 5)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Kandy Motors")
	pub := createPublication(t, repos, "Daily Mirror", 60, 0)
	ad, err := adService.AddAdvertisement(ctx, CreateAdvertisementInput{
		CustomerID:      customer.ID,
		PublicationID:   pub.ID,
		PublicationDate: day("2024-03-15"),
		Content:         "Cars for sale",
	})
	require.NoError(t, err)

	bill, err := repos.bill.FindByRelated(ctx, model.BillTypeAdvertisement, ad.ID)
	require.NoError(t, err)

	paid, err := billingService.MarkPaid(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillPaid, paid.Status)
}

func TestBillingService_Queries(t *testing.T) {
	testDB, repos := setupServiceTest(t)
	billingService := NewBillingService(db.NewGateway(testDB), repos.bill, repos.order, repos.customer)
	orderService := newTestOrderService(testDB, repos, config.StockPolicyAllowNegative)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Perera Stores")
	other := createCustomer(t, repos, "Silva Books")
	pub := createPublication(t, repos, "Daily Mirror", 50, 10)

	for _, c := range []*model.Customer{customer, customer, other} {
		_, err := orderService.CreateOrder(ctx, CreateOrderInput{
			CustomerID: c.ID,
			Items:      []OrderItemInput{{PublicationID: pub.ID, Quantity: 1, PricePerUnit: 50}},
		})
		require.NoError(t, err)
	}

	all, err := billingService.ListBills(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := billingService.CustomerBills(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = billingService.CustomerBills(ctx, 404)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	bill, err := billingService.GetBill(ctx, mine[0].ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, bill.CustomerID)

	_, err = billingService.GetBill(ctx, 404)
	assert.ErrorIs(t, err, ErrBillNotFound)
	_, err = billingService.MarkPaid(ctx, 404)
	assert.ErrorIs(t, err, ErrBillNotFound)
}
