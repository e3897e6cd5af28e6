package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testRepos struct {
	publication   repository.PublicationRepository
	customer      repository.CustomerRepository
	stock         repository.StockRepository
	user          repository.UserRepository
	order         repository.OrderRepository
	subscription  repository.SubscriptionRepository
	advertisement repository.AdvertisementRepository
	bill          repository.BillRepository
	report        repository.ReportRepository
}

func setupServiceTest(t *testing.T) (*gorm.DB, testRepos) {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, testRepos{
		publication:   repository.NewPublicationRepository(testDB),
		customer:      repository.NewCustomerRepository(testDB),
		stock:         repository.NewStockRepository(testDB),
		user:          repository.NewUserRepository(testDB),
		order:         repository.NewOrderRepository(testDB),
		subscription:  repository.NewSubscriptionRepository(testDB),
		advertisement: repository.NewAdvertisementRepository(testDB),
		bill:          repository.NewBillRepository(testDB),
		report:        repository.NewReportRepository(db.NewGateway(testDB)),
	}
}

func testPolicy(stockPolicy string) OrderPolicy {
	return OrderPolicy{StockPolicy: stockPolicy, BillDueDays: 0, Location: time.UTC}
}

func newTestOrderService(testDB *gorm.DB, repos testRepos, stockPolicy string) OrderService {
	return NewOrderService(testDB, repos.order, repos.customer, repos.stock, repos.bill, testPolicy(stockPolicy))
}

func day(s string) util.DateOnly {
	d, err := util.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return util.DateOnly{Time: d}
}

func createPublication(t *testing.T, repos testRepos, title string, price float64, stock int) *model.Publication {
	t.Helper()
	ctx := context.Background()
	pub := &model.Publication{
		Category:    model.CategoryNewspaper,
		Title:       title,
		Publisher:   "Lake House",
		PublishType: "Daily",
		Price:       price,
	}
	require.NoError(t, repos.publication.Create(ctx, pub))
	require.NoError(t, repos.stock.SetQuantity(ctx, pub.ID, stock))
	return pub
}

func createCustomer(t *testing.T, repos testRepos, name string) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		Name:         name,
		Address:      "45 Galle Road, Colombo 03",
		ContactNo:    "0712345678",
		CustomerType: model.CustomerPostpaid,
	}
	require.NoError(t, repos.customer.Create(context.Background(), customer))
	return customer
}

func stockOf(t *testing.T, repos testRepos, publicationID uint) int {
	t.Helper()
	stock, err := repos.stock.FindByPublicationID(context.Background(), publicationID)
	require.NoError(t, err)
	return stock.Quantity
}
