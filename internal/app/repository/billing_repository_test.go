package repository

import (
	"context"
	"testing"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBillRepository(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewBillRepository(testDB)
	ctx := context.Background()

	nimal := createCustomer(t, testDB, "Nimal Perera")
	sunil := createCustomer(t, testDB, "Sunil Silva")

	orderBill := createBill(t, testDB, nimal.ID, model.BillTypeOrder, 11, 240, "2024-03-01")
	adBill := createBill(t, testDB, nimal.ID, model.BillTypeAdvertisement, 3, 50, "2024-03-10")
	createBill(t, testDB, sunil.ID, model.BillTypeOrder, 12, 60, "2024-03-02")

	all, err := repo.FindAllWithDetails(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Sunil Silva", all[0].CustomerName)

	mine, err := repo.FindByCustomer(ctx, nimal.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, adBill.ID, mine[0].ID)

	related, err := repo.FindByRelated(ctx, model.BillTypeOrder, 11)
	require.NoError(t, err)
	assert.Equal(t, orderBill.ID, related.ID)

	_, err = repo.FindByRelated(ctx, model.BillTypeAdvertisement, 11)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateStatus(ctx, orderBill.ID, model.BillPaid))
	found, err := repo.FindByID(ctx, orderBill.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillPaid, found.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 999, model.BillPaid), gorm.ErrRecordNotFound)
}

func TestAdvertisementRepository(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewAdvertisementRepository(testDB)
	ctx := context.Background()

	customer := createCustomer(t, testDB, "Nimal Perera")
	pub := createPublication(t, testDB, "Daily Mirror", 60)

	ad := &model.Advertisement{
		CustomerID:      customer.ID,
		PublicationID:   pub.ID,
		PublicationDate: date("2024-04-01"),
		Content:         "Room for rent near Kandy lake",
		Cost:            30,
	}
	require.NoError(t, repo.Create(ctx, ad))
	bill := createBill(t, testDB, customer.ID, model.BillTypeAdvertisement, ad.ID, 30, "2024-04-01")

	details, err := repo.FindAllWithDetails(ctx)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Nimal Perera", details[0].CustomerName)
	assert.Equal(t, "Daily Mirror", details[0].PublicationTitle)
	assert.Equal(t, "2024-04-01", details[0].PublicationDate.String())

	count, err := repo.CountByDate(ctx, date("2024-04-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Delete(ctx, ad.ID))
	_, err = repo.FindByID(ctx, ad.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	kept, err := NewBillRepository(testDB).FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, ad.ID, kept.RelatedID)
}
