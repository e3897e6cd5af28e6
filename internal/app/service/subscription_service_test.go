package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLocker struct {
	held     map[string]bool
	err      error
	released []string
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key string) error {
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

type fakeNotifier struct {
	results []*SweepResult
}

func (n *fakeNotifier) NotifySweep(ctx context.Context, result *SweepResult) error {
	n.results = append(n.results, result)
	return errors.New("slack unavailable")
}

func setupSubscriptionServiceTest(t *testing.T, locker Locker, notifier SweepNotifier) (SubscriptionService, *gorm.DB, testRepos) {
	testDB, repos := setupServiceTest(t)
	subscriptionService := NewSubscriptionService(
		db.NewGateway(testDB),
		repos.subscription,
		repos.customer,
		repos.publication,
		repos.order,
		repos.stock,
		repos.bill,
		testPolicy(config.StockPolicyAllowNegative),
		locker,
		notifier,
	)
	return subscriptionService, testDB, repos
}

func TestIsDue(t *testing.T) {
	yesterday := day("2024-03-10")
	today := day("2024-03-11")

	base := model.Subscription{
		StartDate: day("2024-03-04"), // Monday
		EndDate:   day("2024-04-30"),
		Frequency: model.FrequencyDaily,
		Status:    model.SubscriptionActive,
	}

	tests := []struct {
		name   string
		modify func(s *model.Subscription)
		today  util.DateOnly
		want   bool
	}{
		{name: "daily, never generated", modify: func(s *model.Subscription) {}, today: today, want: true},
		{name: "daily, generated yesterday", modify: func(s *model.Subscription) { s.LastGeneratedDate = &yesterday }, today: today, want: true},
		{name: "daily, generated today", modify: func(s *model.Subscription) { s.LastGeneratedDate = &today }, today: today, want: false},
		{name: "cancelled", modify: func(s *model.Subscription) { s.Status = model.SubscriptionCancelled }, today: today, want: false},
		{name: "before start", modify: func(s *model.Subscription) {}, today: day("2024-03-03"), want: false},
		{name: "on start", modify: func(s *model.Subscription) {}, today: day("2024-03-04"), want: true},
		{name: "on end", modify: func(s *model.Subscription) {}, today: day("2024-04-30"), want: true},
		{name: "after end", modify: func(s *model.Subscription) {}, today: day("2024-05-01"), want: false},
		{name: "weekly, same weekday", modify: func(s *model.Subscription) { s.Frequency = model.FrequencyWeekly }, today: today, want: true},
		{name: "weekly, other weekday", modify: func(s *model.Subscription) { s.Frequency = model.FrequencyWeekly }, today: day("2024-03-12"), want: false},
		{name: "monthly, same day", modify: func(s *model.Subscription) { s.Frequency = model.FrequencyMonthly }, today: day("2024-04-04"), want: true},
		{name: "monthly, other day", modify: func(s *model.Subscription) { s.Frequency = model.FrequencyMonthly }, today: today, want: false},
		{name: "unknown frequency", modify: func(s *model.Subscription) { s.Frequency = "Hourly" }, today: today, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := base
			tt.modify(&sub)
			assert.Equal(t, tt.want, IsDue(sub, tt.today.Time))
		})
	}
}

func TestIsDue_IgnoresClock(t *testing.T) {
	sub := model.Subscription{
		StartDate: day("2024-03-01"),
		EndDate:   day("2024-03-31"),
		Frequency: model.FrequencyDaily,
		Status:    model.SubscriptionActive,
	}
	late := time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)
	assert.True(t, IsDue(sub, late))
}

func TestSubscriptionService_CreateSubscription(t *testing.T) {
	subscriptionService, _, repos := setupSubscriptionServiceTest(t, nil, nil)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Perera Stores")
	pub := createPublication(t, repos, "Daily Mirror", 60, 100)

	sub, err := subscriptionService.CreateSubscription(ctx, CreateSubscriptionInput{
		CustomerID: customer.ID,
		StartDate:  day("2024-03-01"),
		EndDate:    day("2024-03-31"),
		Frequency:  model.FrequencyDaily,
		Items:      []SubscriptionItemInput{{PublicationID: pub.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, sub.Status)
	assert.Nil(t, sub.LastGeneratedDate)

	found, err := subscriptionService.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Daily Mirror", found.Items[0].Publication.Title)

	list, err := subscriptionService.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Perera Stores", list[0].CustomerName)
}

func TestSubscriptionService_CreateSubscription_Validation(t *testing.T) {
	subscriptionService, _, repos := setupSubscriptionServiceTest(t, nil, nil)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Perera Stores")
	pub := createPublication(t, repos, "Daily Mirror", 60, 100)
	items := []SubscriptionItemInput{{PublicationID: pub.ID, Quantity: 1}}

	tests := []struct {
		name    string
		input   CreateSubscriptionInput
		wantErr error
	}{
		{
			name:    "no items",
			input:   CreateSubscriptionInput{CustomerID: customer.ID, StartDate: day("2024-03-01"), EndDate: day("2024-03-31"), Frequency: model.FrequencyDaily},
			wantErr: ErrEmptySubscription,
		},
		{
			name:    "end before start",
			input:   CreateSubscriptionInput{CustomerID: customer.ID, StartDate: day("2024-03-31"), EndDate: day("2024-03-01"), Frequency: model.FrequencyDaily, Items: items},
			wantErr: ErrInvalidPeriod,
		},
		{
			name:    "missing start date",
			input:   CreateSubscriptionInput{CustomerID: customer.ID, EndDate: day("2024-03-31"), Frequency: model.FrequencyDaily, Items: items},
			wantErr: ErrMissingPeriod,
		},
		{
			name:    "missing end date",
			input:   CreateSubscriptionInput{CustomerID: customer.ID, StartDate: day("2024-03-01"), Frequency: model.FrequencyDaily, Items: items},
			wantErr: ErrMissingPeriod,
		},
		{
			name:    "bad frequency",
			input:   CreateSubscriptionInput{CustomerID: customer.ID, StartDate: day("2024-03-01"), EndDate: day("2024-03-31"), Frequency: "Yearly", Items: items},
			wantErr: ErrInvalidFrequency,
		},
		{
			name:    "unknown customer",
			input:   CreateSubscriptionInput{CustomerID: 404, StartDate: day("2024-03-01"), EndDate: day("2024-03-31"), Frequency: model.FrequencyDaily, Items: items},
			wantErr: ErrCustomerNotFound,
		},
		{
			name: "unknown publication",
			input: CreateSubscriptionInput{CustomerID: customer.ID, StartDate: day("2024-03-01"), EndDate: day("2024-03-31"), Frequency: model.FrequencyDaily,
				Items: []SubscriptionItemInput{{PublicationID: 404, Quantity: 1}}},
			wantErr: ErrPublicationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := subscriptionService.CreateSubscription(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	list, err := subscriptionService.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubscriptionService_Cancel(t *testing.T) {
	subscriptionService, _, repos := setupSubscriptionServiceTest(t, nil, nil)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Perera Stores")
	pub := createPublication(t, repos, "Daily Mirror", 60, 100)
	sub, err := subscriptionService.CreateSubscription(ctx, CreateSubscriptionInput{
		CustomerID: customer.ID,
		StartDate:  day("2024-03-01"),
		EndDate:    day("2024-03-31"),
		Frequency:  model.FrequencyDaily,
		Items:      []SubscriptionItemInput{{PublicationID: pub.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, subscriptionService.CancelSubscription(ctx, sub.ID))
	due, err := subscriptionService.GetDueSubscriptions(ctx, day("2024-03-05").Time)
	require.NoError(t, err)
	assert.Empty(t, due)

	assert.ErrorIs(t, subscriptionService.CancelSubscription(ctx, 404), ErrSubscriptionNotFound)
}

func TestSubscriptionService_GenerateDueOrders(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{}}
	notifier := &fakeNotifier{}
	subscriptionService, _, repos := setupSubscriptionServiceTest(t, locker, notifier)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Perera Stores")
	mirror := createPublication(t, repos, "Daily Mirror", 60, 100)
	vogue := createPublication(t, repos, "Vogue", 500, 10)

	daily, err := subscriptionService.CreateSubscription(ctx, CreateSubscriptionInput{
		CustomerID: customer.ID,
		StartDate:  day("2024-03-01"),
		EndDate:    day("2024-03-31"),
		Frequency:  model.FrequencyDaily,
		Items:      []SubscriptionItemInput{{PublicationID: mirror.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Friday start; not due on Monday the 11th
	_, err = subscriptionService.CreateSubscription(ctx, CreateSubscriptionInput{
		CustomerID: customer.ID,
		StartDate:  day("2024-03-01"),
		EndDate:    day("2024-12-31"),
		Frequency:  model.FrequencyWeekly,
		Items:      []SubscriptionItemInput{{PublicationID: vogue.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// price changes after subscribing apply to generated orders
	_, err = NewPublicationService(repos.publication).UpdatePublication(ctx, mirror.ID, PublicationInput{
		Category: model.CategoryNewspaper,
		Title:    "Daily Mirror",
		Price:    70,
	})
	require.NoError(t, err)

	today := day("2024-03-11")
	result, err := subscriptionService.GenerateDueOrders(ctx, today.Time, model.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Due)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.OrderIDs, 1)
	assert.NotZero(t, result.RunID)
	assert.Len(t, notifier.results, 1)
	assert.Equal(t, []string{"subscription-sweep:2024-03-11"}, locker.released)

	order, err := repos.order.FindByID(ctx, result.OrderIDs[0])
	require.NoError(t, err)
	require.NotNil(t, order.SubscriptionID)
	assert.Equal(t, daily.ID, *order.SubscriptionID)
	assert.Equal(t, "2024-03-11", order.OrderDate.String())
	assert.Equal(t, 140.0, order.TotalAmount)
	assert.Equal(t, model.DeliveryPending, order.DeliveryStatus)
	assert.Equal(t, model.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, 98, stockOf(t, repos, mirror.ID))

	bill, err := repos.bill.FindByRelated(ctx, model.BillTypeOrder, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 140.0, bill.DueAmount)

	sub, err := subscriptionService.GetSubscription(ctx, daily.ID)
	require.NoError(t, err)
	require.NotNil(t, sub.LastGeneratedDate)
	assert.Equal(t, "2024-03-11", sub.LastGeneratedDate.String())

	// a second sweep on the same day produces nothing
	again, err := subscriptionService.GenerateDueOrders(ctx, today.Time, model.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Due)
	assert.Equal(t, 0, again.Generated)
	assert.Empty(t, again.OrderIDs)

	runs, err := subscriptionService.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, model.TriggerScheduled, runs[0].Trigger)
	assert.Equal(t, 1, runs[1].GeneratedCount)

	var ids []uint
	require.NoError(t, json.Unmarshal(runs[1].OrderIDs, &ids))
	assert.Equal(t, result.OrderIDs, ids)
}

func TestSubscriptionService_GenerateDueOrders_FailureDoesNotStopSweep(t *testing.T) {
	testDB, repos := setupServiceTest(t)
	subscriptionService := NewSubscriptionService(
		db.NewGateway(testDB),
		repos.subscription, repos.customer, repos.publication, repos.order, repos.stock, repos.bill,
		testPolicy(config.StockPolicyReject),
		nil, nil,
	)
	ctx := context.Background()

	customer := createCustomer(t, repos, "Perera Stores")
	scarce := createPublication(t, repos, "Rare Quarterly", 900, 0)
	plenty := createPublication(t, repos, "Daily Mirror", 60, 50)

	for _, pubID := range []uint{scarce.ID, plenty.ID} {
		_, err := subscriptionService.CreateSubscription(ctx, CreateSubscriptionInput{
			CustomerID: customer.ID,
			StartDate:  day("2024-03-01"),
			EndDate:    day("2024-03-31"),
			Frequency:  model.FrequencyDaily,
			Items:      []SubscriptionItemInput{{PublicationID: pubID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	result, err := subscriptionService.GenerateDueOrders(ctx, day("2024-03-02").Time, model.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Due)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Error, ErrInsufficientStock.Error())

	// the failed subscription stays due
	due, err := subscriptionService.GetDueSubscriptions(ctx, day("2024-03-02").Time)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, result.Failures[0].SubscriptionID, due[0].ID)
}

func TestSubscriptionService_GenerateDueOrders_LockHeld(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{"subscription-sweep:2024-03-11": true}}
	subscriptionService, _, _ := setupSubscriptionServiceTest(t, locker, nil)

	result, err := subscriptionService.GenerateDueOrders(context.Background(), day("2024-03-11").Time, model.TriggerScheduled)
	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.Nil(t, result)
	assert.Empty(t, locker.released)
}

func TestSubscriptionService_GenerateDueOrders_LockError(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{}, err: errors.New("redis down")}
	subscriptionService, _, _ := setupSubscriptionServiceTest(t, locker, nil)

	_, err := subscriptionService.GenerateDueOrders(context.Background(), day("2024-03-11").Time, model.TriggerManual)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSweepInProgress)
}
