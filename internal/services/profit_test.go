package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"purchase-order-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inMonth(month time.Month, day int) time.Time {
	return time.Date(TestNow.Year(), month, day, 12, 0, 0, 0, time.UTC)
}

func TestOrderService_ProfitOfCompletedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.July, 1))

	profits, err := f.service.ProfitOfCompletedOrders(ctx, Year(TestNow.Year()))
	require.NoError(t, err)
	require.Len(t, profits, 1)

	p := profits[0]
	assert.Equal(t, id, p.OrderID)
	assert.Equal(t, TestProductName, p.ProductName)
	assert.Equal(t, TestServiceName, p.ServiceName)
	assert.Equal(t, f.productID, p.ProductID)
	assert.Equal(t, f.serviceID, p.ServiceID)
	requireDecimal(t, "0.8", p.TotalCost)
	requireDecimal(t, "0.9", p.TotalPrice)
	requireDecimal(t, "0.1", p.Profit)
	assert.Equal(t, time.July, p.CreatedDate.Month())

	detail, err := f.service.GetOrderByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, detail.Items[0].ID, p.ID)
}

func TestOrderService_ProfitOfCompletedOrders_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	year := TestNow.Year()

	want := f.addOrder(t, 2, domain.StatusCompleted, inMonth(time.March, 3))
	f.addOrder(t, 1, domain.StatusCreated, inMonth(time.March, 4))
	f.addOrder(t, 1, domain.StatusFailed, inMonth(time.March, 5))
	f.addOrder(t, 1, domain.StatusInProgress, inMonth(time.March, 6))
	f.addOrder(t, 1, domain.StatusCompleted, time.Date(year-1, time.December, 31, 23, 59, 59, 0, time.UTC))
	f.addOrder(t, 1, domain.StatusCompleted, time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC))

	profits, err := f.service.ProfitOfCompletedOrders(ctx, Year(year))
	require.NoError(t, err)
	require.Len(t, profits, 1)
	assert.Equal(t, want, profits[0].OrderID)
	requireDecimal(t, "0.2", profits[0].Profit)
}

func TestOrderService_ProfitOfCompletedOrders_GroupedByMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	nov := f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.November, 2))
	feb := f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.February, 2))
	jun := f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.June, 2))

	profits, err := f.service.ProfitOfCompletedOrders(ctx, Year(TestNow.Year()))
	require.NoError(t, err)
	require.Len(t, profits, 3)
	assert.Equal(t, feb, profits[0].OrderID)
	assert.Equal(t, jun, profits[1].OrderID)
	assert.Equal(t, nov, profits[2].OrderID)
}

func TestOrderService_ProfitOfCompletedOrders_NoRows(t *testing.T) {
	tests := []struct {
		name string
		year *int
	}{
		{name: "year with no orders", year: Year(1990)},
		{name: "zero year", year: Year(0)},
		{name: "negative year", year: Year(-5)},
		{name: "far future", year: Year(9999)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.July, 1))

			profits, err := f.service.ProfitOfCompletedOrders(context.Background(), tt.year)
			require.NoError(t, err)
			assert.NotNil(t, profits)
			assert.Empty(t, profits)

			totals, err := f.service.TotalProfitByMonth(context.Background(), tt.year)
			require.NoError(t, err)
			assert.NotNil(t, totals)
			assert.Empty(t, totals)
		})
	}
}

func TestOrderService_ProfitOfCompletedOrders_DefaultsToCurrentYear(t *testing.T) {
	f := newFixture(t)
	id := f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.January, 10))
	f.addOrder(t, 1, domain.StatusCompleted, time.Date(TestNow.Year()-1, time.January, 10, 0, 0, 0, 0, time.UTC))

	profits, err := f.service.ProfitOfCompletedOrders(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, profits, 1)
	assert.Equal(t, id, profits[0].OrderID)
}

func TestOrderService_ProfitOfCompletedOrders_NoCompletedStatus(t *testing.T) {
	f := newFixtureWith(t, []domain.StatusCode{domain.StatusCreated})
	f.addOrder(t, 1, domain.StatusCreated, inMonth(time.July, 1))

	profits, err := f.service.ProfitOfCompletedOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, profits)
}

func TestOrderService_ProfitOfCompletedOrders_StorageFailure(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("i/o timeout")
	f.withFaults("ListOrders", cause)

	_, err := f.service.ProfitOfCompletedOrders(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, domain.IsCode(err, domain.CodeStorage))
}

func TestOrderService_TotalProfitByMonth(t *testing.T) {
	tests := []struct {
		name       string
		quantities []int
		want       string
	}{
		{name: "single order", quantities: []int{1}, want: "0.1"},
		{name: "two orders", quantities: []int{1, 2}, want: "0.3"},
		{name: "three orders", quantities: []int{1, 2, 1}, want: "0.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for i, q := range tt.quantities {
				f.addOrder(t, q, domain.StatusCompleted, inMonth(time.July, i+1))
			}

			totals, err := f.service.TotalProfitByMonth(context.Background(), Year(TestNow.Year()))
			require.NoError(t, err)
			require.Len(t, totals, 1)
			assert.Equal(t, int(time.July), totals[0].Month)
			requireDecimal(t, tt.want, totals[0].Profit)
		})
	}
}

func TestOrderService_TotalProfitByMonth_AscendingMonths(t *testing.T) {
	f := newFixture(t)
	f.addOrder(t, 3, domain.StatusCompleted, inMonth(time.December, 1))
	f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.January, 1))
	f.addOrder(t, 1, domain.StatusCompleted, inMonth(time.May, 1))
	f.addOrder(t, 4, domain.StatusCompleted, inMonth(time.May, 20))
	f.addOrder(t, 9, domain.StatusCreated, inMonth(time.May, 21))

	totals, err := f.service.TotalProfitByMonth(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.Equal(t, 1, totals[0].Month)
	requireDecimal(t, "0.1", totals[0].Profit)
	assert.Equal(t, 5, totals[1].Month)
	requireDecimal(t, "0.5", totals[1].Profit)
	assert.Equal(t, 12, totals[2].Month)
	requireDecimal(t, "0.3", totals[2].Profit)
}

func TestOrderService_TotalProfitByMonth_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.addOrder(t, 2, domain.StatusCompleted, inMonth(time.August, 8))

	first, err := f.service.TotalProfitByMonth(context.Background(), nil)
	require.NoError(t, err)
	second, err := f.service.TotalProfitByMonth(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Month, second[i].Month)
		assert.True(t, first[i].Profit.Equal(second[i].Profit))
	}
}

func TestOrderService_TotalProfitByMonth_ReflectsPriceChanges(t *testing.T) {
	f := newFixture(t)
	f.addOrder(t, 2, domain.StatusCompleted, inMonth(time.April, 4))
	require.True(t, f.store.SetProductPrices(domain.EncodeID(f.productID), dec("1"), dec("1.5")))

	totals, err := f.service.TotalProfitByMonth(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	requireDecimal(t, "1", totals[0].Profit)
}
