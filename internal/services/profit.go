package services

import (
	"context"
	"slices"
	"time"

	"purchase-order-service/internal/domain"
	"purchase-order-service/internal/repository"

	"github.com/shopspring/decimal"
)

// Year wraps y for the optional year argument of the profit queries.
func Year(y int) *int {
	return &y
}

// CurrentYear is the year the profit queries use when none is given.
func (u *OrderService) CurrentYear() int {
	return u.now().UTC().Year()
}

func (u *OrderService) targetYear(year *int) int {
	if year != nil {
		return *year
	}
	return u.CurrentYear()
}

// ProfitOfCompletedOrders returns one row per item of every Completed order created in
// year (the current year when nil), grouped by month. Years before 1 yield no rows.
func (u *OrderService) ProfitOfCompletedOrders(ctx context.Context, year *int) ([]domain.OrderProfit, error) {
	target := u.targetYear(year)
	out := []domain.OrderProfit{}
	if target < 1 {
		return out, nil
	}

	status, err := u.store.FindStatusByName(ctx, domain.StatusCompleted.String())
	if err != nil {
		return nil, domain.Storage("find order status", err)
	}
	if status == nil {
		return out, nil
	}

	from := time.Date(target, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := u.store.ListOrders(ctx, repository.OrderFilter{
		StatusID:    status.ID,
		CreatedFrom: from,
		CreatedTo:   from.AddDate(1, 0, 0),
	})
	if err != nil {
		return nil, domain.Storage("list completed orders", err)
	}
	details, err := u.assemble(ctx, rows)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[time.Month][]domain.OrderProfit)
	for _, d := range details {
		month := d.CreatedDate.UTC().Month()
		for _, it := range d.Items {
			byMonth[month] = append(byMonth[month], domain.OrderProfit{
				ID:          it.ID,
				OrderID:     d.ID,
				ServiceID:   it.ServiceID,
				ServiceName: it.ServiceName,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				TotalCost:   it.TotalCost,
				TotalPrice:  it.TotalPrice,
				Profit:      it.TotalPrice.Sub(it.TotalCost),
				CreatedDate: d.CreatedDate,
			})
		}
	}
	for _, m := range sortedMonths(byMonth) {
		out = append(out, byMonth[m]...)
	}
	return out, nil
}

// TotalProfitByMonth sums item profit of Completed orders per calendar month of year,
// ascending by month. Months without completed orders are absent.
func (u *OrderService) TotalProfitByMonth(ctx context.Context, year *int) ([]domain.TotalProfit, error) {
	profits, err := u.ProfitOfCompletedOrders(ctx, year)
	if err != nil {
		return nil, err
	}

	sums := make(map[time.Month]decimal.Decimal)
	for _, p := range profits {
		m := p.CreatedDate.UTC().Month()
		sums[m] = sums[m].Add(p.Profit)
	}

	out := make([]domain.TotalProfit, 0, len(sums))
	for _, m := range sortedMonths(sums) {
		out = append(out, domain.TotalProfit{Month: int(m), Profit: sums[m]})
	}
	return out, nil
}

func sortedMonths[V any](m map[time.Month]V) []time.Month {
	months := make([]time.Month, 0, len(m))
	for k := range m {
		months = append(months, k)
	}
	slices.Sort(months)
	return months
}
