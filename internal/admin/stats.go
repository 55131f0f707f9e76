package admin

import (
	"context"
	"time"

	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"

	"github.com/shopspring/decimal"
)

// Stats is the dashboard summary.
type Stats struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	TodaySales    decimal.Decimal `json:"todaySales"`
	PendingOrders int             `json:"pendingOrders"`
}

// Summarize computes order figures; "today" is the UTC calendar day of now.
func Summarize(orders []models.Order, now time.Time) Stats {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	s := Stats{TotalOrders: len(orders), TotalSales: decimal.Zero, TodaySales: decimal.Zero}
	for _, o := range orders {
		s.TotalSales = s.TotalSales.Add(o.TotalAmount)
		created := o.CreatedAt.UTC()
		if !created.Before(start) && created.Before(end) {
			s.TodaySales = s.TodaySales.Add(o.TotalAmount)
		}
		if o.Status == models.OrderPending {
			s.PendingOrders++
		}
	}
	return s
}

func (b *Backoffice) Stats(ctx context.Context) (Stats, error) {
	products, err := b.products.CountProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return Stats{}, err
	}
	orders, err := b.orders.ListOrders(ctx, repository.OrderFilter{})
	if err != nil {
		return Stats{}, err
	}
	s := Summarize(orders, b.now())
	s.TotalProducts = products
	return s, nil
}
