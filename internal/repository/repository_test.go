package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCQL(t *testing.T) {
	stmt, args := selectCQL("products", []string{"id", "name"}, nil)
	assert.Equal(t, "SELECT id, name FROM products", stmt)
	assert.Empty(t, args)

	stmt, args = selectCQL("products", []string{"id"}, []Filter{Eq("is_active", true), Eq("category_id", "c1")})
	assert.Equal(t, "SELECT id FROM products WHERE is_active = ? AND category_id = ? ALLOW FILTERING", stmt)
	assert.Equal(t, []any{true, "c1"}, args)
}

func TestCountAndInsertCQL(t *testing.T) {
	stmt, args := countCQL("orders", OrderFilter{Status: models.OrderPending}.filters())
	assert.Equal(t, "SELECT COUNT(*) FROM orders WHERE status = ? ALLOW FILTERING", stmt)
	assert.Equal(t, []any{"pending"}, args)

	assert.Equal(t, "INSERT INTO banner_images (id, title) VALUES (?, ?)", insertCQL("banner_images", []string{"id", "title"}))
}

func TestOrderFilterIncomplete(t *testing.T) {
	f := OrderFilter{UserID: "u1", Incomplete: true}.filters()
	assert.Equal(t, []Filter{Eq("user_id", "u1"), Eq("items_confirmed", false)}, f)
}

func TestUpdateOrderCQL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	status := models.OrderShipped
	code := "BR123456789"

	stmt, args := updateOrderCQL("o1", OrderUpdate{Status: &status, TrackingCode: &code}, now)
	assert.Equal(t, "UPDATE orders SET updated_at = ?, status = ?, tracking_code = ? WHERE id = ? IF EXISTS", stmt)
	assert.Equal(t, []any{now, "shipped", code, "o1"}, args)

	assert.True(t, OrderUpdate{}.Empty())
}

func TestSortCategoriesBySortOrderThenName(t *testing.T) {
	list := []models.Category{
		{ID: "1", Name: "Tablets", SortOrder: 2},
		{ID: "2", Name: "Smartphones", SortOrder: 1},
		{ID: "3", Name: "Acessórios", SortOrder: 2},
	}
	SortCategories(list)
	assert.Equal(t, []string{"2", "3", "1"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestSortBanners(t *testing.T) {
	base := time.Now()
	list := []models.Banner{
		{ID: "late", SortOrder: 0, CreatedAt: base.Add(time.Hour)},
		{ID: "second", SortOrder: 1, CreatedAt: base},
		{ID: "early", SortOrder: 0, CreatedAt: base},
	}
	SortBanners(list)
	assert.Equal(t, []string{"early", "late", "second"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestSortStableDescending(t *testing.T) {
	base := time.Now()
	orders := []models.Order{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(time.Minute)},
	}
	sortStable(orders, func(o models.Order) int64 { return o.CreatedAt.UnixNano() }, Descending)
	assert.Equal(t, "new", orders[0].ID)
}

func TestDecimalConversion(t *testing.T) {
	for _, s := range []string{"0", "199.90", "-5.5", "1234567890.123456"} {
		d := decimal.RequireFromString(s)
		back := fromDec(toDec(d))
		assert.True(t, d.Equal(back), "%s round trip gave %s", s, back)
	}

	assert.Nil(t, toDecPtr(nil))
	assert.Nil(t, fromDecPtr(nil))
	assert.True(t, fromDec(nil).IsZero())
}

func TestNotFoundWrapping(t *testing.T) {
	err := notFound(gocql.ErrNotFound, "product", "p1")
	assert.True(t, errors.Is(err, ErrNotFound))

	other := notFound(fmt.Errorf("timeout"), "product", "p1")
	assert.False(t, errors.Is(other, ErrNotFound))
	require.Error(t, other)
}

func TestMalformedIDsReadAsMissing(t *testing.T) {
	ctx := context.Background()
	for _, id := range []string{"", "123", "not-a-uuid", "PED1700000000000"} {
		_, err := (&ScyllaOrders{}).GetOrder(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "order %q", id)
		_, err = (&ScyllaOrders{}).ListOrderItems(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, (&ScyllaOrders{}).UpdateOrder(ctx, id, OrderUpdate{}), ErrNotFound)
		_, err = (&ScyllaProducts{}).GetProduct(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = (&ScyllaCategories{}).GetCategory(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = (&ScyllaReviews{}).GetReview(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, (&ScyllaBanners{}).DeleteBanner(ctx, id), ErrNotFound)
	}
	assert.NoError(t, checkID("order", "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "maria@example.com", NormalizeEmail("  Maria@Example.COM "))
}
