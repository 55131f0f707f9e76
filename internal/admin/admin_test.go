package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/checkout"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"
	"techshop_back_end/internal/repository/repotest"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...Option) (*Backoffice, *repotest.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repotest.New()
	repos := Repositories{
		Products: store, Categories: store, Banners: store,
		Orders: store, Reviews: store, Settings: store,
	}
	return New(repos, cache.New(client), opts...), store, mr
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeIndex struct {
	synced  []string
	deleted []string
}

func (f *fakeIndex) Sync(_ context.Context, p models.Product) error {
	f.synced = append(f.synced, p.ID)
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStatusNotifier struct{ sent []models.OrderStatus }

func (f *fakeStatusNotifier) StatusChanged(_ context.Context, o models.Order) error {
	f.sent = append(f.sent, o.Status)
	return nil
}

func TestProductListReconcilesWithoutRefetch(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{}
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b, store, _ := setup(t, WithSearch(idx), WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock }))

	first := &models.Product{Name: "Mouse", Price: price("99.90"), IsActive: true}
	require.NoError(t, b.CreateProduct(ctx, first))

	list, err := b.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	reads := store.Reads

	second := &models.Product{Name: "Teclado", Price: price("199.90"), IsActive: true}
	require.NoError(t, b.CreateProduct(ctx, second))

	first.Name = "Mouse Gamer"
	require.NoError(t, b.UpdateProduct(ctx, first))

	list, err = b.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, "Mouse Gamer", list[1].Name)
	assert.Equal(t, reads, store.Reads, "mutations must not reload the list")

	require.NoError(t, b.DeleteProduct(ctx, second.ID))
	list, err = b.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, reads, store.Reads)

	assert.Equal(t, []string{first.ID, second.ID, first.ID}, idx.synced)
	assert.Equal(t, []string{second.ID}, idx.deleted)
}

func TestCollectionRefetchesWhenOutOfSync(t *testing.T) {
	ctx := context.Background()
	b, store, _ := setup(t)

	_, err := b.Categories.List(ctx)
	require.NoError(t, err)

	// written behind the cache's back
	require.NoError(t, store.SaveCategory(ctx, &models.Category{ID: "c-hidden", Name: "Áudio", SortOrder: 2}))
	reads := store.Reads

	require.NoError(t, b.SaveCategory(ctx, &models.Category{ID: "c-hidden", Name: "Áudio e Som", SortOrder: 2}))
	assert.Equal(t, reads+1, store.Reads)

	list, err := b.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Áudio e Som", list[0].Name)
}

func TestCategoriesKeepSortOrder(t *testing.T) {
	ctx := context.Background()
	b, _, _ := setup(t)

	_, err := b.Categories.List(ctx)
	require.NoError(t, err)

	for _, c := range []models.Category{{Name: "Notebooks", SortOrder: 3}, {Name: "Celulares", SortOrder: 1}, {Name: "Acessórios", SortOrder: 2}} {
		c := c
		require.NoError(t, b.SaveCategory(ctx, &c))
	}

	list, err := b.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Celulares", "Acessórios", "Notebooks"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestFailedWriteLeavesCacheAlone(t *testing.T) {
	ctx := context.Background()
	b, store, _ := setup(t)
	require.NoError(t, b.SaveBanner(ctx, &models.Banner{Title: "Promo", ImageURL: "x.jpg"}))
	_, err := b.Banners.List(ctx)
	require.NoError(t, err)

	store.Fail = errors.New("scylla down")
	err = b.SaveBanner(ctx, &models.Banner{Title: "Black Friday", ImageURL: "y.jpg"})
	require.Error(t, err)

	list, err := b.Banners.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMutationDropsStorefrontCache(t *testing.T) {
	ctx := context.Background()
	b, _, mr := setup(t)
	require.NoError(t, mr.Set(cache.KeyActiveBanners, "[]"))

	require.NoError(t, b.SaveBanner(ctx, &models.Banner{Title: "Promo", ImageURL: "x.jpg"}))

	assert.False(t, mr.Exists(cache.KeyActiveBanners))
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	b, store, _ := setup(t)

	err := b.CreateProduct(ctx, &models.Product{Name: " ", Price: price("1")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = b.CreateProduct(ctx, &models.Product{Name: "X", Price: price("-1")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = b.SaveBanner(ctx, &models.Banner{Title: "Sem imagem"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = b.SaveCategory(ctx, &models.Category{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, store.Writes)
}

func TestUpdateMissingProduct(t *testing.T) {
	b, _, _ := setup(t)
	err := b.UpdateProduct(context.Background(), &models.Product{ID: "nope", Name: "X"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func seedOrder(t *testing.T, store *repotest.Store, o models.Order) models.Order {
	t.Helper()
	require.NoError(t, store.CreateOrder(context.Background(), &o))
	return o
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeStatusNotifier{}
	b, store, _ := setup(t, WithStatusNotifier(notifier))
	o := seedOrder(t, store, models.Order{OrderNumber: "PED1", Status: models.OrderPending, PaymentStatus: models.PaymentPending})

	_, err := b.Orders.List(ctx)
	require.NoError(t, err)

	shipped := models.OrderShipped
	code := "BR123"
	got, err := b.UpdateOrder(ctx, o.ID, repository.OrderUpdate{Status: &shipped, TrackingCode: &code})
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)
	assert.Equal(t, "BR123", got.TrackingCode)
	assert.Equal(t, []models.OrderStatus{models.OrderShipped}, notifier.sent)

	list, err := b.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.OrderShipped, list[0].Status)

	paid := models.PaymentPaid
	_, err = b.UpdateOrder(ctx, o.ID, repository.OrderUpdate{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1, "payment changes do not email")
}

func TestUpdateOrderRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	b, store, _ := setup(t)
	o := seedOrder(t, store, models.Order{OrderNumber: "PED1", Status: models.OrderPending})

	_, err := b.UpdateOrder(ctx, o.ID, repository.OrderUpdate{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	bogus := models.OrderStatus("lost")
	_, err = b.UpdateOrder(ctx, o.ID, repository.OrderUpdate{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)

	shipped := models.OrderShipped
	_, err = b.UpdateOrder(ctx, "missing", repository.OrderUpdate{Status: &shipped})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIncompleteOrdersAndItems(t *testing.T) {
	ctx := context.Background()
	b, store, _ := setup(t)
	done := seedOrder(t, store, models.Order{OrderNumber: "PED1", ItemsConfirmed: true})
	orphan := seedOrder(t, store, models.Order{OrderNumber: "PED2"})
	require.NoError(t, store.CreateOrderItems(ctx, done.ID, []models.OrderItem{{ID: "i1", OrderID: done.ID, ProductName: "Mouse", Quantity: 2}}))

	incomplete, err := b.IncompleteOrders(ctx)
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, orphan.ID, incomplete[0].ID)

	withItems, err := b.OrderItems(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, "PED1", withItems.OrderNumber)
	require.Len(t, withItems.Items, 1)
}

func TestCheckoutOrderShowsInAdminList(t *testing.T) {
	ctx := context.Background()
	b, store, mr := setup(t)
	seedOrder(t, store, models.Order{ID: "o-old", OrderNumber: "PED1", CreatedAt: time.Now().Add(-time.Hour)})

	list, err := b.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	basket, err := cart.NewManager(cart.NewRedisPersister(client)).Open(ctx, "session:s1")
	require.NoError(t, err)
	require.NoError(t, basket.Add(ctx, models.CartLineItem{ID: "p1", Name: "Mouse", UnitPrice: price("89.90")}))

	svc := checkout.NewService(store, uuid.NewString, checkout.WithOrderObserver(b.Orders.Created))
	receipt, err := svc.Submit(ctx, basket, checkout.Details{
		Name: "Ana", Email: "ana@example.com", Phone: "11999990000", Address: "Rua A, 1",
	})
	require.NoError(t, err)

	list, err = b.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, receipt.OrderNumber, list[0].OrderNumber, "newest first")
	assert.True(t, list[0].ItemsConfirmed)
	assert.Equal(t, "PED1", list[1].OrderNumber)
}

func TestReviewModeration(t *testing.T) {
	ctx := context.Background()
	b, store, _ := setup(t)
	require.NoError(t, store.SaveReview(ctx, &models.Review{ID: "r1", ProductID: "p1", Rating: 5, CreatedAt: time.Now()}))

	_, err := b.Reviews.List(ctx)
	require.NoError(t, err)

	r, err := b.SetReviewApproved(ctx, "r1", true)
	require.NoError(t, err)
	assert.True(t, r.IsApproved)

	list, err := b.Reviews.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsApproved)

	require.NoError(t, b.Reviews.Delete(ctx, "r1"))
	list, err = b.Reviews.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSettingsKeepSingleRow(t *testing.T) {
	ctx := context.Background()
	b, _, mr := setup(t)
	require.NoError(t, mr.Set(cache.KeySiteSettings, "{}"))

	s, err := b.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TechShop", s.SiteName)

	s.SiteName = "Loja Tech"
	require.NoError(t, b.SaveSettings(ctx, &s))
	require.NotEmpty(t, s.ID)
	assert.False(t, mr.Exists(cache.KeySiteSettings))

	again := models.SiteSettings{SiteName: "Outra"}
	require.NoError(t, b.SaveSettings(ctx, &again))
	assert.Equal(t, s.ID, again.ID)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{TotalAmount: price("100.00"), Status: models.OrderPending, CreatedAt: now.Add(-time.Hour)},
		{TotalAmount: price("50.50"), Status: models.OrderDelivered, CreatedAt: now.AddDate(0, 0, -1)},
		{TotalAmount: price("10.25"), Status: models.OrderPending, CreatedAt: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)},
	}

	s := Summarize(orders, now)

	assert.Equal(t, 3, s.TotalOrders)
	assert.True(t, s.TotalSales.Equal(price("160.75")))
	assert.True(t, s.TodaySales.Equal(price("110.25")))
	assert.Equal(t, 2, s.PendingOrders)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	b, store, _ := setup(t, WithClock(func() time.Time { return now }))
	require.NoError(t, store.SaveProduct(ctx, &models.Product{ID: "p1"}))
	seedOrder(t, store, models.Order{TotalAmount: price("20"), Status: models.OrderPending, CreatedAt: now})

	s, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalProducts)
	assert.Equal(t, 1, s.TotalOrders)
	assert.True(t, s.TodaySales.Equal(price("20")))
}
