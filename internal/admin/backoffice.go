package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"

	"github.com/google/uuid"
)

var ErrNothingToUpdate = errors.New("nothing to update")

// ProductIndexer mirrors catalog changes into the search index.
type ProductIndexer interface {
	Sync(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
}

// StatusNotifier tells the customer their order moved.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, order models.Order) error
}

type Repositories struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Banners    repository.BannerRepository
	Orders     repository.OrderRepository
	Reviews    repository.ReviewRepository
	Settings   repository.SettingsRepository
}

// Backoffice implements the admin screens on top of the repositories.
type Backoffice struct {
	Products   *Collection[models.Product]
	Categories *Collection[models.Category]
	Banners    *Collection[models.Banner]
	Orders     *Collection[models.Order]
	Reviews    *Collection[models.Review]

	products   repository.ProductRepository
	categories repository.CategoryRepository
	orders     repository.OrderRepository
	reviews    repository.ReviewRepository
	settings   repository.SettingsRepository

	cache    *cache.Cache
	search   ProductIndexer
	notifier StatusNotifier
	now      func() time.Time
}

type Option func(*Backoffice)

func WithSearch(idx ProductIndexer) Option { return func(b *Backoffice) { b.search = idx } }

func WithStatusNotifier(n StatusNotifier) Option { return func(b *Backoffice) { b.notifier = n } }

func WithClock(now func() time.Time) Option { return func(b *Backoffice) { b.now = now } }

func New(repos Repositories, c *cache.Cache, opts ...Option) *Backoffice {
	b := &Backoffice{
		products:   repos.Products,
		categories: repos.Categories,
		orders:     repos.Orders,
		reviews:    repos.Reviews,
		settings:   repos.Settings,
		cache:      c,
		now:        time.Now,
	}

	b.Products = NewCollection("products", c, Source[models.Product]{
		Fetch: func(ctx context.Context) ([]models.Product, error) {
			return repos.Products.ListProducts(ctx, repository.ProductFilter{})
		},
		Save:   repos.Products.SaveProduct,
		Delete: repos.Products.DeleteProduct,
	}, func(p models.Product) string { return p.ID }, newestFirst(func(p models.Product) time.Time { return p.CreatedAt }),
		cache.KeyFeaturedProducts)

	b.Categories = NewCollection("categories", c, Source[models.Category]{
		Fetch: func(ctx context.Context) ([]models.Category, error) {
			return repos.Categories.ListCategories(ctx, false)
		},
		Save:   repos.Categories.SaveCategory,
		Delete: repos.Categories.DeleteCategory,
	}, func(c models.Category) string { return c.ID }, repository.SortCategories,
		cache.KeyActiveCategories)

	b.Banners = NewCollection("banners", c, Source[models.Banner]{
		Fetch:  func(ctx context.Context) ([]models.Banner, error) { return repos.Banners.ListBanners(ctx, false) },
		Save:   repos.Banners.SaveBanner,
		Delete: repos.Banners.DeleteBanner,
	}, func(b models.Banner) string { return b.ID }, repository.SortBanners,
		cache.KeyActiveBanners)

	b.Orders = NewCollection("orders", c, Source[models.Order]{
		Fetch: func(ctx context.Context) ([]models.Order, error) {
			return repos.Orders.ListOrders(ctx, repository.OrderFilter{})
		},
	}, func(o models.Order) string { return o.ID }, newestFirst(func(o models.Order) time.Time { return o.CreatedAt }))

	b.Reviews = NewCollection("reviews", c, Source[models.Review]{
		Fetch: func(ctx context.Context) ([]models.Review, error) {
			return repos.Reviews.ListReviews(ctx, repository.ReviewFilter{})
		},
		Delete: repos.Reviews.DeleteReview,
	}, func(r models.Review) string { return r.ID }, newestFirst(func(r models.Review) time.Time { return r.CreatedAt }))

	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newestFirst[T any](at func(T) time.Time) func([]T) {
	return func(list []T) {
		slices.SortStableFunc(list, func(a, b T) int { return at(b).Compare(at(a)) })
	}
}

// ---------- Products ----------

func (b *Backoffice) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = b.now().UTC()
	p.UpdatedAt = p.CreatedAt
	if err := b.Products.Create(ctx, p); err != nil {
		return err
	}
	b.index(ctx, *p)
	return nil
}

// UpdateProduct replaces every editable field of an existing product.
func (b *Backoffice) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	existing, err := b.products.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = b.now().UTC()
	if err := b.Products.Update(ctx, p); err != nil {
		return err
	}
	b.index(ctx, *p)
	return nil
}

func (b *Backoffice) DeleteProduct(ctx context.Context, id string) error {
	if err := b.Products.Delete(ctx, id); err != nil {
		return err
	}
	if b.search != nil {
		if err := b.search.Delete(ctx, id); err != nil {
			log.Printf("⚠️ Search unindex %s: %v", id, err)
		}
	}
	return nil
}

func (b *Backoffice) index(ctx context.Context, p models.Product) {
	if b.search == nil {
		return
	}
	if err := b.search.Sync(ctx, p); err != nil {
		log.Printf("⚠️ Search index %s: %v", p.ID, err)
	}
}

// ---------- Categories & banners ----------

func (b *Backoffice) SaveCategory(ctx context.Context, c *models.Category) error {
	if err := ValidateCategory(c); err != nil {
		return err
	}
	c.UpdatedAt = b.now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
		c.CreatedAt = c.UpdatedAt
		return b.Categories.Create(ctx, c)
	}
	existing, err := b.categories.GetCategory(ctx, c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt
	return b.Categories.Update(ctx, c)
}

func (b *Backoffice) SaveBanner(ctx context.Context, bn *models.Banner) error {
	if err := ValidateBanner(bn); err != nil {
		return err
	}
	if bn.ID == "" {
		bn.ID = uuid.NewString()
		bn.CreatedAt = b.now().UTC()
		return b.Banners.Create(ctx, bn)
	}

	// banners have no single-row read; the admin list is the lookup
	list, err := b.Banners.List(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(list, func(x models.Banner) bool { return x.ID == bn.ID })
	if i < 0 {
		return fmt.Errorf("banner %s: %w", bn.ID, repository.ErrNotFound)
	}
	bn.CreatedAt = list[i].CreatedAt
	return b.Banners.Update(ctx, bn)
}

// ---------- Orders ----------

func (b *Backoffice) OrderItems(ctx context.Context, orderID string) (*models.OrderWithItems, error) {
	order, err := b.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := b.orders.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &models.OrderWithItems{Order: *order, Items: items}, nil
}

// IncompleteOrders lists headers whose item rows were never confirmed.
func (b *Backoffice) IncompleteOrders(ctx context.Context) ([]models.Order, error) {
	return b.orders.ListOrders(ctx, repository.OrderFilter{Incomplete: true})
}

// UpdateOrder applies the admin's changes and emails the customer when the
// fulfilment status moved.
func (b *Backoffice) UpdateOrder(ctx context.Context, id string, u repository.OrderUpdate) (*models.Order, error) {
	if u.Empty() {
		return nil, ErrNothingToUpdate
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, invalid("status inválido")
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return nil, invalid("status de pagamento inválido")
	}

	before, err := b.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.orders.UpdateOrder(ctx, id, u); err != nil {
		return nil, err
	}
	after, err := b.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Orders.Updated(ctx, *after)

	if b.notifier != nil && after.Status != before.Status {
		if err := b.notifier.StatusChanged(ctx, *after); err != nil {
			log.Printf("⚠️ Status email for %s: %v", after.OrderNumber, err)
		}
	}
	return after, nil
}

// ---------- Reviews ----------

func (b *Backoffice) SetReviewApproved(ctx context.Context, id string, approved bool) (*models.Review, error) {
	if err := b.reviews.SetReviewApproved(ctx, id, approved); err != nil {
		return nil, err
	}
	r, err := b.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Reviews.Updated(ctx, *r)
	return r, nil
}

// ---------- Settings ----------

func (b *Backoffice) Settings(ctx context.Context) (models.SiteSettings, error) {
	return b.settings.GetSettings(ctx)
}

// SaveSettings overwrites the single settings row, creating it on first save.
func (b *Backoffice) SaveSettings(ctx context.Context, s *models.SiteSettings) error {
	if s.ID == "" {
		current, err := b.settings.GetSettings(ctx)
		if err != nil {
			return err
		}
		s.ID = current.ID
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := b.settings.SaveSettings(ctx, s); err != nil {
		return err
	}
	cache.Invalidate(ctx, b.cache, cache.KeySiteSettings)
	return nil
}
