package product

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"
	"techshop_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Searcher is the full-text product search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]services.ProductDocument, error)
}

// Catalog serves the public storefront.
type Catalog struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	banners    repository.BannerRepository
	reviews    repository.ReviewRepository
	settings   repository.SettingsRepository
	search     Searcher
	cache      *cache.Cache
	onReview   func(context.Context, models.Review)
}

type CatalogOption func(*Catalog)

// WithReviewObserver is called with every review a customer submits, e.g.
// to put it on the moderation list.
func WithReviewObserver(f func(context.Context, models.Review)) CatalogOption {
	return func(h *Catalog) { h.onReview = f }
}

func NewCatalog(p repository.ProductRepository, c repository.CategoryRepository, b repository.BannerRepository,
	r repository.ReviewRepository, s repository.SettingsRepository, search Searcher, rc *cache.Cache, opts ...CatalogOption) *Catalog {
	h := &Catalog{products: p, categories: c, banners: b, reviews: r, settings: s, search: search, cache: rc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type categoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is a product as the storefront shows it: with its category and the
// price the customer actually pays.
type View struct {
	models.Product
	Category       *categoryRef    `json:"categories,omitempty"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	OnSale         bool            `json:"on_sale"`
}

func (h *Catalog) activeCategories(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, h.cache, cache.KeyActiveCategories, cache.CatalogCacheTTL,
		func(ctx context.Context) ([]models.Category, error) { return h.categories.ListCategories(ctx, true) })
}

func (h *Catalog) views(ctx context.Context, list []models.Product) []View {
	names := map[string]string{}
	if cats, err := h.categories.ListCategories(ctx, false); err == nil {
		for _, c := range cats {
			names[c.ID] = c.Name
		}
	}
	out := make([]View, 0, len(list))
	for _, p := range list {
		v := View{Product: p, EffectivePrice: p.EffectivePrice()}
		v.OnSale = !v.EffectivePrice.Equal(p.Price)
		if name, ok := names[p.CategoryID]; ok {
			v.Category = &categoryRef{ID: p.CategoryID, Name: name}
		}
		out = append(out, v)
	}
	return out
}

// GET /api/products?category=<id>
func (h *Catalog) ListProducts(c *gin.Context) {
	list, err := h.products.ListProducts(c.Request.Context(), repository.ProductFilter{
		ActiveOnly: true,
		CategoryID: c.Query("category"),
	})
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar produtos")
		return
	}
	c.JSON(http.StatusOK, h.views(c.Request.Context(), list))
}

// GET /api/products/featured
func (h *Catalog) Featured(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := cache.Remember(ctx, h.cache, cache.KeyFeaturedProducts, cache.CatalogCacheTTL,
		func(ctx context.Context) ([]View, error) {
			list, err := h.products.ListProducts(ctx, repository.ProductFilter{ActiveOnly: true, FeaturedOnly: true})
			if err != nil {
				return nil, err
			}
			return h.views(ctx, list), nil
		})
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar destaques")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/products/search?q=
func (h *Catalog) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Informe o termo de busca"})
		return
	}

	docs, err := h.search.Search(c.Request.Context(), q, handlers.QueryInt(c, "limit", 20))
	if errors.Is(err, services.ErrSearchDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Busca indisponível"})
		return
	}
	if err != nil {
		handlers.Fail(c, err, "Erro na busca")
		return
	}
	if docs == nil {
		docs = []services.ProductDocument{}
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "results": docs, "total": len(docs)})
}

// GET /api/products/:id
func (h *Catalog) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.products.GetProduct(ctx, c.Param("id"))
	if err == nil && !p.IsActive {
		err = repository.ErrNotFound
	}
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar produto")
		return
	}

	approved, err := h.reviews.ListReviews(ctx, repository.ReviewFilter{ProductID: p.ID, ApprovedOnly: true})
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar avaliações")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": h.views(ctx, []models.Product{*p})[0],
		"specs":   specRows(p.Specifications),
		"rating":  models.RatingOf(p.ID, approved),
	})
}

type specRow struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// specRows lists specifications in key order for the details table.
func specRows(s models.Specifications) []specRow {
	rows := make([]specRow, 0, len(s))
	for _, k := range s.Keys() {
		rows = append(rows, specRow{Name: k, Value: s[k]})
	}
	return rows
}

// GET /api/products/:id/reviews
func (h *Catalog) ListReviews(c *gin.Context) {
	list, err := h.reviews.ListReviews(c.Request.Context(), repository.ReviewFilter{ProductID: c.Param("id"), ApprovedOnly: true})
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar avaliações")
		return
	}
	for i := range list {
		list[i].CustomerEmail = ""
	}
	if list == nil {
		list = []models.Review{}
	}
	c.JSON(http.StatusOK, list)
}

type reviewInput struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	Comment       string `json:"comment"`
}

// POST /api/products/:id/reviews stores the review unapproved.
func (h *Catalog) SubmitReview(c *gin.Context) {
	var in reviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome e nota (1 a 5) são obrigatórios"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.products.GetProduct(ctx, c.Param("id"))
	if err == nil && !p.IsActive {
		err = repository.ErrNotFound
	}
	if err != nil {
		handlers.Fail(c, err, "Erro ao enviar avaliação")
		return
	}

	r := models.Review{
		ID:            uuid.NewString(),
		ProductID:     p.ID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: repository.NormalizeEmail(in.CustomerEmail),
		Rating:        in.Rating,
		Comment:       strings.TrimSpace(in.Comment),
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.reviews.SaveReview(ctx, &r); err != nil {
		handlers.Fail(c, err, "Erro ao enviar avaliação")
		return
	}
	if h.onReview != nil {
		h.onReview(ctx, r)
	} else {
		cache.Invalidate(ctx, h.cache, cache.AdminListKey("reviews"))
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Avaliação enviada para aprovação", "review": r})
}

// GET /api/categories
func (h *Catalog) ListCategories(c *gin.Context) {
	list, err := h.activeCategories(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar categorias")
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/banners
func (h *Catalog) ListBanners(c *gin.Context) {
	list, err := cache.Remember(c.Request.Context(), h.cache, cache.KeyActiveBanners, cache.CatalogCacheTTL,
		func(ctx context.Context) ([]models.Banner, error) { return h.banners.ListBanners(ctx, true) })
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar banners")
		return
	}
	if list == nil {
		list = []models.Banner{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/settings
func (h *Catalog) Settings(c *gin.Context) {
	s, err := cache.Remember(c.Request.Context(), h.cache, cache.KeySiteSettings, cache.CatalogCacheTTL, h.settings.GetSettings)
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar configurações")
		return
	}
	c.JSON(http.StatusOK, s)
}
