package user

import (
	"context"
	"errors"
	"log"
	"net/http"

	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/middleware"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CartEvents delivers the updated/cleared notifications of one cart.
type CartEvents interface {
	Subscribe(ctx context.Context, key string) *redis.PubSub
}

// Cart serves the shopping cart of the current browser or customer.
type Cart struct {
	carts      *cart.Manager
	products   repository.ProductRepository
	categories repository.CategoryRepository
	events     CartEvents
	origins    []string
}

func NewCart(carts *cart.Manager, products repository.ProductRepository, categories repository.CategoryRepository,
	events CartEvents, allowedOrigins []string) *Cart {
	return &Cart{carts: carts, products: products, categories: categories, events: events, origins: allowedOrigins}
}

// CartView is the cart as returned to the front end.
type CartView struct {
	Items      []models.CartLineItem `json:"items"`
	Count      int                   `json:"count"`
	TotalItems int                   `json:"total_items"`
	TotalPrice decimal.Decimal       `json:"total_price"`
	Formatted  string                `json:"total_formatted"`
}

func viewOf(items []models.CartLineItem) CartView {
	if items == nil {
		items = []models.CartLineItem{}
	}
	total := cart.Total(items)
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return CartView{Items: items, Count: len(items), TotalItems: n, TotalPrice: total, Formatted: cart.FormatPrice(total)}
}

var errUnavailable = errors.New("product unavailable")

// lineFor prices a cart line from the catalog, never from the client.
func (h *Cart) lineFor(ctx context.Context, productID string, qty int) (models.CartLineItem, error) {
	p, err := h.products.GetProduct(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.IsActive) {
		return models.CartLineItem{}, errUnavailable
	}
	if err != nil {
		return models.CartLineItem{}, err
	}

	line := models.CartLineItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.EffectivePrice(),
		Image:     p.MainImage(),
		Quantity:  qty,
	}
	if p.CategoryID != "" {
		if cat, err := h.categories.GetCategory(ctx, p.CategoryID); err == nil {
			line.Category = cat.Name
		}
	}
	return line, nil
}

func (h *Cart) open(c *gin.Context) (*cart.Store, bool) {
	store, err := h.carts.Open(c.Request.Context(), middleware.CartKey(c))
	if err != nil {
		log.Printf("❌ Open cart %s: %v", middleware.CartKey(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar carrinho"})
		return nil, false
	}
	return store, true
}

func (h *Cart) mutationFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidItem):
		handlers.BadRequest(c)
	case errors.Is(err, errUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produto indisponível"})
	default:
		log.Printf("❌ Cart %s: %v", middleware.CartKey(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar carrinho"})
	}
}

// GET /api/cart
func (h *Cart) Get(c *gin.Context) {
	store, ok := h.open(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(store.Items()))
}

type addInput struct {
	ID       string `json:"id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// POST /api/cart/items
func (h *Cart) AddItem(c *gin.Context) {
	var in addInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	store, ok := h.open(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	line, err := h.lineFor(ctx, in.ID, in.Quantity)
	if err == nil {
		err = store.Add(ctx, line)
	}
	if err != nil {
		h.mutationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(store.Items()))
}

type quantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// PUT /api/cart/items/:id; a quantity of zero or less removes the line.
func (h *Cart) UpdateItem(c *gin.Context) {
	var in quantityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	store, ok := h.open(c)
	if !ok {
		return
	}
	if err := store.UpdateQuantity(c.Request.Context(), c.Param("id"), *in.Quantity); err != nil {
		h.mutationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(store.Items()))
}

// DELETE /api/cart/items/:id
func (h *Cart) RemoveItem(c *gin.Context) {
	store, ok := h.open(c)
	if !ok {
		return
	}
	if err := store.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.mutationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(store.Items()))
}

// DELETE /api/cart
func (h *Cart) Clear(c *gin.Context) {
	store, ok := h.open(c)
	if !ok {
		return
	}
	if err := store.Clear(c.Request.Context()); err != nil {
		h.mutationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(nil))
}

type syncInput struct {
	Items []addInput `json:"items"`
}

// POST /api/cart/sync folds a cart kept in the browser into the server cart.
// For a signed-in customer the anonymous session cart is folded in too and
// then emptied.
func (h *Cart) Sync(c *gin.Context) {
	var in syncInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	store, ok := h.open(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		incoming []models.CartLineItem
		skipped  = []string{}
	)
	for _, it := range in.Items {
		line, err := h.lineFor(ctx, it.ID, it.Quantity)
		if errors.Is(err, errUnavailable) {
			skipped = append(skipped, it.ID)
			continue
		}
		if err != nil {
			h.mutationFailed(c, err)
			return
		}
		incoming = append(incoming, line)
	}

	var guest *cart.Store
	if sessionKey := middleware.SessionCartKey(c); sessionKey != "" && sessionKey != store.Key() {
		var err error
		guest, err = h.carts.Open(ctx, sessionKey)
		if err != nil {
			log.Printf("⚠️ Open guest cart %s: %v", sessionKey, err)
			guest = nil
		} else {
			incoming = append(incoming, guest.Items()...)
		}
	}

	if err := store.Merge(ctx, incoming); err != nil {
		h.mutationFailed(c, err)
		return
	}
	if guest != nil && guest.Len() > 0 {
		if err := guest.Clear(ctx); err != nil {
			log.Printf("⚠️ Clear guest cart %s: %v", guest.Key(), err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"cart": viewOf(store.Items()), "skipped": skipped})
}
