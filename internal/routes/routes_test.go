package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"techshop_back_end/internal/admin"
	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/checkout"
	"techshop_back_end/internal/config"
	adminhandlers "techshop_back_end/internal/handlers/admin"
	"techshop_back_end/internal/handlers/payment"
	"techshop_back_end/internal/handlers/product"
	"techshop_back_end/internal/handlers/user"
	"techshop_back_end/internal/middleware"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository/repotest"
	"techshop_back_end/internal/services"
	"techshop_back_end/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*gin.Engine, *config.Config, *repotest.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		JWTSecret:       "routes-secret",
		TokenTTL:        time.Hour,
		SessionSecret:   "0123456789abcdef0123456789abcdef",
		AllowOrigins:    []string{"http://shop.test"},
		APIMaxRequests:  1000,
		CartMaxRequests: 1000,
		Currency:        "brl",
	}
	rc := cache.New(client)
	store := repotest.New()
	persister := cart.NewRedisPersister(client)
	carts := cart.NewManager(persister)
	office := admin.New(admin.Repositories{
		Products: store, Categories: store, Banners: store,
		Orders: store, Reviews: store, Settings: store,
	}, rc)

	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Config:   cfg,
		Cache:    rc,
		Sessions: middleware.NewSessionStore(cfg),
		Catalog:  product.NewCatalog(store, store, store, store, store, services.NewProductIndex(nil), rc),
		Cart:     user.NewCart(carts, store, store, persister, cfg.AllowOrigins),
		Account:  user.NewAccount(store, store, rc, []byte(cfg.JWTSecret), cfg.TokenTTL, nil, ""),
		Checkout: payment.NewCheckout(checkout.NewService(store, uuid.NewString), carts, store,
			services.NewPayments(cfg, nil), office),
		Admin: adminhandlers.New(office, services.NewImageStore(nil, cfg)),
	})
	return r, cfg, store
}

func token(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	tok, _, err := utils.GenerateJWT([]byte(cfg.JWTSecret), models.Account{ID: uuid.NewString(), Email: role + "@shop.test", Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func request(r *gin.Engine, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _, _ := newServer(t)
	w := request(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r, cfg, _ := newServer(t)

	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/admin/stats", "", nil).Code)

	customer := http.Header{"Authorization": {"Bearer " + token(t, cfg, models.RoleCustomer)}}
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/api/admin/stats", "", customer).Code)

	adminHdr := http.Header{"Authorization": {"Bearer " + token(t, cfg, models.RoleAdmin)}}
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/admin/stats", "", adminHdr).Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/admin/orders/incomplete", "", adminHdr).Code)
}

func TestCartFollowsSessionCookie(t *testing.T) {
	r, _, store := newServer(t)
	require.NoError(t, store.SaveProduct(t.Context(), &models.Product{ID: "hub", Name: "Hub", Price: decimal.NewFromInt(50), IsActive: true}))

	w := request(r, http.MethodPost, "/api/cart/items", `{"id":"hub","quantity":2}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.CartSessionName, cookies[0].Name)

	withCookie := http.Header{"Cookie": {cookies[0].Name + "=" + cookies[0].Value}}
	w = request(r, http.MethodPost, "/api/cart/items", `{"id":"hub","quantity":2}`, withCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = request(r, http.MethodGet, "/api/cart", "", withCookie)
	assert.Contains(t, w.Body.String(), `"total_items":3`)

	w = request(r, http.MethodGet, "/api/cart", "", nil)
	assert.Contains(t, w.Body.String(), `"total_items":0`)
}

func TestCardAndSearchUnavailableWithoutBackends(t *testing.T) {
	r, _, _ := newServer(t)

	assert.Equal(t, http.StatusServiceUnavailable, request(r, http.MethodGet, "/api/products/search?q=mouse", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/api/payments/webhook", `{}`, nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _, _ := newServer(t)
	h := http.Header{
		"Origin":                        {"http://shop.test"},
		"Access-Control-Request-Method": {"POST"},
	}
	w := request(r, http.MethodOptions, "/api/cart/items", "", h)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://shop.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsConfigWildcard(t *testing.T) {
	cfg := corsConfig([]string{"*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)

	cfg = corsConfig([]string{"http://a.test"})
	assert.Equal(t, []string{"http://a.test"}, cfg.AllowOrigins)
	assert.True(t, cfg.AllowCredentials)
}
