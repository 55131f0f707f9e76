package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/checkout"
	"techshop_back_end/internal/middleware"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"
	"techshop_back_end/internal/repository/repotest"
	"techshop_back_end/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCards struct {
	intentErr error
	event     *services.PaymentEvent
	parseErr  error
	intents   int
}

func (f *fakeCards) CreateCardIntent(_ context.Context, o models.Order) (*services.CardIntent, error) {
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	f.intents++
	return &services.CardIntent{PaymentID: "pi_1", ClientSecret: "pi_1_secret", Amount: 1000, Currency: "brl"}, nil
}

func (f *fakeCards) ParseWebhook([]byte, string) (*services.PaymentEvent, error) {
	return f.event, f.parseErr
}

// storeUpdater applies payment updates straight to the repository.
type storeUpdater struct{ store *repotest.Store }

func (u storeUpdater) UpdateOrder(ctx context.Context, id string, up repository.OrderUpdate) (*models.Order, error) {
	if err := u.store.UpdateOrder(ctx, id, up); err != nil {
		return nil, err
	}
	return u.store.GetOrder(ctx, id)
}

// itemsFail breaks the second write of a checkout.
type itemsFail struct{ *repotest.Store }

func (itemsFail) CreateOrderItems(context.Context, string, []models.OrderItem) error {
	return errors.New("write timeout")
}

type env struct {
	r       *gin.Engine
	store   *repotest.Store
	manager *cart.Manager
	cards   *fakeCards
}

func identify(c *gin.Context) {
	c.Set(middleware.KeyCartSession, "s1")
	if uid := c.GetHeader("X-User"); uid != "" {
		c.Set(middleware.KeyUserID, uid)
	}
	c.Next()
}

func newEnv(t *testing.T, writer checkout.OrderWriter) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repotest.New()
	if writer == nil {
		writer = store
	}
	manager := cart.NewManager(cart.NewRedisPersister(client))
	cards := &fakeCards{}
	h := NewCheckout(checkout.NewService(writer, uuid.NewString), manager, store, cards, storeUpdater{store})

	r := gin.New()
	g := r.Group("", identify)
	g.POST("/checkout", h.Submit)
	g.POST("/orders/:number/payment-intent", h.PaymentIntent)
	r.POST("/payments/webhook", h.Webhook)
	return &env{r: r, store: store, manager: manager, cards: cards}
}

func (e *env) fillCart(t *testing.T, key string) {
	t.Helper()
	ctx := context.Background()
	store, err := e.manager.Open(ctx, key)
	require.NoError(t, err)
	require.NoError(t, store.Merge(ctx, []models.CartLineItem{{ID: "mouse", Name: "Mouse", UnitPrice: decimal.RequireFromString("89.90"), Quantity: 2}}))
}

func (e *env) post(path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

const form = `{"name":"Ana","email":"ana@example.com","phone":"11999990000","address":"Rua A, 1","city":"São Paulo","zipCode":"01000-000","paymentMethod":"credit"}`

func TestSubmitCreatesOrderAndClearsCart(t *testing.T) {
	e := newEnv(t, nil)
	e.fillCart(t, "user:u1")

	w := e.post("/checkout", form, "X-User", "u1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var receipt checkout.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	assert.True(t, strings.HasPrefix(receipt.OrderNumber, "PED"))
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("179.80")))
	assert.Equal(t, "/", receipt.Redirect)

	order, err := e.store.GetOrder(context.Background(), receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "u1", order.UserID)
	assert.True(t, order.ItemsConfirmed)
	assert.Equal(t, "Rua A, 1, São Paulo - CEP 01000-000", order.CustomerAddress)

	items, err := e.store.ListOrderItems(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("179.80")))

	left, err := e.manager.Snapshot(context.Background(), "user:u1")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSubmitRejections(t *testing.T) {
	e := newEnv(t, nil)

	w := e.post("/checkout", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/"`)

	e.fillCart(t, "session:s1")
	w = e.post("/checkout", `{"name":"Ana","email":"ana@example.com","address":"Rua A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"phone"`)

	w = e.post("/checkout", strings.Replace(form, `"credit"`, `"boleto"`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	orders, _ := e.store.ListOrders(context.Background(), repository.OrderFilter{})
	assert.Empty(t, orders)
}

func TestSubmitItemsFailureKeepsCart(t *testing.T) {
	e := newEnv(t, itemsFail{repotest.New()})
	e.fillCart(t, "session:s1")

	w := e.post("/checkout", form)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), checkout.FailureMessage)
	assert.Contains(t, w.Body.String(), `"order_number":"PED`)

	left, err := e.manager.Snapshot(context.Background(), "session:s1")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func seedOrder(t *testing.T, store *repotest.Store, o models.Order) models.Order {
	t.Helper()
	require.NoError(t, store.CreateOrder(context.Background(), &o))
	return o
}

func TestPaymentIntentOwnership(t *testing.T) {
	e := newEnv(t, nil)
	seedOrder(t, e.store, models.Order{OrderNumber: "PED1", UserID: "u1", CustomerEmail: "ana@example.com",
		PaymentMethod: models.PaymentMethodCredit, PaymentStatus: models.PaymentPending})

	assert.Equal(t, http.StatusNotFound, e.post("/orders/PED1/payment-intent", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, e.post("/orders/PED1/payment-intent", `{}`, "X-User", "u2").Code)

	w := e.post("/orders/PED1/payment-intent", `{"email":" ANA@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"clientSecret":"pi_1_secret"`)

	w = e.post("/orders/PED1/payment-intent", ``, "X-User", "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, e.cards.intents)
}

func TestPaymentIntentErrors(t *testing.T) {
	e := newEnv(t, nil)
	seedOrder(t, e.store, models.Order{OrderNumber: "PAID", UserID: "u1", PaymentStatus: models.PaymentPaid})
	seedOrder(t, e.store, models.Order{OrderNumber: "PED2", UserID: "u1", PaymentStatus: models.PaymentPending})

	assert.Equal(t, http.StatusConflict, e.post("/orders/PAID/payment-intent", ``, "X-User", "u1").Code)

	e.cards.intentErr = services.ErrCardPaymentsDisabled
	assert.Equal(t, http.StatusServiceUnavailable, e.post("/orders/PED2/payment-intent", ``, "X-User", "u1").Code)
	e.cards.intentErr = services.ErrNotCardOrder
	assert.Equal(t, http.StatusBadRequest, e.post("/orders/PED2/payment-intent", ``, "X-User", "u1").Code)
	e.cards.intentErr = errors.New("stripe down")
	assert.Equal(t, http.StatusBadGateway, e.post("/orders/PED2/payment-intent", ``, "X-User", "u1").Code)
}

func TestWebhookMarksOrderPaid(t *testing.T) {
	e := newEnv(t, nil)
	o := seedOrder(t, e.store, models.Order{OrderNumber: "PED1", PaymentStatus: models.PaymentPending})

	e.cards.event = &services.PaymentEvent{OrderID: o.ID, Status: models.PaymentPaid}
	require.Equal(t, http.StatusOK, e.post("/payments/webhook", `{}`).Code)

	got, err := e.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)

	e.cards.event = &services.PaymentEvent{OrderID: "missing", Status: models.PaymentFailed}
	assert.Equal(t, http.StatusOK, e.post("/payments/webhook", `{}`).Code)

	e.cards.event = nil
	assert.Equal(t, http.StatusOK, e.post("/payments/webhook", `{}`).Code)

	e.cards.parseErr = errors.New("bad signature")
	assert.Equal(t, http.StatusBadRequest, e.post("/payments/webhook", `{}`).Code)
}
