package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"techshop_back_end/internal/config"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/utils"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83/webhook"
)

func TestDocumentForFlattensSpecifications(t *testing.T) {
	sale := decimal.RequireFromString("89.90")
	p := models.Product{
		ID:             "p1",
		Name:           "Mouse",
		Price:          decimal.RequireFromString("99.90"),
		SalePrice:      &sale,
		Images:         []string{"a.jpg", "b.jpg"},
		Specifications: models.Specifications{"dpi": "16000", "cor": "preto"},
	}

	doc := DocumentFor(p)

	assert.Equal(t, "a.jpg", doc.Image)
	assert.Equal(t, []string{"cor: preto", "dpi: 16000"}, doc.Specs)
	require.NotNil(t, doc.SalePrice)
	assert.True(t, doc.SalePrice.Equal(sale))
}

func TestSearchQueryBoostsName(t *testing.T) {
	q := SearchQuery("teclado", 10)

	assert.Equal(t, 10, q["size"])
	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "teclado", mm["query"])
	assert.Contains(t, mm["fields"], "name^3")
}

func TestProductIndexWithoutClient(t *testing.T) {
	idx := NewProductIndex(nil)
	ctx := context.Background()

	_, err := idx.Search(ctx, "x", 5)
	assert.ErrorIs(t, err, ErrSearchDisabled)
	assert.ErrorIs(t, idx.Sync(ctx, models.Product{ID: "p", IsActive: true}), ErrSearchDisabled)
	assert.ErrorIs(t, idx.Delete(ctx, "p"), ErrSearchDisabled)
}

func newElasticStub(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/" {
			fmt.Fprint(w, `{"version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestProductIndexSearchParsesHits(t *testing.T) {
	var gotBody map[string]any
	client := newElasticStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/products/_search"))
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		fmt.Fprint(w, `{"hits":{"hits":[{"_source":{"id":"p1","name":"Teclado","price":"199.9"}}]}}`)
	})

	docs, err := NewProductIndex(client).Search(context.Background(), "teclado", 0)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Teclado", docs[0].Name)
	assert.True(t, docs[0].Price.Equal(decimal.RequireFromString("199.90")))
	assert.EqualValues(t, 20, gotBody["size"])
}

func TestProductIndexSyncRemovesInactive(t *testing.T) {
	var method, path string
	client := newElasticStub(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"result":"not_found"}`)
	})

	err := NewProductIndex(client).Sync(context.Background(), models.Product{ID: "p9", IsActive: false})

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/products/_doc/p9", path)
}

func TestObjectName(t *testing.T) {
	name, err := ObjectName("products", "image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "products/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	_, err = ObjectName("products", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = ObjectName("../etc", "image/png")
	assert.ErrorIs(t, err, ErrInvalidImageGroup)
}

func TestImageStoreURL(t *testing.T) {
	store := NewImageStore(nil, &config.Config{MinIOEndpoint: "cdn.local:9000", MinIOBucket: "shop-images", MinIOUseSSL: true})

	assert.Equal(t, "https://cdn.local:9000/shop-images/banners/x.webp", store.URL("banners/x.webp"))

	_, err := store.Upload(context.Background(), "banners", strings.NewReader("x"), 1, "image/webp")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestAmountInCents(t *testing.T) {
	assert.EqualValues(t, 25000, AmountInCents(decimal.RequireFromString("250")))
	assert.EqualValues(t, 1999, AmountInCents(decimal.RequireFromString("19.99")))
	assert.EqualValues(t, 1000, AmountInCents(decimal.RequireFromString("9.995")))
}

func TestPreparePix(t *testing.T) {
	cfg := &config.Config{PixKey: "loja@techshop.com", PixMerchantName: "TECHSHOP", PixMerchantCity: "SAO PAULO", Currency: "brl"}
	p := NewPayments(cfg, utils.NewPixIssuer(cfg))
	order := models.Order{OrderNumber: "PED1", TotalAmount: decimal.RequireFromString("250.00"), PaymentMethod: models.PaymentMethodPix}

	instr, err := p.Prepare(context.Background(), order)

	require.NoError(t, err)
	require.NotNil(t, instr)
	assert.Equal(t, models.PaymentMethodPix, instr.Method)
	assert.Contains(t, instr.PixCode, "loja@techshop.com")
	assert.True(t, strings.HasPrefix(instr.QRCode, "data:image/png;base64,"))

	order.PaymentMethod = models.PaymentMethodCredit
	instr, err = p.Prepare(context.Background(), order)
	require.NoError(t, err)
	assert.Nil(t, instr)
}

func TestCreateCardIntentRequiresStripe(t *testing.T) {
	p := NewPayments(&config.Config{Currency: "brl"}, nil)

	_, err := p.CreateCardIntent(context.Background(), models.Order{PaymentMethod: models.PaymentMethodCredit})
	assert.ErrorIs(t, err, ErrCardPaymentsDisabled)
}

func signedEvent(t *testing.T, secret, eventType, orderID string) ([]byte, string) {
	t.Helper()
	payload := fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"api_version":"2020-08-27","data":{"object":{"id":"pi_1","object":"payment_intent","metadata":{"order_id":%q}}}}`, eventType, orderID)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestParseWebhook(t *testing.T) {
	p := NewPayments(&config.Config{StripeWebhookSecret: "whsec_test"}, nil)

	payload, sig := signedEvent(t, "whsec_test", "payment_intent.succeeded", "o1")
	ev, err := p.ParseWebhook(payload, sig)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, PaymentEvent{OrderID: "o1", Status: models.PaymentPaid}, *ev)

	payload, sig = signedEvent(t, "whsec_test", "payment_intent.payment_failed", "o2")
	ev, err = p.ParseWebhook(payload, sig)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, ev.Status)

	payload, sig = signedEvent(t, "whsec_test", "customer.created", "o3")
	ev, err = p.ParseWebhook(payload, sig)
	require.NoError(t, err)
	assert.Nil(t, ev)

	payload, sig = signedEvent(t, "other_secret", "payment_intent.succeeded", "o4")
	_, err = p.ParseWebhook(payload, sig)
	assert.Error(t, err)
}
