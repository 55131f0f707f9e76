package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	backoffice "techshop_back_end/internal/admin"
	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository/repotest"
	"techshop_back_end/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	folder string
	body   []byte
	ctype  string
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, folder string, r io.Reader, _ int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.folder, f.ctype = folder, contentType
	f.body, _ = io.ReadAll(r)
	return "http://img.test/techshop/" + folder + "/x.png", nil
}

func newRouter(t *testing.T) (*gin.Engine, *repotest.Store, *fakeUploader) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repotest.New()
	office := backoffice.New(backoffice.Repositories{
		Products: store, Categories: store, Banners: store,
		Orders: store, Reviews: store, Settings: store,
	}, cache.New(client))
	uploads := &fakeUploader{}
	h := New(office, uploads)

	r := gin.New()
	r.GET("/products", h.ListProducts)
	r.POST("/products", h.CreateProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)
	r.GET("/categories", h.ListCategories)
	r.POST("/categories", h.SaveCategory)
	r.PUT("/categories/:id", h.SaveCategory)
	r.DELETE("/categories/:id", h.DeleteCategory)
	r.GET("/banners", h.ListBanners)
	r.POST("/banners", h.SaveBanner)
	r.PUT("/banners/:id", h.SaveBanner)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/incomplete", h.IncompleteOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.PUT("/orders/:id/status", h.UpdateOrderStatus)
	r.PUT("/orders/:id/payment", h.UpdatePaymentStatus)
	r.PUT("/orders/:id/tracking", h.UpdateTracking)
	r.GET("/reviews", h.ListReviews)
	r.PUT("/reviews/:id/approval", h.SetReviewApproval)
	r.DELETE("/reviews/:id", h.DeleteReview)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.SaveSettings)
	r.GET("/stats", h.Stats)
	r.POST("/uploads/:folder", h.UploadImage)
	return r, store, uploads
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProductFromAdminForm(t *testing.T) {
	r, store, _ := newRouter(t)

	w := send(r, http.MethodPost, "/products", `{
		"name":" Mouse Gamer ","price":"199.90","sale_price":0,"stock":5,
		"images":"/a.png, /b.png","specifications":"{\"dpi\":16000,\"rgb\":true}"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	p, err := store.GetProduct(context.Background(), out.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mouse Gamer", p.Name)
	assert.Nil(t, p.SalePrice, "zero sale price means no sale")
	assert.Equal(t, []string{"/a.png", "/b.png"}, p.Images)
	assert.Equal(t, models.Specifications{"dpi": "16000", "rgb": "true"}, p.Specifications)
	assert.True(t, p.IsActive)

	var list []models.Product
	require.NoError(t, json.Unmarshal(send(r, http.MethodGet, "/products", "").Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestProductValidationAndMissing(t *testing.T) {
	r, _, _ := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/products", `{"name":"","price":"10"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/products", `{"name":"X","price":"-1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/products", `{"name":"X","price":`).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPut, "/products/ghost", `{"name":"X","price":"10"}`).Code)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	r, store, _ := newRouter(t)
	require.NoError(t, store.SaveProduct(context.Background(), &models.Product{ID: "p1", Name: "Old", Price: decimal.NewFromInt(10), IsActive: true}))

	w := send(r, http.MethodPut, "/products/p1", `{"name":"New","price":"12.50","sale_price":"9.99","is_active":false,"specifications":{"cor":"preto"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p, err := store.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "New", p.Name)
	assert.False(t, p.IsActive)
	require.NotNil(t, p.SalePrice)
	assert.True(t, p.SalePrice.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, "preto", p.Specifications["cor"])

	require.Equal(t, http.StatusOK, send(r, http.MethodDelete, "/products/p1", "").Code)
	_, err = store.GetProduct(context.Background(), "p1")
	assert.Error(t, err)
}

func TestCategoryAndBannerSave(t *testing.T) {
	r, _, _ := newRouter(t)

	w := send(r, http.MethodPost, "/categories", `{"name":"Áudio","is_active":true,"sort_order":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var cat models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	require.NotEmpty(t, cat.ID)

	w = send(r, http.MethodPut, "/categories/"+cat.ID, `{"name":"Áudio e Som","is_active":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var cats []models.Category
	require.NoError(t, json.Unmarshal(send(r, http.MethodGet, "/categories", "").Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "Áudio e Som", cats[0].Name)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/categories", `{"name":" "}`).Code)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/banners", `{"title":"Promo"}`).Code)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/banners", `{"title":"Promo","image_url":"/b.png"}`).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPut, "/banners/ghost", `{"title":"Promo","image_url":"/b.png"}`).Code)
}

func TestOrderAdministration(t *testing.T) {
	r, store, _ := newRouter(t)
	ctx := context.Background()
	done := models.Order{OrderNumber: "PED1", Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalAmount: decimal.NewFromInt(50)}
	require.NoError(t, store.CreateOrder(ctx, &done))
	require.NoError(t, store.CreateOrderItems(ctx, done.ID, []models.OrderItem{{ProductName: "Mouse", Quantity: 1}}))
	require.NoError(t, store.MarkItemsConfirmed(ctx, done.ID))
	orphan := models.Order{OrderNumber: "PED2", Status: models.OrderPending}
	require.NoError(t, store.CreateOrder(ctx, &orphan))

	w := send(r, http.MethodGet, "/orders/incomplete", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PED2")
	assert.NotContains(t, w.Body.String(), "PED1")

	w = send(r, http.MethodGet, "/orders/"+done.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"order_items"`)

	require.Equal(t, http.StatusOK, send(r, http.MethodPut, "/orders/"+done.ID+"/status", `{"status":"shipped"}`).Code)
	require.Equal(t, http.StatusOK, send(r, http.MethodPut, "/orders/"+done.ID+"/payment", `{"payment_status":"paid"}`).Code)
	require.Equal(t, http.StatusOK, send(r, http.MethodPut, "/orders/"+done.ID+"/tracking", `{"tracking_code":" BR123 "}`).Code)

	got, err := store.GetOrder(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "BR123", got.TrackingCode)

	var shipped []models.Order
	require.NoError(t, json.Unmarshal(send(r, http.MethodGet, "/orders?status=shipped", "").Body.Bytes(), &shipped))
	require.Len(t, shipped, 1)
	assert.Equal(t, "PED1", shipped[0].OrderNumber)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/orders?status=lost", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/orders/"+done.ID+"/status", `{"status":"lost"}`).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPut, "/orders/ghost/status", `{"status":"shipped"}`).Code)
}

func TestReviewModeration(t *testing.T) {
	r, store, _ := newRouter(t)
	require.NoError(t, store.SaveReview(context.Background(), &models.Review{ID: "r1", ProductID: "p1", Rating: 5}))

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/reviews/r1/approval", `{}`).Code)

	w := send(r, http.MethodPut, "/reviews/r1/approval", `{"is_approved":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Avaliação aprovada!")

	rv, err := store.GetReview(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, rv.IsApproved)

	require.Equal(t, http.StatusOK, send(r, http.MethodDelete, "/reviews/r1", "").Code)
	assert.Equal(t, "[]", send(r, http.MethodGet, "/reviews", "").Body.String())
}

func TestSettingsAndStats(t *testing.T) {
	r, _, _ := newRouter(t)

	w := send(r, http.MethodPut, "/settings", `{"site_name":"Loja X","primary_color":"#000000"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var s models.SiteSettings
	require.NoError(t, json.Unmarshal(send(r, http.MethodGet, "/settings", "").Body.Bytes(), &s))
	assert.Equal(t, "Loja X", s.SiteName)
	assert.NotEmpty(t, s.ID)

	w = send(r, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalOrders":0`)
}

func multipartFile(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="banner.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(r *gin.Engine, folder string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/uploads/"+folder, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadImage(t *testing.T) {
	r, _, uploads := newRouter(t)

	body, ct := multipartFile(t, "image/png", []byte("\x89PNG"))
	w := upload(r, "banners", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "/banners/x.png")
	assert.Equal(t, "banners", uploads.folder)
	assert.Equal(t, "image/png", uploads.ctype)
	assert.Equal(t, []byte("\x89PNG"), uploads.body)

	uploads.err = services.ErrUnsupportedImage
	body, ct = multipartFile(t, "text/plain", []byte("hi"))
	assert.Equal(t, http.StatusBadRequest, upload(r, "banners", body, ct).Code)

	uploads.err = services.ErrStorageDisabled
	body, ct = multipartFile(t, "image/png", []byte("x"))
	assert.Equal(t, http.StatusServiceUnavailable, upload(r, "banners", body, ct).Code)

	w = send(r, http.MethodPost, "/uploads/banners", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
