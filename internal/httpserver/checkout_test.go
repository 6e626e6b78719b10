package httpserver

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/printyshop/printy/internal/catalog"
	"github.com/printyshop/printy/internal/checkout"
	"github.com/printyshop/printy/internal/models"
	"github.com/printyshop/printy/internal/orders"
	"github.com/printyshop/printy/internal/payment"
	"github.com/printyshop/printy/internal/storage"
)

type memStore struct{}

func (memStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	return nil
}

func (memStore) PublicURL(path string) string {
	return "https://cdn.example.com/" + path
}

type stubGateway struct{}

func (stubGateway) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{
		Method:          payment.MethodRazorpay,
		ProviderOrderID: "order_test123",
		Amount:          req.Amount,
		Currency:        req.Currency,
		Prefill:         req.Customer,
	}, nil
}

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	DB      *gorm.DB
	H       *CheckoutHandler
	Orders  *orders.GormRepo
	Product *models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}))

	product := &models.Product{
		Name:        "Premium T-Shirt",
		Description: "100% cotton tee",
		Category:    string(catalog.CategoryApparel),
		BasePrice:   299,
		PrintPrice:  100,
		Sizes:       []string{"S", "M", "L"},
		Colors:      []string{"White", "Black"},
		IsActive:    true,
	}
	require.NoError(t, db.Create(product).Error)

	orderRepo := &orders.GormRepo{DB: db}
	razorpay := &payment.RazorpayProvider{KeyID: "key_test", KeySecret: "secret_test"}

	h := &CheckoutHandler{
		Registry: checkout.NewRegistry(),
		Orch: &checkout.Orchestrator{
			Orders: orderRepo,
			Providers: map[payment.Method]payment.Provider{
				payment.MethodRazorpay: stubGateway{},
				payment.MethodCOD:      &payment.CODProvider{},
			},
		},
		Products: &catalog.GormRepo{DB: db},
		Uploader: &storage.DesignUploader{Store: memStore{}},
		Razorpay: razorpay,
	}

	return &testEnv{T: t, E: echo.New(), DB: db, H: h, Orders: orderRepo, Product: product}
}

func (env *testEnv) doJSON(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) sessionCall(sessionID, path string, body interface{}, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	rec, c := env.doJSON(http.MethodPost, path, body)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	require.NoError(env.T, handler(c))
	return rec
}

func (env *testEnv) createSession() string {
	rec, c := env.doJSON(http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"product_id": env.Product.ID,
	})
	require.NoError(env.T, env.H.CreateSession(c))
	require.Equal(env.T, http.StatusCreated, rec.Code)

	var view struct {
		ID string `json:"id"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotEmpty(env.T, view.ID)
	return view.ID
}

func (env *testEnv) uploadDesign(sessionID string, size int) (*httptest.ResponseRecorder, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("design", "design.png")
	require.NoError(env.T, err)
	_, err = fw.Write(make([]byte, size))
	require.NoError(env.T, err)
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+sessionID+"/design", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	return rec, env.H.UploadDesign(c)
}

func customerBody() map[string]interface{} {
	return map[string]interface{}{
		"name":    "Asha Rao",
		"email":   "asha@example.com",
		"phone":   "+919876543210",
		"address": "12 MG Road",
		"city":    "Bengaluru",
		"pincode": "560001",
	}
}

func sessionState(t *testing.T, rec *httptest.ResponseRecorder) string {
	var view struct {
		State string `json:"state"`
		Session struct {
			State string `json:"state"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	if view.State != "" {
		return view.State
	}
	return view.Session.State
}

func TestUploadDesign_RejectsOversized(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession()

	_, err := env.uploadDesign(id, 6<<20)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, httpErr.Code)
}

func TestProceed_WithoutDesign(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession()

	_, c := env.doJSON(http.MethodPost, "/api/v1/checkout/"+id+"/proceed", nil)
	c.SetParamNames("id")
	c.SetParamValues(id)
	err := env.H.Proceed(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestCheckoutFlow_COD(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession()

	rec, err := env.uploadDesign(id, 1024)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	env.sessionCall(id, "/quantity", map[string]interface{}{"delta": 1}, env.H.AdjustQuantity)
	env.sessionCall(id, "/proceed", nil, env.H.Proceed)
	env.sessionCall(id, "/customer", customerBody(), env.H.SubmitCustomer)
	rec = env.sessionCall(id, "/pay", map[string]interface{}{"method": "cod"}, env.H.StartPayment)

	assert.Equal(t, string(checkout.StateFulfilled), sessionState(t, rec))

	total, persisted, err := env.Orders.ListOrders(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, models.PaymentStatusPending, persisted[0].PaymentStatus)
	assert.Equal(t, int64(798), persisted[0].TotalAmount)

	// The completed session has been discarded.
	_, c := env.doJSON(http.MethodGet, "/api/v1/checkout/"+id, nil)
	c.SetParamNames("id")
	c.SetParamValues(id)
	err = env.H.GetSession(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCheckoutFlow_GatewayCallback(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession()

	_, err := env.uploadDesign(id, 1024)
	require.NoError(t, err)

	env.sessionCall(id, "/proceed", nil, env.H.Proceed)
	env.sessionCall(id, "/customer", customerBody(), env.H.SubmitCustomer)
	env.sessionCall(id, "/pay", map[string]interface{}{"method": "razorpay"}, env.H.StartPayment)

	mac := hmac.New(sha256.New, []byte("secret_test"))
	fmt.Fprintf(mac, "%s|%s", "order_test123", "pay_abc123")
	sig := hex.EncodeToString(mac.Sum(nil))

	rec := env.sessionCall(id, "/payment/callback", map[string]interface{}{
		"status":              "success",
		"razorpay_payment_id": "pay_abc123",
		"razorpay_order_id":   "order_test123",
		"razorpay_signature":  sig,
	}, env.H.PaymentCallback)

	assert.Equal(t, string(checkout.StateFulfilled), sessionState(t, rec))

	_, persisted, err := env.Orders.ListOrders(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, models.PaymentStatusPaid, persisted[0].PaymentStatus)
	assert.Equal(t, "pay_abc123", persisted[0].PaymentID)
}

func TestCheckoutFlow_BadSignatureFails(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession()

	_, err := env.uploadDesign(id, 1024)
	require.NoError(t, err)

	env.sessionCall(id, "/proceed", nil, env.H.Proceed)
	env.sessionCall(id, "/customer", customerBody(), env.H.SubmitCustomer)
	env.sessionCall(id, "/pay", map[string]interface{}{"method": "razorpay"}, env.H.StartPayment)

	rec := env.sessionCall(id, "/payment/callback", map[string]interface{}{
		"status":              "success",
		"razorpay_payment_id": "pay_abc123",
		"razorpay_order_id":   "order_test123",
		"razorpay_signature":  "forged",
	}, env.H.PaymentCallback)

	assert.Equal(t, string(checkout.StatePaymentFailed), sessionState(t, rec))

	total, _, err := env.Orders.ListOrders(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
