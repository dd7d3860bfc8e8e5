package http

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duality-2/SilkRoad/configs"
	"github.com/duality-2/SilkRoad/internal/adapter/cache"
	"github.com/duality-2/SilkRoad/internal/adapter/http/middleware"
	"github.com/duality-2/SilkRoad/internal/adapter/observ"
	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func testConfig() configs.Config {
	var cfg configs.Config
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "silkroad-api"
	cfg.Security.Audience = "silkroad-web"
	return cfg
}

type testServer struct {
	engine *gin.Engine
	store  *cache.MemorySnapshotStore
}

func newTestServer(t *testing.T, declineRate float64) *testServer {
	t.Helper()
	return newMeteredTestServer(t, declineRate, nil)
}

func newMeteredTestServer(t *testing.T, declineRate float64, metrics usecase.Metrics) *testServer {
	t.Helper()
	store := cache.NewMemorySnapshotStore()
	reg := usecase.NewRegistry(usecase.SessionDeps{Store: store, Metrics: metrics})
	payments := usecase.NewPaymentSimulator(cache.NewMemoryPaymentLock(), reg, nil, usecase.PaymentOptions{
		DeclineRate: declineRate,
		Rand:        rand.New(rand.NewSource(1)),
	})
	tracking := usecase.NewTrackingService(nil, usecase.TrackingOptions{Rand: rand.New(rand.NewSource(1))})
	auth := middleware.NewSessionAuth(testConfig())

	r := NewRouter(Handlers{
		Sessions: NewSessionHandler(reg, auth, 0),
		Cart:     NewCartHandler(reg, 0),
		Checkout: NewCheckoutHandler(reg, 0),
		Payments: NewPaymentHandler(payments, defaultTimeout),
		Tracking: NewTrackingHandler(tracking, defaultTimeout),
		Contact:  NewContactHandler(usecase.NewContactService(usecase.ContactOptions{}), defaultTimeout),
	}, auth, nil)
	return &testServer{engine: r, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) startSession(t *testing.T) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/v1/sessions", "", "")
	require.Equal(t, http.StatusCreated, code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func viewOf(body map[string]any) map[string]any {
	v, _ := body["view"].(map[string]any)
	return v
}

func noticeOf(body map[string]any) map[string]any {
	n, _ := body["notice"].(map[string]any)
	return n
}

const turmeric = `{"name":"Turmeric","displayPrice":"₹120/kg"}`

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 0)
	code, body := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
}

func TestRequiresSessionToken(t *testing.T) {
	s := newTestServer(t, 0)

	code, body := s.do(t, http.MethodGet, "/v1/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_request", body["error"])

	code, _ = s.do(t, http.MethodGet, "/v1/cart", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCart_AddAndMerge(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)

	code, body := s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Turmeric added to cart!", noticeOf(body)["message"])
	assert.Equal(t, "success", noticeOf(body)["level"])

	_, body = s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)
	v := viewOf(body)
	items := v["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, 2.0, items[0].(map[string]any)["quantity"])
	assert.Equal(t, 240.0, v["total"])
	assert.Equal(t, 2.0, v["itemCount"])
}

func TestCart_QuantityAndRemove(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)

	code, body := s.do(t, http.MethodPut, "/v1/cart/items/0", tok, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 600.0, viewOf(body)["total"])

	_, body = s.do(t, http.MethodPatch, "/v1/cart/items/0", tok, `{"delta":-2}`)
	assert.Equal(t, 360.0, viewOf(body)["total"])

	code, body = s.do(t, http.MethodDelete, "/v1/cart/items/0", tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Turmeric removed from cart", noticeOf(body)["message"])
	assert.Empty(t, viewOf(body)["items"])
}

func TestCart_BadRequests(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)

	code, body := s.do(t, http.MethodPut, "/v1/cart/items/7", tok, `{"quantity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "index_out_of_range", body["error"])
	assert.Equal(t, "error", noticeOf(body)["level"])

	code, _ = s.do(t, http.MethodDelete, "/v1/cart/items/abc", tok, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/v1/cart/items", tok, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, "/v1/cart/items/0", tok, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	// nothing above changed the cart
	_, body = s.do(t, http.MethodGet, "/v1/cart", tok, "")
	assert.Equal(t, 120.0, viewOf(body)["total"])
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t, 0)
	a, b := s.startSession(t), s.startSession(t)

	s.do(t, http.MethodPost, "/v1/cart/items", a, turmeric)

	_, body := s.do(t, http.MethodGet, "/v1/cart", b, "")
	assert.Empty(t, viewOf(body)["items"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)

	code, body := s.do(t, http.MethodPost, "/v1/checkout/begin", tok, "")

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "cart_empty", body["error"])
	assert.Equal(t, "warning", noticeOf(body)["level"])
	assert.Equal(t, "Your cart is empty", noticeOf(body)["message"])
}

func TestCheckout_FullFlow(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)

	code, body := s.do(t, http.MethodPost, "/v1/checkout/confirm", tok, `{"method":"cash"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "illegal_transition", body["error"])

	_, body = s.do(t, http.MethodPost, "/v1/checkout/begin", tok, "")
	assert.Equal(t, "details", viewOf(body)["stage"])

	code, body = s.do(t, http.MethodPost, "/v1/checkout/details", tok, `{"name":"Asha","phone":"1","email":"a@b.c"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "validation_failed", body["error"])
	assert.Equal(t, "Please fill all details", noticeOf(body)["message"])

	_, body = s.do(t, http.MethodPost, "/v1/checkout/details", tok,
		`{"name":"Asha","phone":"1","email":"a@b.c","address":"Kochi"}`)
	assert.Equal(t, "payment_choice", viewOf(body)["stage"])

	code, body = s.do(t, http.MethodPost, "/v1/checkout/confirm", tok, `{"method":"upi"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Enter a valid UPI ID", noticeOf(body)["message"])

	code, body = s.do(t, http.MethodPost, "/v1/checkout/confirm", tok, `{"method":"UPI","upiId":"asha@okbank"}`)
	require.Equal(t, http.StatusOK, code)
	v := viewOf(body)
	assert.Equal(t, "confirmed", v["stage"])
	assert.Empty(t, v["items"])
	assert.Contains(t, v["orderSummary"], "Turmeric x 2")
	assert.Contains(t, v["orderSummary"], "Payment: UPI.")
	assert.Equal(t, "Order confirmed!", noticeOf(body)["message"])

	_, body = s.do(t, http.MethodPost, "/v1/checkout/reset", tok, "")
	assert.Equal(t, "cart", viewOf(body)["stage"])
}

func TestCheckout_HugeQuantityIsClamped(t *testing.T) {
	s := newMeteredTestServer(t, 0, observ.NewPromMetrics(prometheus.NewRegistry()))
	tok := s.startSession(t)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)

	code, body := s.do(t, http.MethodPut, "/v1/cart/items/0", tok, `{"quantity":92233720368547758}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(120*domain.MaxQuantity), viewOf(body)["total"])

	_, body = s.do(t, http.MethodPatch, "/v1/cart/items/0", tok, `{"delta":9223372036854775807}`)
	item := viewOf(body)["items"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(domain.MaxQuantity), item["quantity"])

	s.do(t, http.MethodPost, "/v1/checkout/begin", tok, "")
	s.do(t, http.MethodPost, "/v1/checkout/details", tok, `{"name":"Asha","phone":"1","email":"a@b.c","address":"Kochi"}`)
	code, body = s.do(t, http.MethodPost, "/v1/checkout/confirm", tok, `{"method":"cash"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "confirmed", viewOf(body)["stage"])
}

func TestCheckout_Back(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)
	s.do(t, http.MethodPost, "/v1/checkout/begin", tok, "")

	code, body := s.do(t, http.MethodPost, "/v1/checkout/back", tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cart", viewOf(body)["stage"])

	code, _ = s.do(t, http.MethodPost, "/v1/checkout/back", tok, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestAuth_LoginLogout(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)

	code, body := s.do(t, http.MethodPost, "/v1/auth/login", tok, `{"email":"asha@example.com","password":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Please enter email and password", noticeOf(body)["message"])

	code, body = s.do(t, http.MethodPost, "/v1/auth/login", tok, `{"email":"asha@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code)
	user := viewOf(body)["user"].(map[string]any)
	assert.Equal(t, "asha", user["name"])

	_, body = s.do(t, http.MethodPost, "/v1/auth/logout", tok, "")
	assert.Nil(t, viewOf(body)["user"])
}

func TestAuth_Signup(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)

	code, _ := s.do(t, http.MethodPost, "/v1/auth/signup", tok,
		`{"name":"Asha","email":"a@b.c","password":"x","confirmPassword":"y"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body := s.do(t, http.MethodPost, "/v1/auth/signup", tok,
		`{"name":"Asha","email":"a@b.c","password":"x","confirmPassword":"x"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Account created and logged in", noticeOf(body)["message"])
}

func TestPayments(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)

	code, body := s.do(t, http.MethodPost, "/v1/payments", tok, `{"method":"card","amount":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Please enter a valid amount", noticeOf(body)["message"])

	code, body = s.do(t, http.MethodPost, "/v1/payments", tok, `{"method":"card","amount":120}`)
	require.Equal(t, http.StatusOK, code)
	rc := body["receipt"].(map[string]any)
	assert.Regexp(t, `^TXN[A-Z0-9]{9}$`, rc["transactionId"])
	assert.Equal(t, "Completed", rc["status"])

	_, body = s.do(t, http.MethodGet, "/v1/cart", tok, "")
	assert.Empty(t, viewOf(body)["items"])
}

func TestPayments_Declined(t *testing.T) {
	s := newTestServer(t, 1)
	tok := s.startSession(t)

	code, body := s.do(t, http.MethodPost, "/v1/payments", tok, `{"method":"cash","amount":50}`)

	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, "payment_declined", body["error"])
	assert.Equal(t, "Payment failed. Please try again.", noticeOf(body)["message"])
}

func TestTracking(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)

	code, body := s.do(t, http.MethodGet, "/v1/tracking/SR-42", tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SR-42", body["trackingId"])
	assert.Len(t, body["timeline"], 4)

	code, body = s.do(t, http.MethodGet, "/v1/tracking/%20", tok, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Please enter a tracking ID", noticeOf(body)["message"])
}

func TestCartSurvivesRestart(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.startSession(t)
	s.do(t, http.MethodPost, "/v1/cart/items", tok, turmeric)

	// a second server over the same store, as after a process restart
	reg := usecase.NewRegistry(usecase.SessionDeps{Store: s.store})
	auth := middleware.NewSessionAuth(testConfig())
	r := NewRouter(Handlers{
		Sessions: NewSessionHandler(reg, auth, 0),
		Cart:     NewCartHandler(reg, 0),
		Checkout: NewCheckoutHandler(reg, 0),
	}, auth, nil)
	restarted := &testServer{engine: r, store: s.store}

	_, body := restarted.do(t, http.MethodGet, "/v1/cart", tok, "")
	assert.Equal(t, 120.0, viewOf(body)["total"])
}

func TestContact(t *testing.T) {
	s := newTestServer(t, 0)

	code, body := s.do(t, http.MethodPost, "/v1/contact", "", `{"name":"Asha","email":"a@b.c"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Please fill all fields", noticeOf(body)["message"])

	code, body = s.do(t, http.MethodPost, "/v1/contact", "", `{"name":"Asha","email":"a@b.c","message":"Bulk cardamom?"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", noticeOf(body)["level"])
	assert.Equal(t, "Message sent successfully! We will contact you soon.", noticeOf(body)["message"])
}
