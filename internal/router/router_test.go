package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/evcharge/config"
	"github.com/oksasatya/evcharge/internal/application"
	"github.com/oksasatya/evcharge/internal/container"
	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

const testSecret = "rzp_secret"

type testServer struct {
	engine *gin.Engine
	mailer *captureMailer
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppName:             "evcharge",
		Env:                 "test",
		FrontendURL:         "http://front.test",
		ResetTokenTTL:       time.Hour,
		RazorpayKeySecret:   testSecret,
		PaymentCurrency:     "INR",
		DebugMetricsEnabled: true,
	}
	if mutate != nil {
		mutate(cfg)
	}
	mailer := &captureMailer{}
	c := &container.Container{
		Config:  cfg,
		Logger:  helpers.NewNopLogger(),
		JWT:     helpers.NewJWTManager("jwt-test", time.Hour),
		Users:   &memUsers{byID: map[string]*entity.User{}},
		Records: &memRecords{byID: map[string]*entity.ChargingRecord{}},
		Mailer:  mailer,
		Gateway: stubGateway{},
	}
	return &testServer{engine: NewEngine(c), mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func creds(email, pw string) gin.H { return gin.H{"email": email, "password": pw} }

func TestRegisterLoginProtected(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := s.do(t, http.MethodPost, "/api/register", creds("ann@ev.io", "s3cret"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, body = s.do(t, http.MethodPost, "/api/register", creds("ann@ev.io", "other"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"error": "User already exists"}, body)

	w, body = s.do(t, http.MethodPost, "/api/register", gin.H{"email": "x@ev.io"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email and password are required", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/login", creds("ann@ev.io", "wrong"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/login", creds("nobody@ev.io", "s3cret"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/login", creds("ann@ev.io", "s3cret"))
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	for _, h := range []string{"Bearer " + token, token} {
		w, body = s.do(t, http.MethodGet, "/api/protected", nil, "Authorization", h)
		require.Equal(t, http.StatusOK, w.Code)
		user := body["user"].(map[string]any)
		assert.Equal(t, "ann@ev.io", user["email"])
		assert.NotContains(t, user, "password")
	}

	w, _ = s.do(t, http.MethodGet, "/api/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, body = s.do(t, http.MethodGet, "/api/protected", nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, body, "error")
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/register", creds("bo@ev.io", "old-pass"))

	w, body := s.do(t, http.MethodPost, "/api/forgot-password", gin.H{"email": "ghost@ev.io"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User not found", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/forgot-password", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body, "error")

	w, body = s.do(t, http.MethodPost, "/api/forgot-password", gin.H{"email": "bo@ev.io"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password reset link sent to email!", body["message"])

	link := s.mailer.last()
	require.True(t, strings.HasPrefix(link, "http://front.test/reset-password/"), link)
	raw := strings.TrimPrefix(link, "http://front.test/reset-password/")
	assert.Len(t, raw, 64)

	w, body = s.do(t, http.MethodPost, "/api/reset-password/"+raw, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body, "error")

	w, body = s.do(t, http.MethodPost, "/api/reset-password/"+raw, gin.H{"password": "new-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password reset successful", body["message"])

	w, body = s.do(t, http.MethodPost, "/api/reset-password/"+raw, gin.H{"password": "again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired token", body["error"])

	w, _ = s.do(t, http.MethodPost, "/api/login", creds("bo@ev.io", "old-pass"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/login", creds("bo@ev.io", "new-pass"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConcealUnknownEmail(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.ResetConcealUnknownEmail = true })

	w, _ := s.do(t, http.MethodPost, "/api/forgot-password", gin.H{"email": "ghost@ev.io"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.mailer.last())
}

func listRecords(t *testing.T, s *testServer, path string) []map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChargingRecords(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Empty(t, listRecords(t, s, "/api/charging-records"))

	w, body := s.do(t, http.MethodPost, "/api/charging", gin.H{
		"vehicleId":     "EV-7",
		"startTime":     "2026-03-01T08:00",
		"endTime":       "2026-03-01T09:15",
		"energyUsed":    "22.4",
		"amountCharged": 310,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Charging record saved!", body["message"])
	rec := body["record"].(map[string]any)
	id := rec["_id"].(string)
	assert.Equal(t, 22.4, rec["energyUsed"])
	assert.Equal(t, false, rec["isPaid"])

	w, body = s.do(t, http.MethodPost, "/api/charging", gin.H{"vehicleId": "EV-7"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "All fields are required", body["error"])

	w, _ = s.do(t, http.MethodPost, "/api/charging", gin.H{
		"vehicleId": "EV-7", "startTime": "2026-03-01T08:00", "endTime": "2026-03-01T09:15",
		"energyUsed": "abc", "amountCharged": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, path := range []string{"/api/charging-records", "/api/charging"} {
		recs := listRecords(t, s, path)
		require.Len(t, recs, 1)
		assert.Equal(t, id, recs[0]["_id"])
	}

	w, body = s.do(t, http.MethodPut, "/api/charging/"+id+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Payment status updated", body["message"])
	assert.Equal(t, true, body["record"].(map[string]any)["isPaid"])

	w, body = s.do(t, http.MethodPut, "/api/charging/missing/pay", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Charging record not found", body["error"])

	assert.Empty(t, listRecords(t, s, "/api/charging-records/search?vehicleId=EV-7"))
	w, _ = s.do(t, http.MethodGet, "/api/charging-records/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkPaidRequiresAuthWhenConfigured(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.ChargingPayRequiresAuth = true })
	_, body := s.do(t, http.MethodPost, "/api/charging", gin.H{
		"vehicleId": "EV-1", "startTime": "2026-03-01T08:00", "endTime": "2026-03-01T09:00",
		"energyUsed": 1, "amountCharged": 1,
	})
	id := body["record"].(map[string]any)["_id"].(string)

	w, _ := s.do(t, http.MethodPut, "/api/charging/"+id+"/pay", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.do(t, http.MethodPost, "/api/register", creds("op@ev.io", "pw"))
	_, body = s.do(t, http.MethodPost, "/api/login", creds("op@ev.io", "pw"))
	w, _ = s.do(t, http.MethodPut, "/api/charging/"+id+"/pay", nil, "Authorization", "Bearer "+body["token"].(string))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentFlow(t *testing.T) {
	s := newTestServer(t, nil)
	_, body := s.do(t, http.MethodPost, "/api/charging", gin.H{
		"vehicleId": "EV-2", "startTime": "2026-03-01T08:00", "endTime": "2026-03-01T09:00",
		"energyUsed": 10, "amountCharged": 100,
	})
	id := body["record"].(map[string]any)["_id"].(string)

	w, body := s.do(t, http.MethodPost, "/api/create-order", gin.H{"amount": 0, "chargingRecordId": id})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Amount must be a positive number", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/create-order", gin.H{"amount": 10000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "chargingRecordId is required to link payment", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/create-order", gin.H{"amount": 10000, "chargingRecordId": id})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	order := body["order"].(map[string]any)
	assert.Equal(t, "order_T1", order["id"])
	assert.EqualValues(t, 10000, order["amount"])

	w, body = s.do(t, http.MethodPost, "/api/verify-payment", gin.H{
		"razorpay_order_id":   "order_T1",
		"razorpay_payment_id": "pay_9",
		"razorpay_signature":  "deadbeef",
		"chargingRecordId":    id,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid payment signature", body["error"])
	assert.Equal(t, false, listRecords(t, s, "/api/charging-records")[0]["isPaid"])

	w, body = s.do(t, http.MethodPost, "/api/verify-payment", gin.H{"orderId": "order_T1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required payment verification data", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/verify-payment", gin.H{
		"razorpay_order_id":   "order_T1",
		"razorpay_payment_id": "pay_9",
		"razorpay_signature":  application.Signature([]byte(testSecret), "order_T1", "pay_9"),
		"chargingRecordId":    id,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["record"].(map[string]any)["isPaid"])
	assert.Equal(t, true, listRecords(t, s, "/api/charging-records")[0]["isPaid"])

	w, body = s.do(t, http.MethodPost, "/api/verify-payment", gin.H{
		"orderId":          "order_T1",
		"paymentId":        "pay_9",
		"signature":        application.Signature([]byte(testSecret), "order_T1", "pay_9"),
		"chargingRecordId": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Charging record not found", body["error"])
}

func TestMalformedJSONAndDebugVars(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	w, body := s.do(t, http.MethodGet, "/api/debug/vars", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "memstats")
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := s.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", body["error"])
}

func TestRegistryReturnsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Use(func(c *gin.Context) { c.Header("X-Api", "1") })
	reg.Add(moduleFunc(func(api *gin.RouterGroup) {
		api.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}))

	routes := reg.RegisterAll()
	require.Len(t, routes, 1)
	assert.Equal(t, "/api/ping", routes[0].Path)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Api"))
}

type moduleFunc func(api *gin.RouterGroup)

func (f moduleFunc) Register(api *gin.RouterGroup) { f(api) }

func TestVerifyPaymentRefusedWithoutSecret(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.RazorpayKeySecret = "" })
	_, body := s.do(t, http.MethodPost, "/api/charging", gin.H{
		"vehicleId": "EV-3", "startTime": "2026-03-01T08:00", "endTime": "2026-03-01T09:00",
		"energyUsed": 4, "amountCharged": 40,
	})
	id := body["record"].(map[string]any)["_id"].(string)

	w, body := s.do(t, http.MethodPost, "/api/verify-payment", gin.H{
		"orderId":          "order_x",
		"paymentId":        "pay_x",
		"signature":        application.Signature([]byte(""), "order_x", "pay_x"),
		"chargingRecordId": id,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Payment verification failed", body["error"])
	assert.Equal(t, false, listRecords(t, s, "/api/charging-records")[0]["isPaid"])
}
