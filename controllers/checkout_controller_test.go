package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/services"
	"github.com/stretchr/testify/assert"
)

// fakeGateway is a scripted PaymentGateway for handler tests. Each call pops
// the next scripted result.
type fakeGateway struct {
	results  []fakeGatewayResult
	receipts []string
	amounts  []int64
}

type fakeGatewayResult struct {
	order *services.GatewayOrder
	err   error
}

func (f *fakeGateway) CreateOrder(amount int64, currency, receipt string) (*services.GatewayOrder, error) {
	f.receipts = append(f.receipts, receipt)
	f.amounts = append(f.amounts, amount)
	if len(f.results) == 0 {
		return &services.GatewayOrder{ID: "order_default", Currency: currency, Amount: amount}, nil
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next.order, next.err
}

func (f *fakeGateway) KeyID() string {
	return "rzp_test_key"
}

func TestCreateOrder(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	owner := createTestUser(t, db, "owner@example.com", "Str0ng!Pass", false)
	stranger := createTestUser(t, db, "stranger@example.com", "Str0ng!Pass", false)

	t.Run("Successfully create order", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, func(a *models.Appointment) {
			a.TotalPrice = 1550.50
		})

		gateway := &fakeGateway{results: []fakeGatewayResult{
			{order: &services.GatewayOrder{ID: "order_ABC", Currency: "INR", Amount: 155050}},
		}}
		services.SetPaymentGateway(gateway)

		router := setupTestRouter()
		router.POST("/checkout/create-order", mockAuthMiddleware(owner.ID), CreateOrder)

		body, _ := json.Marshal(map[string]interface{}{
			"amount":        1550.50,
			"appointmentId": appointment.ID,
		})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/create-order", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "order_ABC", data["id"])
		assert.Equal(t, "INR", data["currency"])
		assert.Equal(t, float64(155050), data["amount"])
		assert.Equal(t, "rzp_test_key", data["key"])

		// Charge derived from the stored total, in paise
		assert.Equal(t, []int64{155050}, gateway.amounts)
		assert.Equal(t, "rcpt_"+fmt.Sprint(appointment.ID), gateway.receipts[0])

		var fresh models.Appointment
		db.First(&fresh, appointment.ID)
		assert.Equal(t, "order_ABC", fresh.OrderID)
	})

	t.Run("Retries once on receipt rejection", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, nil)

		gateway := &fakeGateway{results: []fakeGatewayResult{
			{err: &services.GatewayError{StatusCode: http.StatusBadRequest, Description: "receipt: the length must be no more than 40"}},
			{order: &services.GatewayOrder{ID: "order_RETRY", Currency: "INR", Amount: 30000}},
		}}
		services.SetPaymentGateway(gateway)

		router := setupTestRouter()
		router.POST("/checkout/create-order", mockAuthMiddleware(owner.ID), CreateOrder)

		body, _ := json.Marshal(map[string]interface{}{
			"amount":        300,
			"appointmentId": appointment.ID,
		})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/create-order", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, gateway.receipts, 2)
		assert.LessOrEqual(t, len(gateway.receipts[1]), services.MaxReceiptLength)

		var fresh models.Appointment
		db.First(&fresh, appointment.ID)
		assert.Equal(t, "order_RETRY", fresh.OrderID)
	})

	t.Run("Gateway auth failure is surfaced distinctly", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, nil)

		gateway := &fakeGateway{results: []fakeGatewayResult{
			{err: fmt.Errorf("wrapped: %w", services.ErrGatewayAuth)},
		}}
		services.SetPaymentGateway(gateway)

		router := setupTestRouter()
		router.POST("/checkout/create-order", mockAuthMiddleware(owner.ID), CreateOrder)

		body, _ := json.Marshal(map[string]interface{}{
			"amount":        300,
			"appointmentId": appointment.ID,
		})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/create-order", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "GATEWAY_AUTH_FAILED", errorData["code"])

		// Order id must not be persisted on failure
		var fresh models.Appointment
		db.First(&fresh, appointment.ID)
		assert.Empty(t, fresh.OrderID)
	})

	t.Run("Other gateway errors map to GATEWAY_ERROR", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, nil)

		gateway := &fakeGateway{results: []fakeGatewayResult{
			{err: &services.GatewayError{StatusCode: http.StatusInternalServerError, Description: "server error"}},
		}}
		services.SetPaymentGateway(gateway)

		router := setupTestRouter()
		router.POST("/checkout/create-order", mockAuthMiddleware(owner.ID), CreateOrder)

		body, _ := json.Marshal(map[string]interface{}{
			"amount":        300,
			"appointmentId": appointment.ID,
		})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/create-order", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "GATEWAY_ERROR", errorData["code"])
	})

	t.Run("Fail as non-owner", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, nil)
		services.SetPaymentGateway(&fakeGateway{})

		router := setupTestRouter()
		router.POST("/checkout/create-order", mockAuthMiddleware(stranger.ID), CreateOrder)

		body, _ := json.Marshal(map[string]interface{}{
			"amount":        300,
			"appointmentId": appointment.ID,
		})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/create-order", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Fail with unknown appointment", func(t *testing.T) {
		services.SetPaymentGateway(&fakeGateway{})

		router := setupTestRouter()
		router.POST("/checkout/create-order", mockAuthMiddleware(owner.ID), CreateOrder)

		body, _ := json.Marshal(map[string]interface{}{
			"amount":        300,
			"appointmentId": 9999,
		})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/create-order", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReportClientPayment(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setupTestConfig()

	owner := createTestUser(t, db, "owner@example.com", "Str0ng!Pass", false)
	appointment := createTestAppointment(t, db, owner.ID, func(a *models.Appointment) {
		a.OrderID = "order_CLIENT"
	})

	t.Run("Records payment by order id", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/checkout/verification/user", ReportClientPayment)

		body, _ := json.Marshal(map[string]interface{}{
			"oid":           "order_CLIENT",
			"transactionId": "pay_CLIENT1",
		})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/verification/user", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var fresh models.Appointment
		db.First(&fresh, appointment.ID)
		assert.True(t, fresh.IsPaymentDone)
		assert.Equal(t, "pay_CLIENT1", fresh.TransactionID)
	})

	t.Run("Unknown order id still answers ok", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/checkout/verification/user", ReportClientPayment)

		body, _ := json.Marshal(map[string]interface{}{"oid": "order_UNKNOWN"})
		req, _ := http.NewRequest(http.MethodPost, "/checkout/verification/user", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// signWebhook computes the hex HMAC-SHA256 the gateway would send
func signWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBody(status, orderID, paymentID string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"event": "payment.captured",
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"status":   status,
					"order_id": orderID,
				},
			},
		},
	})
	return body
}

func TestPaymentWebhook(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	cfg := setupTestConfig()
	cfg.RazorpayWebhookSecret = "whsec_test"

	owner := createTestUser(t, db, "owner@example.com", "Str0ng!Pass", false)

	t.Run("Captured payment marks appointment paid", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, func(a *models.Appointment) {
			a.OrderID = "order_HOOK1"
		})

		router := setupTestRouter()
		router.POST("/checkout/verification", PaymentWebhook)

		body := webhookBody("captured", "order_HOOK1", "pay_HOOK1")
		req, _ := http.NewRequest(http.MethodPost, "/checkout/verification", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Razorpay-Signature", signWebhook(body, "whsec_test"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

		var fresh models.Appointment
		db.First(&fresh, appointment.ID)
		assert.True(t, fresh.IsPaymentDone)
		assert.Equal(t, "pay_HOOK1", fresh.TransactionID)
	})

	t.Run("Bad signature is ignored but acknowledged", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, func(a *models.Appointment) {
			a.OrderID = "order_HOOK2"
		})

		router := setupTestRouter()
		router.POST("/checkout/verification", PaymentWebhook)

		body := webhookBody("captured", "order_HOOK2", "pay_HOOK2")
		req, _ := http.NewRequest(http.MethodPost, "/checkout/verification", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Razorpay-Signature", "not-a-real-signature")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var fresh models.Appointment
		db.First(&fresh, appointment.ID)
		assert.False(t, fresh.IsPaymentDone)
	})

	t.Run("Non-captured status is acknowledged without changes", func(t *testing.T) {
		appointment := createTestAppointment(t, db, owner.ID, func(a *models.Appointment) {
			a.OrderID = "order_HOOK3"
		})

		router := setupTestRouter()
		router.POST("/checkout/verification", PaymentWebhook)

		body := webhookBody("failed", "order_HOOK3", "pay_HOOK3")
		req, _ := http.NewRequest(http.MethodPost, "/checkout/verification", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Razorpay-Signature", signWebhook(body, "whsec_test"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var fresh models.Appointment
		db.First(&fresh, appointment.ID)
		assert.False(t, fresh.IsPaymentDone)
	})

	t.Run("Unknown order id is acknowledged", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/checkout/verification", PaymentWebhook)

		body := webhookBody("captured", "order_NOBODY", "pay_NOBODY")
		req, _ := http.NewRequest(http.MethodPost, "/checkout/verification", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Razorpay-Signature", signWebhook(body, "whsec_test"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
