package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/middleware"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/services"
)

// CreateOrderRequest represents the request body for creating a gateway
// order. The amount field is a display hint; the charge is derived from the
// appointment's stored total.
type CreateOrderRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	AppointmentID uint    `json:"appointmentId" binding:"required"`
}

// ClientPaymentRequest represents the client-reported payment confirmation.
// It is a UX hint only; the webhook remains the source of truth.
type ClientPaymentRequest struct {
	OrderID       string `json:"oid" binding:"required"`
	TransactionID string `json:"transactionId"`
}

// webhookEvent is the subset of the gateway's webhook payload we act on
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				Status  string `json:"status"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// CreateOrder handles POST /api/checkout/create-order - creates a payment
// gateway order for the caller's appointment. The order id is persisted on
// the appointment only after the gateway accepts the order.
func CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var appointment models.Appointment
	if err := db.First(&appointment, req.AppointmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPOINTMENT_NOT_FOUND",
				"message": "Appointment not found",
			},
		})
		return
	}

	if appointment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not own this appointment",
			},
		})
		return
	}

	// Amount in paise
	amount := int64(math.Round(appointment.TotalPrice * 100))
	gateway := services.GetPaymentGateway()

	receipt := services.SafeReceipt(fmt.Sprint(appointment.ID))
	order, err := gateway.CreateOrder(amount, "INR", receipt)
	if services.IsReceiptError(err) {
		// Retry once with a guaranteed-short receipt
		order, err = gateway.CreateOrder(amount, "INR", services.FallbackReceipt())
	}
	if err != nil {
		if errors.Is(err, services.ErrGatewayAuth) {
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GATEWAY_AUTH_FAILED",
					"message": "Payment gateway rejected our credentials",
				},
			})
			return
		}
		log.Printf("Gateway order creation failed for appointment %d: %v", appointment.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GATEWAY_ERROR",
				"message": "Failed to create payment order",
			},
		})
		return
	}

	if err := db.Model(&appointment).Update("order_id", order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record order id",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":       order.ID,
			"currency": order.Currency,
			"amount":   order.Amount,
			"key":      gateway.KeyID(),
		},
	})
}

// ReportClientPayment handles POST /api/checkout/verification/user - records the
// client-side payment confirmation against the appointment holding the order
// id. A missing match is logged, never surfaced, so a redirect race with the
// webhook cannot break the client flow.
func ReportClientPayment(c *gin.Context) {
	var req ClientPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var appointment models.Appointment
	if err := db.Where("order_id = ?", req.OrderID).First(&appointment).Error; err != nil {
		log.Printf("Client-reported payment for unknown order %q", req.OrderID)
	} else {
		updates := map[string]interface{}{"is_payment_done": true}
		if req.TransactionID != "" {
			updates["transaction_id"] = req.TransactionID
		}
		if err := db.Model(&appointment).Updates(updates).Error; err != nil {
			log.Printf("Failed to record client-reported payment for order %q: %v", req.OrderID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment recorded",
	})
}

// PaymentWebhook handles POST /api/checkout/verification - the gateway's
// server-to-server notification and the source of truth for payment state.
// The signature is checked over the raw body; the endpoint acknowledges with
// 200 regardless of outcome so the gateway does not retry storms against us.
func PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Failed to read webhook body: %v", err)
		webhookOK(c)
		return
	}

	cfg := config.GetConfig()
	if !validWebhookSignature(body, c.GetHeader("X-Razorpay-Signature"), cfg.RazorpayWebhookSecret) {
		log.Printf("Webhook signature mismatch, ignoring event")
		webhookOK(c)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Failed to decode webhook payload: %v", err)
		webhookOK(c)
		return
	}

	entity := event.Payload.Payment.Entity
	if entity.Status != "captured" {
		webhookOK(c)
		return
	}

	db := config.GetDB()
	var appointment models.Appointment
	if err := db.Where("order_id = ?", entity.OrderID).First(&appointment).Error; err != nil {
		log.Printf("Webhook captured payment for unknown order %q", entity.OrderID)
		webhookOK(c)
		return
	}

	updates := map[string]interface{}{"is_payment_done": true}
	if entity.ID != "" {
		updates["transaction_id"] = entity.ID
	}
	if err := db.Model(&appointment).Updates(updates).Error; err != nil {
		log.Printf("Failed to record webhook payment for order %q: %v", entity.OrderID, err)
	}

	webhookOK(c)
}

// validWebhookSignature checks the hex HMAC-SHA256 of the raw body against
// the gateway-supplied signature header in constant time
func validWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func webhookOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
