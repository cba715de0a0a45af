package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathcare/pathlab-api/config"
)

// MaxReceiptLength is the gateway's documented limit on receipt strings
const MaxReceiptLength = 40

// ErrGatewayAuth indicates the gateway rejected our API credentials. It is
// surfaced distinctly so operators can tell configuration errors from
// transient order-creation failures.
var ErrGatewayAuth = errors.New("gateway authentication failed")

// GatewayOrder is the subset of the gateway's order response we use
type GatewayOrder struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// GatewayError represents a non-auth error response from the payment gateway
type GatewayError struct {
	StatusCode  int
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Description)
}

// PaymentGateway defines the interface for payment gateway operations
type PaymentGateway interface {
	// CreateOrder creates an order for the given amount in the currency's
	// smallest unit (paise) tagged with the receipt string
	CreateOrder(amount int64, currency, receipt string) (*GatewayOrder, error)
	// KeyID returns the public key id handed to browser clients
	KeyID() string
}

// RazorpayService is the HTTP client for the Razorpay orders API
type RazorpayService struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

var gatewayInstance PaymentGateway

// InitPaymentGateway initializes the payment gateway client from configuration
func InitPaymentGateway(cfg *config.Config) PaymentGateway {
	gatewayInstance = NewRazorpayService(cfg)
	return gatewayInstance
}

// GetPaymentGateway returns the initialized payment gateway instance
func GetPaymentGateway() PaymentGateway {
	return gatewayInstance
}

// SetPaymentGateway sets the payment gateway instance (primarily for testing)
func SetPaymentGateway(gw PaymentGateway) {
	gatewayInstance = gw
}

// NewRazorpayService creates a Razorpay client with the configured credentials
func NewRazorpayService(cfg *config.Config) *RazorpayService {
	return &RazorpayService{
		baseURL:   "https://api.razorpay.com",
		keyID:     cfg.RazorpayKeyID,
		keySecret: cfg.RazorpayKeySecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewRazorpayServiceWithBaseURL creates a client against a custom endpoint
// (primarily for testing against a mock server)
func NewRazorpayServiceWithBaseURL(cfg *config.Config, baseURL string) *RazorpayService {
	s := NewRazorpayService(cfg)
	s.baseURL = baseURL
	return s
}

// KeyID returns the public key id
func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// CreateOrder creates an order with the gateway. The secret key is only ever
// used for request authentication and never returned to callers.
func (s *RazorpayService) CreateOrder(amount int64, currency, receipt string) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call orders endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: check RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET", ErrGatewayAuth)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{
			StatusCode:  resp.StatusCode,
			Description: decodeErrorDescription(resp.Body),
		}
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return &order, nil
}

// decodeErrorDescription extracts the error description from a gateway error
// body of the form {"error": {"description": "..."}}
func decodeErrorDescription(r io.Reader) string {
	var body struct {
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Description == "" {
		return strings.TrimSpace(string(raw))
	}
	return body.Error.Description
}

// IsReceiptError reports whether the gateway rejected the order for a
// receipt-format reason, in which case a retry with a shorter receipt is
// worthwhile
func IsReceiptError(err error) bool {
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		return false
	}
	if gwErr.StatusCode != http.StatusBadRequest {
		return false
	}
	desc := strings.ToLower(gwErr.Description)
	return strings.Contains(desc, "receipt") || strings.Contains(desc, "length")
}

var receiptAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SafeReceipt builds a receipt string for the given appointment id that fits
// the gateway's length limit. The full id is kept when it fits; otherwise the
// last 12 characters are combined with a short random suffix for
// traceability, and as a last resort a fully random receipt is produced.
func SafeReceipt(appointmentID string) string {
	const prefix = "rcpt_"

	candidate := prefix + appointmentID
	if len(candidate) <= MaxReceiptLength {
		return candidate
	}

	short := receiptAlnum.ReplaceAllString(uuid.NewString(), "")[:6]
	tail := appointmentID
	if len(tail) > 12 {
		tail = tail[len(tail)-12:]
	}
	candidate = prefix + tail + "_" + short
	if len(candidate) <= MaxReceiptLength {
		return candidate
	}

	return FallbackReceipt()
}

// FallbackReceipt returns a guaranteed-short randomized receipt
func FallbackReceipt() string {
	random := receiptAlnum.ReplaceAllString(uuid.NewString(), "")
	if len(random) > 28 {
		random = random[:28]
	}
	return "rcpt_" + random
}
