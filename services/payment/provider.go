package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderClient is the slice of the payment provider this gate needs:
// create an order, nothing else. Settlement verification is local
// signature arithmetic and needs no provider round-trip.
type OrderClient interface {
	// CreateOrder registers an order for the given amount (in the
	// currency's smallest unit) and returns the provider order ID.
	CreateOrder(amountSubunits int64, currency, receipt string, notes map[string]interface{}) (string, error)
}

// RazorpayOrders adapts the Razorpay SDK to OrderClient.
type RazorpayOrders struct {
	client *razorpay.Client
}

func NewRazorpayOrders(keyID, keySecret string) *RazorpayOrders {
	return &RazorpayOrders{client: razorpay.NewClient(keyID, keySecret)}
}

func (r *RazorpayOrders) CreateOrder(amountSubunits int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	body := map[string]interface{}{
		"amount":   amountSubunits,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	order, err := r.client.Order.Create(body, nil)
	if err != nil {
		return "", fmt.Errorf("provider order create failed: %w", err)
	}
	id, ok := order["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("provider order create returned no id")
	}
	return id, nil
}

// expectedSignature recomputes the settlement signature: HMAC-SHA256
// over "orderId|paymentId" with the provider key secret, hex encoded.
func expectedSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// signatureValid compares in constant time.
func signatureValid(secret, orderID, paymentID, signature string) bool {
	expected := expectedSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
