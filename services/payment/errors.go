package payment

import "errors"

var (
	// ErrProviderUnavailable means no payment provider is configured;
	// handlers surface this as 503.
	ErrProviderUnavailable = errors.New("payment provider not configured")
	// ErrInvalidSignature means the supplied settlement signature does
	// not match the one recomputed from the provider secret. Checked
	// unconditionally before any state mutation.
	ErrInvalidSignature = errors.New("invalid payment signature")
)

// SlotTakenError is terminal for the payment: the signature was valid
// but another booking occupied the window during checkout. The payment
// is marked failed and a provider-side refund is the caller's
// responsibility.
type SlotTakenError struct {
	PaymentID string
}

func (e *SlotTakenError) Error() string {
	return "slot was booked by another user during payment"
}
