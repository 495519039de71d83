package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"stylora/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// Intent is the gateway-side order reference created for a booking.
type Intent struct {
	OrderID      string  `json:"orderId"`
	ClientSecret string  `json:"clientSecret,omitempty"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// Gateway is the narrow contract the booking engine has with the payment
// provider: create an order reference, verify a signed confirmation, refund.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error)
	CancelIntent(ctx context.Context, orderID string) error
	VerifyConfirmation(orderID, paymentID, signature string) error
	Refund(ctx context.Context, paymentID string, amount float64, currency string) (string, error)
}

// StripeGateway implements Gateway on top of Stripe payment intents.
// Confirmations relayed by the client carry an HMAC-SHA256 signature over
// "orderID|paymentID" computed with the shared signing secret.
type StripeGateway struct {
	signingSecret []byte
	logger        *zap.Logger
}

// NewStripeGateway constructs a StripeGateway. The stripe API key is set
// globally at startup (stripe.Key).
func NewStripeGateway(signingSecret string, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{signingSecret: []byte(signingSecret), logger: logger}
}

// CreateIntent creates a payment intent for the amount and returns its order
// reference.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error("payment intent creation failed", zap.Error(err))
		return nil, utils.NewExternalServiceError("payment gateway unavailable", err)
	}

	return &Intent{
		OrderID:      pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       amount,
		Currency:     currency,
	}, nil
}

// CancelIntent voids an uncaptured payment intent. Used when the booking it
// was created for never made it into storage.
func (g *StripeGateway) CancelIntent(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(orderID, params); err != nil {
		g.logger.Error("payment intent cancellation failed", zap.String("orderID", orderID), zap.Error(err))
		return utils.NewExternalServiceError("payment intent cancellation failed", err)
	}
	return nil
}

// VerifyConfirmation checks the signature of a payment confirmation. A bad
// signature is a verification failure, never an external-service error.
func (g *StripeGateway) VerifyConfirmation(orderID, paymentID, signature string) error {
	expected := SignConfirmation(g.signingSecret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return utils.NewPaymentVerificationError("payment signature mismatch")
	}
	return nil
}

// Refund refunds the captured payment and returns the refund reference.
func (g *StripeGateway) Refund(ctx context.Context, paymentID string, amount float64, currency string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(int64(amount * 100)),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		g.logger.Error("refund failed", zap.String("paymentID", paymentID), zap.Error(err))
		return "", utils.NewExternalServiceError("refund failed", err)
	}
	return r.ID, nil
}

// SignConfirmation computes the hex HMAC-SHA256 signature the gateway attaches
// to a confirmation of orderID/paymentID.
func SignConfirmation(secret []byte, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
