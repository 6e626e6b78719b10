package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// RazorpayProvider creates gateway orders over the Razorpay REST API and
// verifies the signature the hosted checkout widget sends back.
type RazorpayProvider struct {
	KeyID     string
	KeySecret string

	client *resty.Client
}

func NewRazorpayProvider(baseURL, keyID, keySecret string) *RazorpayProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetHeader("Content-Type", "application/json")
	return &RazorpayProvider{KeyID: keyID, KeySecret: keySecret, client: client}
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (p *RazorpayProvider) CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error) {
	var order razorpayOrder
	var apiErr razorpayError

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"amount":   req.Amount,
			"currency": req.Currency,
			"receipt":  req.Receipt,
		}).
		SetResult(&order).
		SetError(&apiErr).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: %s", ErrProvider, resp.Status(), apiErr.Error.Description)
	}

	return &CheckoutSession{
		Method:          MethodRazorpay,
		ProviderOrderID: order.ID,
		KeyID:           p.KeyID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Prefill:         req.Customer,
	}, nil
}

// VerifySignature checks the HMAC-SHA256 the widget computes over
// "<order_id>|<payment_id>" with the key secret.
func (p *RazorpayProvider) VerifySignature(providerOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.KeySecret))
	fmt.Fprintf(mac, "%s|%s", providerOrderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// NormalizeSuccess turns a success callback into an Outcome, downgrading a bad
// signature to a failure so the attempt can be retried.
func (p *RazorpayProvider) NormalizeSuccess(providerOrderID, paymentID, signature string) Outcome {
	if !p.VerifySignature(providerOrderID, paymentID, signature) {
		return Outcome{Kind: OutcomeFailure, Description: "payment signature verification failed"}
	}
	return Outcome{
		Kind:            OutcomeSuccess,
		PaymentID:       paymentID,
		ProviderOrderID: providerOrderID,
		Signature:       signature,
	}
}
