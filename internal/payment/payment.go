package payment

import (
	"context"
	"errors"
)

var ErrProvider = errors.New("payment provider")

type Method string

const (
	MethodRazorpay Method = "razorpay"
	MethodCOD      Method = "cod"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodRazorpay, MethodCOD:
		return Method(s), nil
	}
	return "", errors.New("unknown payment method: " + s)
}

type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeFailure   OutcomeKind = "failure"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Outcome is the single tagged result of one payment attempt. The hosted
// gateway delivers it through a callback; COD produces it synchronously.
type Outcome struct {
	Kind            OutcomeKind `json:"kind"`
	PaymentID       string      `json:"payment_id,omitempty"`
	ProviderOrderID string      `json:"provider_order_id,omitempty"`
	Signature       string      `json:"signature,omitempty"`
	Description     string      `json:"description,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"contact"`
}

type SessionRequest struct {
	Amount   int64 // minor currency units
	Currency string
	Receipt  string
	Customer Contact
}

// CheckoutSession is what the client needs to open the hosted payment UI.
// For synchronous methods Outcome is already set and no UI is opened.
type CheckoutSession struct {
	Method          Method   `json:"method"`
	ProviderOrderID string   `json:"provider_order_id,omitempty"`
	KeyID           string   `json:"key_id,omitempty"`
	Amount          int64    `json:"amount"`
	Currency        string   `json:"currency"`
	Prefill         Contact  `json:"prefill"`
	Outcome         *Outcome `json:"outcome,omitempty"`
}

type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error)
}
