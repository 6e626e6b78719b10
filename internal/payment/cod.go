package payment

import (
	"context"
	"fmt"
	"time"
)

// CODProvider confirms an order without upfront capture: the session resolves
// synchronously with a locally generated payment id and no external call.
type CODProvider struct {
	Now func() time.Time
}

func (p *CODProvider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *CODProvider) CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error) {
	return &CheckoutSession{
		Method:   MethodCOD,
		Amount:   req.Amount,
		Currency: req.Currency,
		Prefill:  req.Customer,
		Outcome: &Outcome{
			Kind:      OutcomeSuccess,
			PaymentID: fmt.Sprintf("COD_%d", p.now().UnixMilli()),
		},
	}, nil
}
