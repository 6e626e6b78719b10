package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printyshop/printy/internal/catalog"
	"github.com/printyshop/printy/internal/logging"
	"github.com/printyshop/printy/internal/models"
	"github.com/printyshop/printy/internal/orders"
	"github.com/printyshop/printy/internal/payment"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrPaymentInFlight   = errors.New("payment attempt already in flight")
	ErrNoPaymentInFlight = errors.New("no payment attempt in flight")
	ErrPersistence       = errors.New("order persistence failed")
)

type State string

const (
	StateCustomizing            State = "customizing"
	StateAwaitingPayment        State = "awaiting_payment"
	StatePaymentInFlight        State = "payment_in_flight"
	StatePersistingOrder        State = "persisting_order"
	StateFulfilled              State = "fulfilled"
	StatePaymentFailed          State = "payment_failed"
	StatePaymentCancelled       State = "payment_cancelled"
	StateOrderPersistenceFailed State = "order_persistence_failed"
)

// Terminal reports whether the session can no longer progress.
func (s State) Terminal() bool {
	return s == StateFulfilled || s == StateOrderPersistenceFailed
}

func (s State) editable() bool {
	switch s {
	case StateCustomizing, StateAwaitingPayment, StatePaymentFailed, StatePaymentCancelled:
		return true
	}
	return false
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

func (ci CustomerInfo) Validate() error {
	fields := []struct{ name, value string }{
		{"name", ci.Name},
		{"email", ci.Email},
		{"phone", ci.Phone},
		{"address", ci.Address},
		{"city", ci.City},
		{"pincode", ci.Pincode},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s required", ErrValidation, f.name)
		}
	}
	return nil
}

// Session is one user's checkout attempt for one product, from customization
// through order confirmation. All mutation goes through the owning
// Orchestrator or the locked selection wrappers below.
type Session struct {
	mu sync.Mutex

	ID        uuid.UUID
	UserID    *uuid.UUID
	Product   *models.Product
	Selection *Selection
	Customer  CustomerInfo
	State     State
	Method    payment.Method
	Gateway   *payment.CheckoutSession
	Order     *models.Order
	LastError string
	CreatedAt time.Time
}

func (s *Session) edit(fn func(*Selection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.State.editable() {
		return fmt.Errorf("%w: customization is closed in state %s", ErrValidation, s.State)
	}
	return fn(s.Selection)
}

func (s *Session) SelectColor(color string) error {
	return s.edit(func(sel *Selection) error { return sel.SelectColor(color) })
}

func (s *Session) SelectSize(size string) error {
	return s.edit(func(sel *Selection) error { return sel.SelectSize(size) })
}

func (s *Session) AdjustQuantity(delta int) error {
	return s.edit(func(sel *Selection) error { sel.AdjustQuantity(delta); return nil })
}

func (s *Session) SetDesign(url string) error {
	return s.edit(func(sel *Selection) error { sel.SetDesign(url); return nil })
}

func (s *Session) AdjustPlacement(dx, dy int) error {
	return s.edit(func(sel *Selection) error { sel.AdjustPlacement(dx, dy); return nil })
}

func (s *Session) AdjustScale(delta int) error {
	return s.edit(func(sel *Selection) error { sel.AdjustScale(delta); return nil })
}

func (s *Session) SetInstructions(text string) error {
	return s.edit(func(sel *Selection) error { sel.SetInstructions(text); return nil })
}

// Quote recomputes the price from the live selection. Never cached.
func (s *Session) Quote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PriceQuote(s.Product, s.Selection.Quantity)
}

// Snapshot returns a consistent copy of the observable session state.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := SessionView{
		ID:        s.ID,
		ProductID: s.Product.ID,
		State:     s.State,
		Selection: *s.Selection,
		Rendered:  s.Selection.RenderPlacement(),
		Quote:     PriceQuote(s.Product, s.Selection.Quantity),
		LastError: s.LastError,
	}
	if s.Order != nil {
		view.OrderNumber = s.Order.OrderNumber
	}
	return view
}

type SessionView struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   uuid.UUID         `json:"product_id"`
	State       State             `json:"state"`
	Selection   Selection         `json:"selection"`
	Rendered    catalog.Placement `json:"rendered_placement"`
	Quote       Quote             `json:"quote"`
	OrderNumber string            `json:"order_number,omitempty"`
	LastError   string            `json:"last_error,omitempty"`
}

// OrderWriter persists an order header and its items.
type OrderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
}

// Orchestrator owns the checkout state machine. Dependencies are injected;
// there is no ambient store or user context.
type Orchestrator struct {
	Orders    OrderWriter
	Providers map[payment.Method]payment.Provider
	Now       func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// ProceedToCheckout gates the Customizing -> AwaitingPayment transition on a
// non-empty design reference.
func (o *Orchestrator) ProceedToCheckout(sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State != StateCustomizing {
		return fmt.Errorf("%w: cannot proceed from state %s", ErrValidation, sess.State)
	}
	if !sess.Selection.HasDesign() {
		return fmt.Errorf("%w: upload a design image first", ErrValidation)
	}
	sess.State = StateAwaitingPayment
	return nil
}

// SubmitCustomerInfo records the contact snapshot; every field is required
// before a payment attempt may start.
func (o *Orchestrator) SubmitCustomerInfo(sess *Session, info CustomerInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.State.editable() || sess.State == StateCustomizing {
		return fmt.Errorf("%w: not awaiting payment in state %s", ErrValidation, sess.State)
	}
	sess.Customer = info
	return nil
}

// StartPayment hands control to the payment adapter. At most one attempt is in
// flight per session; synchronous methods (COD) resolve before returning.
func (o *Orchestrator) StartPayment(ctx context.Context, sess *Session, method payment.Method) (*payment.CheckoutSession, error) {
	provider, ok := o.Providers[method]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrValidation, method)
	}

	sess.mu.Lock()
	if sess.State == StatePaymentInFlight || sess.State == StatePersistingOrder {
		sess.mu.Unlock()
		return nil, ErrPaymentInFlight
	}
	if sess.State != StateAwaitingPayment && sess.State != StatePaymentFailed && sess.State != StatePaymentCancelled {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot pay from state %s", ErrValidation, sess.State)
	}
	if err := sess.Customer.Validate(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	quote := PriceQuote(sess.Product, sess.Selection.Quantity)
	req := payment.SessionRequest{
		Amount:   quote.Total,
		Currency: "INR",
		Receipt:  fmt.Sprintf("session_%s", sess.ID),
		Customer: payment.Contact{Name: sess.Customer.Name, Email: sess.Customer.Email, Phone: sess.Customer.Phone},
	}
	sess.Method = method
	sess.State = StatePaymentInFlight
	sess.mu.Unlock()

	gw, err := provider.CreateSession(ctx, req)
	if err != nil {
		sess.mu.Lock()
		sess.State = StateAwaitingPayment
		sess.LastError = err.Error()
		sess.mu.Unlock()
		logging.FromContext(ctx).Warn("payment_session_error", "session_id", sess.ID, "method", method, "error", err)
		return nil, err
	}

	sess.mu.Lock()
	sess.Gateway = gw
	sess.mu.Unlock()

	if gw.Outcome != nil {
		if err := o.CompletePayment(ctx, sess, *gw.Outcome); err != nil {
			return gw, err
		}
	}
	return gw, nil
}

// CompletePayment consumes exactly one outcome per attempt. A duplicate
// delivery finds the session out of PaymentInFlight and is rejected without
// side effects, so two callbacks can never produce two orders.
func (o *Orchestrator) CompletePayment(ctx context.Context, sess *Session, outcome payment.Outcome) error {
	l := logging.FromContext(ctx).With("session_id", sess.ID)

	sess.mu.Lock()
	if sess.State != StatePaymentInFlight {
		sess.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrNoPaymentInFlight, sess.State)
	}

	switch outcome.Kind {
	case payment.OutcomeCancelled:
		sess.State = StatePaymentCancelled
		sess.LastError = ""
		sess.mu.Unlock()
		l.Info("payment_cancelled")
		return nil

	case payment.OutcomeFailure:
		sess.State = StatePaymentFailed
		sess.LastError = outcome.Description
		sess.mu.Unlock()
		l.Warn("payment_failed", "reason", outcome.Description)
		return nil

	case payment.OutcomeSuccess:
		// Claim the attempt before releasing the lock; a racing duplicate
		// callback must not reach the order writer.
		sess.State = StatePersistingOrder
		order, items := buildOrder(sess, outcome, o.now())
		sess.mu.Unlock()

		err := o.Orders.CreateOrder(ctx, order, items)

		sess.mu.Lock()
		defer sess.mu.Unlock()
		if err != nil {
			sess.State = StateOrderPersistenceFailed
			sess.LastError = "order could not be recorded after payment; contact support"
			l.Error("order_persistence_failed", "order_number", order.OrderNumber, "error", err)
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		sess.State = StateFulfilled
		sess.Order = order
		l.Info("order_created", "order_number", order.OrderNumber, "payment_status", order.PaymentStatus)
		return nil
	}

	sess.mu.Unlock()
	return fmt.Errorf("%w: unknown outcome kind %q", ErrValidation, outcome.Kind)
}

// CancelPayment records an explicit user dismissal of the payment UI.
func (o *Orchestrator) CancelPayment(ctx context.Context, sess *Session) error {
	return o.CompletePayment(ctx, sess, payment.Outcome{Kind: payment.OutcomeCancelled})
}

// buildOrder snapshots the session into persistable rows. Caller holds the
// session lock.
func buildOrder(sess *Session, outcome payment.Outcome, now time.Time) (*models.Order, []models.OrderItem) {
	quote := PriceQuote(sess.Product, sess.Selection.Quantity)

	paymentStatus := models.PaymentStatusPaid
	if sess.Method == payment.MethodCOD {
		paymentStatus = models.PaymentStatusPending
	}

	order := &models.Order{
		UserID:        sess.UserID,
		OrderNumber:   orders.NumberFor(now),
		CustomerEmail: sess.Customer.Email,
		CustomerName:  sess.Customer.Name,
		CustomerPhone: sess.Customer.Phone,
		ShippingAddress: models.Address{
			Address: sess.Customer.Address,
			City:    sess.Customer.City,
			Pincode: sess.Customer.Pincode,
		},
		Subtotal:      quote.Total,
		ShippingCost:  0,
		TaxAmount:     0,
		TotalAmount:   quote.Total,
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: paymentStatus,
		PaymentMethod: string(sess.Method),
		PaymentID:     outcome.PaymentID,
	}

	items := []models.OrderItem{{
		ProductID:          sess.Product.ID,
		Quantity:           sess.Selection.Quantity,
		Size:               sess.Selection.Size,
		Color:              sess.Selection.Color,
		CustomImageURL:     sess.Selection.DesignURL,
		CustomInstructions: sess.Selection.Instructions,
		UnitPrice:          quote.UnitPrice,
		TotalPrice:         quote.Total,
	}}

	return order, items
}
