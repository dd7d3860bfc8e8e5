package usecase

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/logging"
)

// Stage is the position of a session in the checkout flow.
type Stage string

const (
	StageCart          Stage = "cart"
	StageDetails       Stage = "details"
	StagePaymentChoice Stage = "payment_choice"
	StageConfirmed     Stage = "confirmed"
)

func (s Stage) IsTerminal() bool { return s == StageConfirmed }

func (s Stage) String() string { return string(s) }

var (
	ErrCartEmpty         = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition = errors.New("illegal checkout transition")
)

const (
	msgCartEmpty         = "Your cart is empty"
	msgDetailsIncomplete = "Please fill all details"
	msgUPIRequired       = "Enter a valid UPI ID"
	msgCardIncomplete    = "Enter complete card details"
	msgUnknownMethod     = "Choose a payment method"
	msgOrderConfirmed    = "Order confirmed!"
	msgStepUnavailable   = "That step is not available right now"
)

// Begin moves cart -> details.
func (s *Session) Begin(ctx context.Context) (Result, error) {
	if err := s.expect("begin", StageCart); err != nil {
		return s.fail(err, domain.Failure(msgStepUnavailable))
	}
	if s.cart.IsEmpty() {
		return s.fail(ErrCartEmpty, domain.Warning(msgCartEmpty))
	}
	s.stage = StageDetails
	return s.ok(nil), nil
}

// SubmitDetails moves details -> payment_choice and persists the details.
func (s *Session) SubmitDetails(ctx context.Context, d domain.CheckoutDetails) (Result, error) {
	if err := s.expect("submit_details", StageDetails); err != nil {
		return s.fail(err, domain.Failure(msgStepUnavailable))
	}
	if s.cart.IsEmpty() {
		return s.fail(ErrCartEmpty, domain.Warning(msgCartEmpty))
	}
	if err := d.Validate(); err != nil {
		return s.fail(err, domain.Failure(msgDetailsIncomplete))
	}
	details := d.Trimmed()
	s.details = &details
	s.persist(ctx, KeyCheckoutDetails, s.details)
	s.stage = StagePaymentChoice
	return s.ok(nil), nil
}

// Back steps one stage towards the cart. Entered details are kept.
func (s *Session) Back(ctx context.Context) (Result, error) {
	switch s.stage {
	case StageDetails:
		s.stage = StageCart
	case StagePaymentChoice:
		s.stage = StageDetails
	default:
		err := fmt.Errorf("%w: back from %s", ErrIllegalTransition, s.stage)
		return s.fail(err, domain.Failure(msgStepUnavailable))
	}
	return s.ok(nil), nil
}

// Confirm moves payment_choice -> confirmed, builds the order and empties
// the cart.
func (s *Session) Confirm(ctx context.Context, sel domain.PaymentSelection) (Result, error) {
	if err := s.expect("confirm", StagePaymentChoice); err != nil {
		return s.fail(err, domain.Failure(msgStepUnavailable))
	}
	if s.cart.IsEmpty() {
		return s.fail(ErrCartEmpty, domain.Warning(msgCartEmpty))
	}
	if err := sel.Validate(); err != nil {
		return s.fail(err, domain.Failure(paymentMessage(err)))
	}

	var details domain.CheckoutDetails
	if s.details != nil {
		details = *s.details
	}
	order := domain.NewOrder(s.cart, details, sel.Method)

	s.cart.Clear()
	s.persist(ctx, KeyCart, s.cart)
	s.stage = StageConfirmed
	s.lastOrder = &order
	s.deps.Metrics.OrderConfirmed(order.Total)

	logging.FromCtx(ctx).Info("order confirmed",
		"session_id", s.id, "total", order.Total, "lines", len(order.Items), "method", order.Method)
	s.publishConfirmed(ctx, order, details)

	return s.ok(domain.Success(msgOrderConfirmed)), nil
}

// Reset is the exit action of the confirmed stage: it empties the cart again
// and returns to the start of the flow.
func (s *Session) Reset(ctx context.Context) (Result, error) {
	if err := s.expect("reset", StageConfirmed); err != nil {
		return s.fail(err, domain.Failure(msgStepUnavailable))
	}
	s.leaveConfirmed(ctx)
	return s.ok(nil), nil
}

func (s *Session) expect(action string, want Stage) error {
	if s.stage != want {
		return fmt.Errorf("%w: %s requires stage %s, session is at %s", ErrIllegalTransition, action, want, s.stage)
	}
	return nil
}

func (s *Session) publishConfirmed(ctx context.Context, order domain.Order, details domain.CheckoutDetails) {
	if s.deps.Orders == nil {
		return
	}
	msg := OrderConfirmedMsg{
		SessionID:     s.id,
		CustomerName:  order.CustomerName,
		CustomerEmail: details.Email,
		Total:         order.Total,
		Items:         order.Items,
		Method:        order.Method.String(),
		Summary:       order.Summary(),
		ConfirmedAt:   s.deps.Now().UTC(),
	}
	if err := s.deps.Orders.PublishOrderConfirmed(ctx, msg); err != nil {
		logging.FromCtx(ctx).Warn("order confirmed publish failed", "session_id", s.id, "err", err)
	}
}

func paymentMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUPIRequired):
		return msgUPIRequired
	case errors.Is(err, domain.ErrCardIncomplete):
		return msgCardIncomplete
	default:
		return msgUnknownMethod
	}
}
