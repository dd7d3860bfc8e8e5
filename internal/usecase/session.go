package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/logging"
)

// Snapshot names under a session's key space.
const (
	KeyCart            = "cart"
	KeyCurrentUser     = "currentUser"
	KeyCheckoutDetails = "checkoutDetails"
)

// View is everything the presentation layer needs to re-render.
type View struct {
	SessionID    string                  `json:"sessionId"`
	Stage        Stage                   `json:"stage"`
	Items        []domain.LineItem       `json:"items"`
	Total        int64                   `json:"total"`
	ItemCount    int                     `json:"itemCount"`
	Details      *domain.CheckoutDetails `json:"details,omitempty"`
	User         *domain.User            `json:"user,omitempty"`
	Order        *domain.Order           `json:"order,omitempty"`
	OrderSummary string                  `json:"orderSummary,omitempty"`
}

// Result is returned by every session operation, successful or not.
type Result struct {
	View   View           `json:"view"`
	Notice *domain.Notice `json:"notice"`
}

// Session owns one visitor's cart, sign-in and checkout progress. It is not
// safe for concurrent use; Registry serializes access per session.
type Session struct {
	id   string
	deps SessionDeps

	cart      *domain.Cart
	user      *domain.User
	details   *domain.CheckoutDetails
	stage     Stage
	lastOrder *domain.Order
}

func NewSession(id string, deps SessionDeps) *Session {
	return &Session{
		id:    id,
		deps:  deps.withDefaults(),
		cart:  domain.NewCart(),
		stage: StageCart,
	}
}

func (s *Session) Stage() Stage { return s.stage }

// Rehydrate restores the persisted snapshots. Missing, unreadable or
// malformed snapshots leave the corresponding state empty.
func (s *Session) Rehydrate(ctx context.Context) {
	var cart domain.Cart
	if s.load(ctx, KeyCart, &cart) {
		s.cart = &cart
	}
	var user *domain.User
	if s.load(ctx, KeyCurrentUser, &user) {
		s.user = user
	}
	var details *domain.CheckoutDetails
	if s.load(ctx, KeyCheckoutDetails, &details) {
		s.details = details
	}
}

func (s *Session) View() View {
	v := View{
		SessionID: s.id,
		Stage:     s.stage,
		Items:     s.cart.Items(),
		Total:     s.cart.Total(),
		ItemCount: s.cart.ItemCount(),
		Details:   s.details,
		User:      s.user,
		Order:     s.lastOrder,
	}
	if s.lastOrder != nil {
		v.OrderSummary = s.lastOrder.Summary()
	}
	return v
}

func (s *Session) AddItem(ctx context.Context, name, displayPrice, imageRef string) (Result, error) {
	s.leaveConfirmed(ctx)
	li := s.cart.Add(name, displayPrice, imageRef)
	s.cartChanged(ctx, "add", li)
	return s.ok(domain.Success(fmt.Sprintf("%s added to cart!", li.Name))), nil
}

func (s *Session) SetQuantity(ctx context.Context, index, qty int) (Result, error) {
	li, err := s.cart.SetQuantity(index, qty)
	if err != nil {
		return s.fail(err, domain.Failure("That item is no longer in your cart"))
	}
	s.cartChanged(ctx, "set_quantity", li)
	return s.ok(nil), nil
}

func (s *Session) ChangeQuantity(ctx context.Context, index, delta int) (Result, error) {
	li, err := s.cart.ChangeQuantity(index, delta)
	if err != nil {
		return s.fail(err, domain.Failure("That item is no longer in your cart"))
	}
	s.cartChanged(ctx, "change_quantity", li)
	return s.ok(nil), nil
}

func (s *Session) RemoveItem(ctx context.Context, index int) (Result, error) {
	li, err := s.cart.Remove(index)
	if err != nil {
		return s.fail(err, domain.Failure("That item is no longer in your cart"))
	}
	li.Quantity = 0
	s.cartChanged(ctx, "remove", li)
	return s.ok(domain.Info(fmt.Sprintf("%s removed from cart", li.Name))), nil
}

func (s *Session) ClearCart(ctx context.Context) (Result, error) {
	s.cart.Clear()
	s.cartChanged(ctx, "clear", domain.LineItem{})
	return s.ok(nil), nil
}

// leaveConfirmed runs the confirmed-stage exit action when the visitor starts
// shopping again without an explicit reset.
func (s *Session) leaveConfirmed(ctx context.Context) {
	if !s.stage.IsTerminal() {
		return
	}
	s.cart.Clear()
	s.persist(ctx, KeyCart, s.cart)
	s.stage = StageCart
	s.lastOrder = nil
}

func (s *Session) cartChanged(ctx context.Context, op string, li domain.LineItem) {
	s.persist(ctx, KeyCart, s.cart)
	s.deps.Metrics.CartMutated(op)

	if s.deps.Activity == nil {
		return
	}
	msg := CartActivityMsg{
		SessionID: s.id,
		Op:        op,
		ItemName:  li.Name,
		Quantity:  li.Quantity,
		CartTotal: s.cart.Total(),
		ItemCount: s.cart.ItemCount(),
		At:        s.deps.Now().UTC(),
	}
	if err := s.deps.Activity.PublishCartActivity(ctx, msg); err != nil {
		logging.FromCtx(ctx).Warn("cart activity publish failed", "session_id", s.id, "op", op, "err", err)
	}
}

// persist is best-effort: failures are logged and counted, never returned.
func (s *Session) persist(ctx context.Context, name string, v any) {
	blob, err := json.Marshal(v)
	if err != nil {
		logging.FromCtx(ctx).Error("snapshot encode failed", "session_id", s.id, "key", name, "err", err)
		return
	}
	if err := s.deps.Store.Save(ctx, s.key(name), blob); err != nil {
		s.deps.Metrics.SnapshotSaveFailed(name)
		logging.FromCtx(ctx).Warn("snapshot save failed", "session_id", s.id, "key", name, "err", err)
	}
}

func (s *Session) load(ctx context.Context, name string, dst any) bool {
	blob, found, err := s.deps.Store.Load(ctx, s.key(name))
	if err != nil {
		logging.FromCtx(ctx).Warn("snapshot load failed", "session_id", s.id, "key", name, "err", err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		logging.FromCtx(ctx).Debug("snapshot ignored", "session_id", s.id, "key", name, "err", err)
		return false
	}
	return true
}

func (s *Session) key(name string) string {
	return s.deps.KeyPrefix + ":" + s.id + ":" + name
}

func (s *Session) ok(n *domain.Notice) Result {
	return Result{View: s.View(), Notice: n}
}

func (s *Session) fail(err error, n *domain.Notice) (Result, error) {
	return Result{View: s.View(), Notice: n}, err
}

// NoticeOf extracts the user-facing notice carried by a failed operation.
func NoticeOf(err error) (*domain.Notice, bool) {
	var ne *noticeError
	if errors.As(err, &ne) {
		return ne.notice, true
	}
	return nil, false
}

type noticeError struct {
	err    error
	notice *domain.Notice
}

func (e *noticeError) Error() string { return e.err.Error() }
func (e *noticeError) Unwrap() error { return e.err }

func withNotice(err error, n *domain.Notice) error {
	return &noticeError{err: err, notice: n}
}
