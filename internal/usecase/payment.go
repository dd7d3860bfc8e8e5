package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/logging"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrPaymentPending  = errors.New("payment already in progress")
	ErrPaymentDeclined = errors.New("payment declined")
)

const (
	DefaultPaymentDelay = 2 * time.Second
	DefaultDeclineRate  = 0.1

	txnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	txnLength   = 9
)

type PaymentRequest struct {
	Method string
	Amount int64
}

type PaymentReceipt struct {
	TransactionID string               `json:"transactionId"`
	Method        domain.PaymentMethod `json:"method"`
	Amount        int64                `json:"amount"`
	Status        string               `json:"status"`
}

type PaymentOptions struct {
	Delay       time.Duration
	DeclineRate float64
	Rand        *rand.Rand
}

// PaymentSimulator stands in for a card/UPI gateway: it waits, then approves
// or declines at random. A successful payment empties the session's cart.
type PaymentSimulator struct {
	lock     PaymentLock
	sessions *Registry
	metrics  Metrics
	delay    time.Duration
	decline  float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPaymentSimulator(lock PaymentLock, sessions *Registry, metrics Metrics, opts PaymentOptions) *PaymentSimulator {
	if opts.Delay < 0 {
		opts.Delay = DefaultPaymentDelay
	}
	if opts.DeclineRate < 0 || opts.DeclineRate > 1 {
		opts.DeclineRate = DefaultDeclineRate
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &PaymentSimulator{
		lock:     lock,
		sessions: sessions,
		metrics:  metrics,
		delay:    opts.Delay,
		decline:  opts.DeclineRate,
		rng:      opts.Rand,
	}
}

// Process rejects a second call for the same session while the first is
// still waiting (ErrPaymentPending). Errors carry a notice, see NoticeOf.
func (p *PaymentSimulator) Process(ctx context.Context, sessionID string, req PaymentRequest) (PaymentReceipt, error) {
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		return PaymentReceipt{}, withNotice(err, domain.Failure(msgUnknownMethod))
	}
	if req.Amount <= 0 {
		return PaymentReceipt{}, withNotice(ErrInvalidAmount, domain.Failure("Please enter a valid amount"))
	}

	ok, err := p.lock.TryLock(ctx, sessionID)
	if err != nil {
		return PaymentReceipt{}, fmt.Errorf("payment lock: %w", err)
	}
	if !ok {
		return PaymentReceipt{}, withNotice(ErrPaymentPending, domain.Warning("A payment is already being processed"))
	}
	defer func() {
		// the request context may already be cancelled here
		if err := p.lock.Unlock(context.WithoutCancel(ctx), sessionID); err != nil {
			logging.FromCtx(ctx).Warn("payment unlock failed", "session_id", sessionID, "err", err)
		}
	}()

	if err := sleep(ctx, p.delay); err != nil {
		p.metrics.PaymentProcessed("cancelled")
		return PaymentReceipt{}, err
	}

	approved, txnID := p.draw()
	if !approved {
		p.metrics.PaymentProcessed("declined")
		logging.FromCtx(ctx).Info("payment declined", "session_id", sessionID, "method", method, "amount", req.Amount)
		return PaymentReceipt{}, withNotice(ErrPaymentDeclined, domain.Failure("Payment failed. Please try again."))
	}

	_, _ = p.sessions.Do(ctx, sessionID, func(s *Session) (Result, error) {
		return s.ClearCart(ctx)
	})
	p.metrics.PaymentProcessed("approved")
	logging.FromCtx(ctx).Info("payment approved", "session_id", sessionID, "txn_id", txnID, "method", method, "amount", req.Amount)

	return PaymentReceipt{
		TransactionID: txnID,
		Method:        method,
		Amount:        req.Amount,
		Status:        "Completed",
	}, nil
}

func (p *PaymentSimulator) draw() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rng.Float64() < p.decline {
		return false, ""
	}
	b := make([]byte, txnLength)
	for i := range b {
		b[i] = txnAlphabet[p.rng.Intn(len(txnAlphabet))]
	}
	return true, "TXN" + string(b)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
