package usecase

import (
	"context"
	"time"
)

// SnapshotStore is the key-value persistence gateway. Values are opaque JSON
// blobs; a missing key is reported with found=false and a nil error.
type SnapshotStore interface {
	Load(ctx context.Context, key string) (blob []byte, found bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
}

// PaymentLock guards a session against overlapping payment submissions.
type PaymentLock interface {
	TryLock(ctx context.Context, scope string) (bool, error)
	Unlock(ctx context.Context, scope string) error
}

type OrderEventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, msg OrderConfirmedMsg) error
}

type ActivityPublisher interface {
	PublishCartActivity(ctx context.Context, msg CartActivityMsg) error
}

// ConfirmationNotifier receives order-confirmed events on the consumer side.
type ConfirmationNotifier interface {
	NotifyOrderConfirmed(ctx context.Context, msg OrderConfirmedMsg) error
}

type Metrics interface {
	CartMutated(op string)
	OrderConfirmed(total int64)
	PaymentProcessed(result string)
	TrackingLookup(status string)
	SnapshotSaveFailed(key string)
}

type NopMetrics struct{}

func (NopMetrics) CartMutated(string)        {}
func (NopMetrics) OrderConfirmed(int64)      {}
func (NopMetrics) PaymentProcessed(string)   {}
func (NopMetrics) TrackingLookup(string)     {}
func (NopMetrics) SnapshotSaveFailed(string) {}

var _ Metrics = NopMetrics{}

// SessionDeps are the collaborators shared by every session of a Registry.
// Orders and Activity are optional.
type SessionDeps struct {
	Store     SnapshotStore
	KeyPrefix string
	Orders    OrderEventPublisher
	Activity  ActivityPublisher
	Metrics   Metrics
	Now       func() time.Time
}

func (d SessionDeps) withDefaults() SessionDeps {
	if d.KeyPrefix == "" {
		d.KeyPrefix = "silkroad"
	}
	if d.Metrics == nil {
		d.Metrics = NopMetrics{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
