package usecase

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/logging"
)

var ErrTrackingIDRequired = errors.New("tracking id required")

const DefaultTrackingDelay = 1500 * time.Millisecond

type ShipmentStatus string

const (
	ShipmentProcessing ShipmentStatus = "processing"
	ShipmentInTransit  ShipmentStatus = "in-transit"
	ShipmentDelivered  ShipmentStatus = "delivered"
)

// Label renders "in-transit" as "In transit".
func (s ShipmentStatus) Label() string {
	str := strings.Replace(string(s), "-", " ", 1)
	if str == "" {
		return str
	}
	return strings.ToUpper(str[:1]) + str[1:]
}

type TimelineStep struct {
	Step      string `json:"step"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type Shipment struct {
	TrackingID        string         `json:"trackingId"`
	Status            ShipmentStatus `json:"status"`
	StatusLabel       string         `json:"statusLabel"`
	CurrentLocation   string         `json:"currentLocation"`
	Product           string         `json:"product"`
	EstimatedDelivery string         `json:"estimatedDelivery"`
	Timeline          []TimelineStep `json:"timeline"`
}

var (
	shipmentStatuses = []ShipmentStatus{ShipmentProcessing, ShipmentInTransit, ShipmentDelivered}
	shipmentHubs     = []string{
		"Mumbai, Maharashtra",
		"Delhi, NCR",
		"Bangalore, Karnataka",
		"Chennai, Tamil Nadu",
	}
	shipmentProducts = []string{
		"Turmeric",
		"Cardamom",
		"Black Pepper",
		"Cumin Seeds",
		"Coriander",
	}
)

type TrackingOptions struct {
	Delay time.Duration
	Rand  *rand.Rand
	Now   func() time.Time
}

// TrackingService fabricates shipment status after an artificial delay.
// There is no carrier behind it.
type TrackingService struct {
	delay   time.Duration
	now     func() time.Time
	metrics Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

func NewTrackingService(metrics Metrics, opts TrackingOptions) *TrackingService {
	if opts.Delay < 0 {
		opts.Delay = DefaultTrackingDelay
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &TrackingService{
		delay:   opts.Delay,
		now:     opts.Now,
		metrics: metrics,
		rng:     opts.Rand,
	}
}

func (t *TrackingService) Track(ctx context.Context, trackingID string) (Shipment, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return Shipment{}, withNotice(ErrTrackingIDRequired, domain.Failure("Please enter a tracking ID"))
	}
	if err := sleep(ctx, t.delay); err != nil {
		return Shipment{}, err
	}

	status, hub, product := t.pick()
	eta := estimatedDelivery(t.now(), status)
	sh := Shipment{
		TrackingID:        trackingID,
		Status:            status,
		StatusLabel:       status.Label(),
		CurrentLocation:   hub,
		Product:           product,
		EstimatedDelivery: eta.Format("2/1/2006"),
		Timeline:          timeline(eta, status),
	}

	t.metrics.TrackingLookup(string(status))
	logging.FromCtx(ctx).Debug("tracking lookup", "tracking_id", trackingID, "status", status)
	return sh, nil
}

func (t *TrackingService) pick() (ShipmentStatus, string, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return shipmentStatuses[t.rng.Intn(len(shipmentStatuses))],
		shipmentHubs[t.rng.Intn(len(shipmentHubs))],
		shipmentProducts[t.rng.Intn(len(shipmentProducts))]
}

func estimatedDelivery(today time.Time, status ShipmentStatus) time.Time {
	const day = 24 * time.Hour
	switch status {
	case ShipmentProcessing:
		return today.Add(3 * day)
	case ShipmentInTransit:
		return today.Add(day)
	default:
		return today.Add(-day)
	}
}

// timeline lays the four steps on consecutive days ending at eta.
func timeline(eta time.Time, status ShipmentStatus) []TimelineStep {
	placed := eta.AddDate(0, 0, -3)
	date := func(offset int) string { return placed.AddDate(0, 0, offset).Format("2006-01-02") }
	return []TimelineStep{
		{Step: "Order Placed", Date: date(0), Completed: true},
		{Step: "Processing", Date: date(1), Completed: true},
		{Step: "In Transit", Date: date(2), Completed: status != ShipmentProcessing},
		{Step: "Delivered", Date: date(3), Completed: status == ShipmentDelivered},
	}
}
