package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/logging"
)

var ErrContactIncomplete = errors.New("contact message incomplete")

const DefaultContactDelay = 1500 * time.Millisecond

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

type ContactOptions struct {
	Delay time.Duration
}

// ContactService accepts contact-form messages. Nothing is delivered: the
// message is logged after a simulated send delay.
type ContactService struct {
	delay time.Duration
}

func NewContactService(opts ContactOptions) *ContactService {
	if opts.Delay < 0 {
		opts.Delay = DefaultContactDelay
	}
	return &ContactService{delay: opts.Delay}
}

func (s *ContactService) Submit(ctx context.Context, m ContactMessage) (*domain.Notice, error) {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Message) == "" {
		return nil, withNotice(ErrContactIncomplete, domain.Failure("Please fill all fields"))
	}
	if err := sleep(ctx, s.delay); err != nil {
		return nil, err
	}
	logging.FromCtx(ctx).Info("contact message received",
		"email", m.Email, "subject", m.Subject, "message_len", len(m.Message))
	return domain.Success("Message sent successfully! We will contact you soon."), nil
}
