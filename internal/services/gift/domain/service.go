package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
	"github.com/gratefulday/gratefulday.space/internal/services/gift/lnurl"
	"github.com/gratefulday/gratefulday.space/internal/services/gift/payment"
	"github.com/gratefulday/gratefulday.space/internal/telemetry"
)

var tracer = otel.Tracer("gratefulday.space/gift")

var (
	// ErrSignerRequired is returned when no signing identity is configured.
	ErrSignerRequired = errors.New("gift: signer required")
	// ErrInvalidAmount is returned for non-positive gift amounts.
	ErrInvalidAmount = errors.New("gift: amount must be positive")
	// ErrNoRecipient is returned when no candidate qualifies. Callers should
	// suggest trying again later rather than retrying automatically.
	ErrNoRecipient = errors.New("gift: no eligible recipient found")
)

// InvoiceClient resolves payment requests against a recipient's endpoint.
type InvoiceClient interface {
	RequestInvoice(ctx context.Context, endpoint string, amountMsats int64, zapRequest nostr.Event) (string, error)
	CheckPaid(ctx context.Context, endpoint, invoice string) bool
}

// Dispatcher attempts payment of an invoice across the configured channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, invoice string) payment.Result
}

// ServiceConfig wires the collaborators of a gift service.
type ServiceConfig struct {
	Signer     nostr.Signer
	Selector   *Selector
	History    *History
	Invoices   InvoiceClient
	Dispatcher Dispatcher
	Publisher  *Publisher
	Emitter    *telemetry.Emitter
	Relays     []string
	Now        func() int64
}

// Service orchestrates a gift from recipient selection through payment and
// receipt publication.
type Service struct {
	cfg ServiceConfig
}

// NewService creates a gift service from the given configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{cfg: cfg}
}

// Send picks a recipient and pays them the given amount in sats. The zap
// request is signed exactly once and reused across every payment channel, so
// a fallback never produces a second request for the same gift.
func (s *Service) Send(ctx context.Context, amountSats int64, message, excludeAdditional string) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "gift.send")
	defer span.End()

	if s.cfg.Signer == nil {
		return Outcome{Status: StatusFailed, Reason: "signer required"}, ErrSignerRequired
	}
	if amountSats <= 0 {
		return Outcome{Status: StatusFailed, Reason: "invalid amount"}, ErrInvalidAmount
	}

	candidate, ok, err := s.cfg.Selector.Select(ctx, excludeAdditional)
	if err != nil {
		s.emitFailure(ctx, "", "selection failed")
		return Outcome{Status: StatusFailed, Reason: "selection failed"}, fmt.Errorf("select recipient: %w", err)
	}
	if !ok {
		s.emitFailure(ctx, "", "no eligible recipient")
		return Outcome{Status: StatusFailed, Reason: "no eligible recipient"}, ErrNoRecipient
	}

	if s.cfg.History != nil {
		s.cfg.History.Record(ctx, candidate.PubKey)
	}

	endpoint, err := lnurl.ResolveEndpoint(candidate.Profile.Lud16, candidate.Profile.Lud06)
	if err != nil {
		s.emitFailure(ctx, candidate.PubKey, "endpoint resolution failed")
		return Outcome{Status: StatusFailed, Recipient: candidate.PubKey, Reason: "endpoint resolution failed"},
			fmt.Errorf("resolve endpoint: %w", err)
	}

	amountMsats := amountSats * 1000
	zapRequest := NewZapRequest(candidate.PubKey, amountMsats, message, s.cfg.Relays, s.now())
	if err := s.cfg.Signer.SignEvent(ctx, &zapRequest); err != nil {
		s.emitFailure(ctx, candidate.PubKey, "signing failed")
		return Outcome{Status: StatusFailed, Recipient: candidate.PubKey, Reason: "signing failed"},
			fmt.Errorf("sign zap request: %w", err)
	}

	invoice, err := s.cfg.Invoices.RequestInvoice(ctx, endpoint, amountMsats, zapRequest)
	if err != nil {
		s.emitFailure(ctx, candidate.PubKey, "invoice request failed")
		return Outcome{Status: StatusFailed, Recipient: candidate.PubKey, Endpoint: endpoint, Reason: "invoice request failed"},
			fmt.Errorf("request invoice: %w", err)
	}

	result := s.cfg.Dispatcher.Dispatch(ctx, invoice)
	if result.Confirmed {
		s.cfg.Publisher.Publish(ctx, zapRequest)
		s.cfg.Emitter.Emit(ctx, "gift.sent", telemetry.SeverityInfo, map[string]string{
			"recipient": candidate.PubKey,
			"channel":   result.Channel,
		})
		return Outcome{
			Status:     StatusSuccess,
			Channel:    result.Channel,
			Recipient:  candidate.PubKey,
			Invoice:    invoice,
			Endpoint:   endpoint,
			ZapRequest: zapRequest,
		}, nil
	}

	s.cfg.Emitter.Emit(ctx, "gift.manual_pending", telemetry.SeverityInfo, map[string]string{
		"recipient": candidate.PubKey,
		"channel":   result.Channel,
	})
	return Outcome{
		Status:     StatusNeedsManualCompletion,
		Channel:    result.Channel,
		Recipient:  candidate.PubKey,
		Invoice:    invoice,
		Endpoint:   endpoint,
		ZapRequest: zapRequest,
	}, nil
}

// VerifyAndPublish checks whether the invoice settled and, if so, publishes
// the receipt. With force set the status check is skipped entirely, covering
// endpoints that do not support it. Returns whether the receipt was
// published.
func (s *Service) VerifyAndPublish(ctx context.Context, invoice, endpoint string, zapRequest nostr.Event, force bool) bool {
	ctx, span := tracer.Start(ctx, "gift.verify")
	defer span.End()

	if !force && !s.cfg.Invoices.CheckPaid(ctx, endpoint, invoice) {
		return false
	}
	s.cfg.Publisher.Publish(ctx, zapRequest)
	recipient, _ := zapRequest.TagValue("p")
	s.cfg.Emitter.Emit(ctx, "gift.sent", telemetry.SeverityInfo, map[string]string{
		"recipient": recipient,
		"channel":   "manual",
	})
	return true
}

func (s *Service) emitFailure(ctx context.Context, recipient, reason string) {
	attributes := map[string]string{"reason": reason}
	if recipient != "" {
		attributes["recipient"] = recipient
	}
	s.cfg.Emitter.Emit(ctx, "gift.failed", telemetry.SeverityError, attributes)
}

func (s *Service) now() int64 {
	if s.cfg.Now != nil {
		return s.cfg.Now()
	}
	return time.Now().Unix()
}
