// Package payment dispatches an invoice across an ordered chain of payment
// channels, falling through on channel failure.
package payment

import (
	"context"
	"log"
	"strings"
)

// Confirmation describes how far a channel carried the payment.
type Confirmation int

const (
	// ConfirmationConfirmed means the channel observed the payment settle.
	ConfirmationConfirmed Confirmation = iota
	// ConfirmationLaunched means the channel handed the invoice to an
	// external application whose completion is not observable here.
	ConfirmationLaunched
)

// Channel is one ordered payment attempt strategy.
type Channel interface {
	Name() string
	Available() bool
	Pay(ctx context.Context, invoice string) (Confirmation, error)
}

// Result is the dispatch outcome. When neither Confirmed nor Launched is set
// no channel could take the invoice and the caller must offer manual
// payment.
type Result struct {
	Confirmed bool
	Launched  bool
	Channel   string
}

// Dispatcher tries channels strictly in construction order.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a dispatcher over the given channels. Nil entries
// are skipped so callers can pass optionally configured channels directly.
func NewDispatcher(channels ...Channel) *Dispatcher {
	kept := make([]Channel, 0, len(channels))
	for _, channel := range channels {
		if channel != nil {
			kept = append(kept, channel)
		}
	}
	return &Dispatcher{channels: kept}
}

// Dispatch attempts payment on each available channel in order,
// short-circuiting on the first channel that confirms or launches. A channel
// error degrades to trying the next channel; it never aborts the dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, invoice string) Result {
	if d == nil || strings.TrimSpace(invoice) == "" {
		return Result{}
	}

	for _, channel := range d.channels {
		if !channel.Available() {
			continue
		}
		confirmation, err := channel.Pay(ctx, invoice)
		if err != nil {
			log.Printf("payment via %s failed, falling through: %v", channel.Name(), err)
			continue
		}
		switch confirmation {
		case ConfirmationConfirmed:
			return Result{Confirmed: true, Channel: channel.Name()}
		case ConfirmationLaunched:
			return Result{Launched: true, Channel: channel.Name()}
		}
	}
	return Result{}
}
