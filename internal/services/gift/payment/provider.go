package payment

import (
	"context"
	"fmt"
	"log"
)

// Provider is an in-process wallet API capable of paying invoices directly,
// such as a wallet daemon exposed to the host. It mirrors the
// enable-then-send shape of browser-injected wallets.
type Provider interface {
	Enable(ctx context.Context) error
	SendPayment(ctx context.Context, invoice string) error
}

// ProviderChannel pays through an injected wallet provider.
type ProviderChannel struct {
	provider Provider
}

// NewProviderChannel wraps a provider. A nil provider yields a channel that
// reports unavailable.
func NewProviderChannel(provider Provider) *ProviderChannel {
	return &ProviderChannel{provider: provider}
}

// Name implements Channel.
func (c *ProviderChannel) Name() string { return "provider" }

// Available implements Channel.
func (c *ProviderChannel) Available() bool {
	return c != nil && c.provider != nil
}

// Pay authorizes the provider and sends the payment. An enable failure is
// tolerated; the send still runs against the original provider.
func (c *ProviderChannel) Pay(ctx context.Context, invoice string) (Confirmation, error) {
	if !c.Available() {
		return 0, fmt.Errorf("wallet provider is not configured")
	}
	if err := c.provider.Enable(ctx); err != nil {
		log.Printf("wallet provider enable failed, continuing: %v", err)
	}
	if err := c.provider.SendPayment(ctx, invoice); err != nil {
		return 0, fmt.Errorf("provider payment: %w", err)
	}
	return ConfirmationConfirmed, nil
}
