package domain

import (
	"context"
	"log"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
	"github.com/gratefulday/gratefulday.space/internal/platform/timeouts"
)

// Publisher sends signed receipt events to the relay network. Publication is
// best effort; a failed publish is logged and never fails the gift.
type Publisher struct {
	client Client
}

// NewPublisher creates a publisher over the given relay client.
func NewPublisher(client Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends the event, tolerating relay failures.
func (p *Publisher) Publish(ctx context.Context, event nostr.Event) {
	if p == nil || p.client == nil {
		return
	}
	publishCtx, cancel := context.WithTimeout(ctx, timeouts.ReceiptPublish)
	defer cancel()

	if err := p.client.Publish(publishCtx, event); err != nil {
		log.Printf("publish receipt: %v", err)
	}
}
