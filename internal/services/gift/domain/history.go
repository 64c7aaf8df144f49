package domain

import (
	"context"
	"log"
	"strings"

	"github.com/gratefulday/gratefulday.space/internal/services/gift/storage"
)

// maxRecentRecipients bounds the persisted recipient history.
const maxRecentRecipients = 5

// History remembers recent gift recipients so consecutive gifts spread
// across the network. Storage failures degrade to an empty history; this
// component never propagates an error to its caller.
type History struct {
	store storage.HistoryStore
}

// NewHistory creates a recipient history over the given store.
func NewHistory(store storage.HistoryStore) *History {
	return &History{store: store}
}

// Recent returns up to five recipient pubkeys, most recent first.
func (h *History) Recent(ctx context.Context) []string {
	if h == nil || h.store == nil {
		return nil
	}
	pubkeys, err := h.store.RecentRecipients(ctx)
	if err != nil {
		log.Printf("read recent recipients: %v", err)
		return nil
	}
	if len(pubkeys) > maxRecentRecipients {
		pubkeys = pubkeys[:maxRecentRecipients]
	}
	return pubkeys
}

// Record moves the pubkey to the front of the history, dropping any prior
// occurrence and truncating to the bound.
func (h *History) Record(ctx context.Context, pubkey string) {
	if h == nil || h.store == nil {
		return
	}
	pubkey = strings.TrimSpace(pubkey)
	if pubkey == "" {
		return
	}

	recent := h.Recent(ctx)
	updated := make([]string, 0, len(recent)+1)
	updated = append(updated, pubkey)
	for _, existing := range recent {
		if existing != pubkey {
			updated = append(updated, existing)
		}
	}
	if len(updated) > maxRecentRecipients {
		updated = updated[:maxRecentRecipients]
	}

	if err := h.store.PutRecentRecipients(ctx, updated); err != nil {
		log.Printf("save recent recipient: %v", err)
	}
}
