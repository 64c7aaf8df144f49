package domain

import (
	"strconv"
	"strings"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
)

const (
	defaultGratitudeMessage = "A small gift of gratitude from someone who appreciates you today. 💜"
	projectURL              = "https://gratefulday.space"
)

// GratitudeMessage returns the receipt message for a gift. An empty message
// falls back to the default, and the project link is appended unless the
// message already carries it.
func GratitudeMessage(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		message = defaultGratitudeMessage
	}
	if !strings.Contains(message, "gratefulday.space") {
		message += " " + projectURL
	}
	return message
}

// NewZapRequest builds an unsigned payment request event for the recipient.
// The amount tag carries millisatoshis.
func NewZapRequest(recipient string, amountMsats int64, message string, relays []string, createdAt int64) nostr.Event {
	relayTag := append([]string{"relays"}, relays...)
	return nostr.Event{
		CreatedAt: createdAt,
		Kind:      nostr.KindZapRequest,
		Tags: [][]string{
			relayTag,
			{"amount", strconv.FormatInt(amountMsats, 10)},
			{"p", recipient},
		},
		Content: GratitudeMessage(message),
	}
}
