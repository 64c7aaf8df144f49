package domain

import "github.com/gratefulday/gratefulday.space/internal/nostr"

// Status describes how a gift attempt ended.
type Status string

const (
	StatusSuccess               Status = "success"
	StatusNeedsManualCompletion Status = "needs_manual_completion"
	StatusFailed                Status = "failed"
)

// Outcome is the result handed back to the caller after a gift attempt.
// When manual completion is needed it carries everything required to later
// verify the payment and publish the receipt.
type Outcome struct {
	Status     Status
	Channel    string
	Recipient  string
	Invoice    string
	Endpoint   string
	ZapRequest nostr.Event
	Reason     string
}
