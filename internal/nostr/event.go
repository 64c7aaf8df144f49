// Package nostr implements the minimal Nostr event model the gift pipeline
// depends on: canonical event serialization, schnorr signing, and query
// filters. It is not a general-purpose protocol library.
package nostr

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Event kinds used by the gift pipeline.
const (
	KindProfileMetadata = 0
	KindTextNote        = 1
	KindZapRequest      = 9734
	KindWalletRequest   = 23194
	KindWalletResponse  = 23195
)

// Event is a signed Nostr event.
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Serialize returns the canonical serialization used for event IDs:
// a JSON array [0, pubkey, created_at, kind, tags, content] with HTML
// escaping disabled.
func (e Event) Serialize() ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = [][]string{}
	}
	payload := []any{0, e.PubKey, e.CreatedAt, e.Kind, tags, e.Content}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("serialize event: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ComputeID returns the hex-encoded SHA-256 digest of the canonical
// serialization.
func (e Event) ComputeID() (string, error) {
	serialized, err := e.Serialize()
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(serialized)
	return hex.EncodeToString(digest[:]), nil
}

// TagValue returns the second element of the first tag with the given name.
func (e Event) TagValue(name string) (string, bool) {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1], true
		}
	}
	return "", false
}

// Filter selects events by kind, author, referenced event, and recency.
// The zero value matches everything a relay is willing to send.
type Filter struct {
	IDs     []string `json:"ids,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Events  []string `json:"#e,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}
