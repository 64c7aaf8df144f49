// Package domain implements the gratitude-gift pipeline: recipient
// selection, zap request construction, payment dispatch, and receipt
// publication.
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
)

// Profile is the decoded payload of a profile metadata event. Only the
// fields the pipeline reads are modeled; absent fields decode to empty
// strings.
type Profile struct {
	Name  string `json:"name,omitempty"`
	NIP05 string `json:"nip05,omitempty"`
	Lud16 string `json:"lud16,omitempty"`
	Lud06 string `json:"lud06,omitempty"`
}

// ParseProfile decodes a profile metadata content payload.
func ParseProfile(content string) (Profile, error) {
	var profile Profile
	if err := json.Unmarshal([]byte(content), &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile content: %w", err)
	}
	return profile, nil
}

// LightningAddress returns the profile's payment address, preferring lud16.
func (p Profile) LightningAddress() string {
	if p.Lud16 != "" {
		return p.Lud16
	}
	return p.Lud06
}

// Candidate is one potential gift recipient discovered during a selection
// round. Candidates are ephemeral; only the chosen pubkey is persisted.
type Candidate struct {
	PubKey       string
	ProfileEvent nostr.Event
	Profile      Profile
}
