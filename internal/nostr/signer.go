package nostr

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Signer authorizes events on behalf of the current user. Implementations
// must set PubKey, ID, and Sig on the draft in place.
type Signer interface {
	PublicKey() string
	SignEvent(ctx context.Context, event *Event) error
}

// KeySigner signs events with a locally held secret key.
type KeySigner struct {
	secret *btcec.PrivateKey
	pubkey string
}

// NewKeySigner creates a signer from a hex-encoded 32-byte secret key.
func NewKeySigner(secretHex string) (*KeySigner, error) {
	secretHex = strings.TrimSpace(secretHex)
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(raw))
	}
	secret, pub := btcec.PrivKeyFromBytes(raw)
	return &KeySigner{
		secret: secret,
		pubkey: hex.EncodeToString(schnorr.SerializePubKey(pub)),
	}, nil
}

// PublicKey returns the hex-encoded x-only public key.
func (s *KeySigner) PublicKey() string {
	if s == nil {
		return ""
	}
	return s.pubkey
}

// SignEvent stamps the author, computes the event ID, and attaches a
// schnorr signature.
func (s *KeySigner) SignEvent(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.secret == nil {
		return fmt.Errorf("signer is not configured")
	}
	if event == nil {
		return fmt.Errorf("event is required")
	}

	event.PubKey = s.pubkey
	id, err := event.ComputeID()
	if err != nil {
		return err
	}
	event.ID = id

	digest, err := hex.DecodeString(id)
	if err != nil {
		return fmt.Errorf("decode event id: %w", err)
	}
	sig, err := schnorr.Sign(s.secret, digest)
	if err != nil {
		return fmt.Errorf("sign event: %w", err)
	}
	event.Sig = hex.EncodeToString(sig.Serialize())
	return nil
}

// VerifyEvent reports whether the event ID matches its serialization and the
// signature verifies against the author key.
func VerifyEvent(event Event) error {
	id, err := event.ComputeID()
	if err != nil {
		return err
	}
	if id != event.ID {
		return fmt.Errorf("event id mismatch")
	}

	pubRaw, err := hex.DecodeString(event.PubKey)
	if err != nil {
		return fmt.Errorf("decode pubkey: %w", err)
	}
	pub, err := schnorr.ParsePubKey(pubRaw)
	if err != nil {
		return fmt.Errorf("parse pubkey: %w", err)
	}
	sigRaw, err := hex.DecodeString(event.Sig)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	sig, err := schnorr.ParseSignature(sigRaw)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}
	digest, err := hex.DecodeString(id)
	if err != nil {
		return fmt.Errorf("decode event id: %w", err)
	}
	if !sig.Verify(digest, pub) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}
