package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
	"github.com/gratefulday/gratefulday.space/internal/nostr/nip04"
	"github.com/gratefulday/gratefulday.space/internal/platform/timeouts"
)

// WalletRelay is the relay access the wallet-connect channel needs: request
// publication and a blocking wait for the wallet's response event.
type WalletRelay interface {
	Publish(ctx context.Context, event nostr.Event, relays ...string) error
	WaitForEvent(ctx context.Context, filter nostr.Filter, relays ...string) (nostr.Event, error)
}

// WalletConnection is a parsed wallet-connect pairing.
type WalletConnection struct {
	WalletPubKey string
	Relay        string
	Secret       string
}

// ParseWalletConnectURL parses a nostr+walletconnect:// pairing URL.
func ParseWalletConnectURL(raw string) (WalletConnection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return WalletConnection{}, fmt.Errorf("wallet connect url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return WalletConnection{}, fmt.Errorf("parse wallet connect url: %w", err)
	}
	if parsed.Scheme != "nostr+walletconnect" {
		return WalletConnection{}, fmt.Errorf("unexpected scheme %q", parsed.Scheme)
	}

	pubkey := parsed.Host
	if pubkey == "" {
		pubkey = parsed.Opaque
	}
	if pubkey == "" {
		return WalletConnection{}, fmt.Errorf("wallet pubkey is missing")
	}

	query := parsed.Query()
	relay := query.Get("relay")
	if relay == "" {
		return WalletConnection{}, fmt.Errorf("relay parameter is missing")
	}
	secret := query.Get("secret")
	if secret == "" {
		return WalletConnection{}, fmt.Errorf("secret parameter is missing")
	}

	return WalletConnection{WalletPubKey: pubkey, Relay: relay, Secret: secret}, nil
}

type walletRequest struct {
	Method string       `json:"method"`
	Params walletParams `json:"params"`
}

type walletParams struct {
	Invoice string `json:"invoice"`
}

type walletResponse struct {
	ResultType string       `json:"result_type"`
	Error      *walletError `json:"error"`
}

type walletError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NWCChannel pays invoices through a remote wallet paired over
// nostr-wallet-connect. It talks to the connection's dedicated relay, not
// the user's publish relays.
type NWCChannel struct {
	relay WalletRelay
	conn  WalletConnection
	// now is swapped in tests.
	now func() time.Time
}

// NewNWCChannel creates the wallet-connect channel. An empty pairing URL
// yields a channel that reports unavailable.
func NewNWCChannel(relay WalletRelay, pairingURL string) (*NWCChannel, error) {
	if strings.TrimSpace(pairingURL) == "" {
		return &NWCChannel{relay: relay, now: time.Now}, nil
	}
	conn, err := ParseWalletConnectURL(pairingURL)
	if err != nil {
		return nil, err
	}
	return &NWCChannel{relay: relay, conn: conn, now: time.Now}, nil
}

// Name implements Channel.
func (c *NWCChannel) Name() string { return "nwc" }

// Available implements Channel.
func (c *NWCChannel) Available() bool {
	return c != nil && c.relay != nil && c.conn.WalletPubKey != "" && c.conn.Relay != "" && c.conn.Secret != ""
}

// Pay publishes an encrypted pay_invoice request and waits for the wallet's
// response event.
func (c *NWCChannel) Pay(ctx context.Context, invoice string) (Confirmation, error) {
	if !c.Available() {
		return 0, fmt.Errorf("wallet connection is not configured")
	}

	payCtx, cancel := context.WithTimeout(ctx, timeouts.WalletPayment)
	defer cancel()

	payload, err := json.Marshal(walletRequest{Method: "pay_invoice", Params: walletParams{Invoice: invoice}})
	if err != nil {
		return 0, fmt.Errorf("marshal wallet request: %w", err)
	}
	sharedSecret, err := nip04.SharedSecret(c.conn.Secret, c.conn.WalletPubKey)
	if err != nil {
		return 0, fmt.Errorf("derive shared secret: %w", err)
	}
	content, err := nip04.Encrypt(string(payload), sharedSecret)
	if err != nil {
		return 0, fmt.Errorf("encrypt wallet request: %w", err)
	}

	signer, err := nostr.NewKeySigner(c.conn.Secret)
	if err != nil {
		return 0, fmt.Errorf("wallet connection secret: %w", err)
	}
	request := nostr.Event{
		CreatedAt: c.now().Unix(),
		Kind:      nostr.KindWalletRequest,
		Tags:      [][]string{{"p", c.conn.WalletPubKey}},
		Content:   content,
	}
	if err := signer.SignEvent(payCtx, &request); err != nil {
		return 0, err
	}

	if err := c.relay.Publish(payCtx, request, c.conn.Relay); err != nil {
		return 0, fmt.Errorf("publish wallet request: %w", err)
	}

	response, err := c.relay.WaitForEvent(payCtx, nostr.Filter{
		Kinds:   []int{nostr.KindWalletResponse},
		Authors: []string{c.conn.WalletPubKey},
		Events:  []string{request.ID},
	}, c.conn.Relay)
	if err != nil {
		return 0, fmt.Errorf("await wallet response: %w", err)
	}

	decrypted, err := nip04.Decrypt(response.Content, sharedSecret)
	if err != nil {
		return 0, fmt.Errorf("decrypt wallet response: %w", err)
	}
	var decoded walletResponse
	if err := json.Unmarshal([]byte(decrypted), &decoded); err != nil {
		return 0, fmt.Errorf("decode wallet response: %w", err)
	}
	if decoded.Error != nil {
		return 0, fmt.Errorf("wallet refused payment: %s (%s)", decoded.Error.Message, decoded.Error.Code)
	}
	return ConfirmationConfirmed, nil
}
