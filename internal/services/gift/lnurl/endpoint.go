// Package lnurl resolves lightning addresses to LNURL pay endpoints and
// requests invoices from them.
package lnurl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// ErrNoLightningAddress indicates a profile exposes no resolvable payment
// address.
var ErrNoLightningAddress = fmt.Errorf("no lightning address to resolve")

// ResolveEndpoint derives the pay endpoint URL for a profile's payment
// address. A lud16 address name@host maps to
// https://host/.well-known/lnurlp/name; a lud06 value is a bech32-encoded
// URL.
func ResolveEndpoint(lud16, lud06 string) (string, error) {
	lud16 = strings.TrimSpace(lud16)
	if lud16 != "" {
		return resolveLud16(lud16)
	}
	lud06 = strings.TrimSpace(lud06)
	if lud06 != "" {
		return resolveLud06(lud06)
	}
	return "", ErrNoLightningAddress
}

func resolveLud16(address string) (string, error) {
	name, host, found := strings.Cut(address, "@")
	if !found || name == "" || host == "" {
		return "", fmt.Errorf("malformed lightning address %q", address)
	}
	return fmt.Sprintf("https://%s/.well-known/lnurlp/%s", host, name), nil
}

func resolveLud06(encoded string) (string, error) {
	hrp, data, err := bech32.DecodeNoLimit(strings.ToLower(encoded))
	if err != nil {
		return "", fmt.Errorf("decode lnurl: %w", err)
	}
	if hrp != "lnurl" {
		return "", fmt.Errorf("unexpected lnurl prefix %q", hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("convert lnurl payload: %w", err)
	}

	endpoint := string(raw)
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse lnurl payload: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", fmt.Errorf("unsupported lnurl scheme %q", parsed.Scheme)
	}
	return endpoint, nil
}
