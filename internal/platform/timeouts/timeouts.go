// Package timeouts defines shared timeout constants used across the gift
// pipeline. Centralizing these values prevents drift between network
// boundaries and makes the durations discoverable.
package timeouts

import "time"

// RelayQuery caps the wait time for a single relay query round
// (recent notes, profile metadata, zap activity).
const RelayQuery = 5 * time.Second

// ReceiptPublish caps the wait time when announcing a paid zap request
// back to the relays.
const ReceiptPublish = 5 * time.Second

// InvoiceRequest caps the HTTP round trip to a recipient's LNURL pay
// endpoint when requesting an invoice.
const InvoiceRequest = 10 * time.Second

// StatusCheck caps the HTTP round trip for the best-effort invoice
// status probe.
const StatusCheck = 5 * time.Second

// WalletPayment caps the wait time for a wallet-connect payment round
// trip, request publication through response receipt.
const WalletPayment = 10 * time.Second
