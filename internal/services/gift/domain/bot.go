package domain

import "strings"

// IsBot reports whether a profile looks like an automated or news account,
// based on "bot" and "news" markers in its NIP-05 identifier or lightning
// address. It is a textual heuristic with no false-negative guarantee.
func IsBot(nip05, lightningAddress string) bool {
	nip05 = strings.ToLower(nip05)
	lightningAddress = strings.ToLower(lightningAddress)
	return strings.Contains(nip05, "bot") ||
		strings.Contains(nip05, "news") ||
		strings.Contains(lightningAddress, "bot")
}
