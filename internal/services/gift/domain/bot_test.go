package domain

import "testing"

func TestIsBot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		nip05            string
		lightningAddress string
		want             bool
	}{
		{"news domain", "alice@news.example", "", true},
		{"plain human", "alice@example.com", "tip@getalby.com", false},
		{"bot wallet address", "", "mybot@wallet.com", true},
		{"uppercase bot", "ROBOT@example.com", "", true},
		{"empty profile", "", "", false},
		{"bot in nip05 name", "newsfeed@example.com", "tip@getalby.com", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsBot(tc.nip05, tc.lightningAddress); got != tc.want {
				t.Fatalf("expected IsBot(%q, %q) = %v, got %v", tc.nip05, tc.lightningAddress, tc.want, got)
			}
		})
	}
}
