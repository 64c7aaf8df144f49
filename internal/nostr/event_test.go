package nostr

import (
	"context"
	"strings"
	"testing"
)

func TestSerializeCanonicalForm(t *testing.T) {
	t.Parallel()

	event := Event{
		PubKey:    "ab",
		CreatedAt: 1700000000,
		Kind:      KindTextNote,
		Tags:      [][]string{{"p", "cd"}},
		Content:   `grateful & <thankful>`,
	}

	serialized, err := event.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got := string(serialized)
	want := `[0,"ab",1700000000,1,[["p","cd"]],"grateful & <thankful>"]`
	if got != want {
		t.Fatalf("expected canonical form %s, got %s", want, got)
	}
}

func TestSerializeNilTagsAsEmptyArray(t *testing.T) {
	t.Parallel()

	serialized, err := Event{Kind: KindTextNote}.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(string(serialized), ",[],") {
		t.Fatalf("expected empty tag array in %s", serialized)
	}
}

func TestKeySignerSignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewKeySigner(strings.Repeat("01", 32))
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	if signer.PublicKey() == "" {
		t.Fatal("expected derived public key")
	}

	event := Event{
		CreatedAt: 1700000000,
		Kind:      KindZapRequest,
		Tags:      [][]string{{"p", "cd"}, {"amount", "100000"}},
		Content:   "a gift",
	}
	if err := signer.SignEvent(context.Background(), &event); err != nil {
		t.Fatalf("sign event: %v", err)
	}
	if event.ID == "" || event.Sig == "" {
		t.Fatal("expected id and signature to be set")
	}
	if event.PubKey != signer.PublicKey() {
		t.Fatalf("expected author %q, got %q", signer.PublicKey(), event.PubKey)
	}
	if err := VerifyEvent(event); err != nil {
		t.Fatalf("verify signed event: %v", err)
	}
}

func TestVerifyEventRejectsTamperedContent(t *testing.T) {
	t.Parallel()

	signer, err := NewKeySigner(strings.Repeat("02", 32))
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	event := Event{CreatedAt: 1700000000, Kind: KindTextNote, Content: "original"}
	if err := signer.SignEvent(context.Background(), &event); err != nil {
		t.Fatalf("sign event: %v", err)
	}

	event.Content = "tampered"
	if err := VerifyEvent(event); err == nil {
		t.Fatal("expected verification failure for tampered content")
	}
}

func TestNewKeySignerRejectsBadKeys(t *testing.T) {
	t.Parallel()

	if _, err := NewKeySigner("zz"); err == nil {
		t.Fatal("expected error for non-hex secret")
	}
	if _, err := NewKeySigner("0102"); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestTagValue(t *testing.T) {
	t.Parallel()

	event := Event{Tags: [][]string{{"relays", "wss://a"}, {"p", "cd"}, {"p", "ef"}}}
	value, ok := event.TagValue("p")
	if !ok || value != "cd" {
		t.Fatalf("expected first p tag cd, got %q (ok=%v)", value, ok)
	}
	if _, ok := event.TagValue("amount"); ok {
		t.Fatal("expected missing tag to report false")
	}
}
