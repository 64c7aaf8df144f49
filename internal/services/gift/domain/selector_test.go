package domain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
)

type fakeClient struct {
	mu        sync.Mutex
	responses map[int][]nostr.Event
	queryErr  map[int]error
	filters   []nostr.Filter
	published []nostr.Event
}

func (f *fakeClient) Query(ctx context.Context, filter nostr.Filter) ([]nostr.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if len(filter.Kinds) == 0 {
		return nil, nil
	}
	kind := filter.Kinds[0]
	if err := f.queryErr[kind]; err != nil {
		return nil, err
	}
	return f.responses[kind], nil
}

func (f *fakeClient) Publish(ctx context.Context, event nostr.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
	return nil
}

func (f *fakeClient) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakeClient) queriedKind(kind int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, filter := range f.filters {
		for _, k := range filter.Kinds {
			if k == kind {
				return true
			}
		}
	}
	return false
}

func noteEvent(pubkey string) nostr.Event {
	return nostr.Event{PubKey: pubkey, Kind: nostr.KindTextNote, Content: "gm"}
}

func profileEvent(pubkey, content string) nostr.Event {
	return nostr.Event{PubKey: pubkey, Kind: nostr.KindProfileMetadata, Content: content}
}

func TestSelectorPicksQualifyingCandidate(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: map[int][]nostr.Event{
		nostr.KindTextNote: {noteEvent("alice"), noteEvent("bob")},
		nostr.KindProfileMetadata: {
			profileEvent("alice", `{"name":"Alice","lud16":"alice@example.com"}`),
			profileEvent("bob", `{"name":"Bob"}`),
		},
	}}
	selector := NewSelector(client, nil, nil, "self")

	candidate, ok, err := selector.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatal("expected a candidate")
	}
	if candidate.PubKey != "alice" {
		t.Fatalf("expected alice, got %q", candidate.PubKey)
	}
	if candidate.Profile.Lud16 != "alice@example.com" {
		t.Fatalf("expected lightning address, got %q", candidate.Profile.Lud16)
	}
}

func TestSelectorExcludesRecentRecipients(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: map[int][]nostr.Event{
		nostr.KindTextNote: {noteEvent("alice"), noteEvent("bob")},
		nostr.KindProfileMetadata: {
			profileEvent("alice", `{"lud16":"alice@example.com"}`),
			profileEvent("bob", `{"lud16":"bob@example.com"}`),
		},
	}}
	history := NewHistory(&fakeHistoryStore{pubkeys: []string{"alice"}})
	selector := NewSelector(client, history, nil, "self")

	candidate, ok, err := selector.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatal("expected a candidate")
	}
	if candidate.PubKey != "bob" {
		t.Fatalf("expected bob, got %q", candidate.PubKey)
	}
}

func TestSelectorRelaxesExclusionWhenPoolEmpty(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: map[int][]nostr.Event{
		nostr.KindTextNote: {noteEvent("alice")},
		nostr.KindProfileMetadata: {
			profileEvent("alice", `{"lud16":"alice@example.com"}`),
		},
	}}
	history := NewHistory(&fakeHistoryStore{pubkeys: []string{"alice"}})
	selector := NewSelector(client, history, nil, "self")

	candidate, ok, err := selector.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatal("expected relaxation to yield a candidate")
	}
	if candidate.PubKey != "alice" {
		t.Fatalf("expected alice via relaxation, got %q", candidate.PubKey)
	}
}

func TestSelectorExcludeAdditionalReplacesHistory(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: map[int][]nostr.Event{
		nostr.KindTextNote: {noteEvent("alice"), noteEvent("bob")},
		nostr.KindProfileMetadata: {
			profileEvent("alice", `{"lud16":"alice@example.com"}`),
			profileEvent("bob", `{"lud16":"bob@example.com"}`),
		},
	}}
	history := NewHistory(&fakeHistoryStore{pubkeys: []string{"alice"}})
	selector := NewSelector(client, history, nil, "self")

	candidate, ok, err := selector.Select(context.Background(), "bob")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatal("expected a candidate")
	}
	if candidate.PubKey != "alice" {
		t.Fatalf("expected alice, got %q", candidate.PubKey)
	}
}

func TestSelectorSkipsSelfBotsAndMalformedProfiles(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: map[int][]nostr.Event{
		nostr.KindTextNote: {noteEvent("self"), noteEvent("bot"), noteEvent("broken")},
		nostr.KindProfileMetadata: {
			profileEvent("bot", `{"nip05":"feed@news.example","lud16":"feed@example.com"}`),
			profileEvent("broken", `{not json`),
		},
	}}
	selector := NewSelector(client, nil, nil, "self")

	_, ok, err := selector.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatal("expected no candidate")
	}
}

func TestSelectorSkipsZapActivityWithoutCandidates(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: map[int][]nostr.Event{
		nostr.KindTextNote: {noteEvent("alice")},
		nostr.KindProfileMetadata: {
			profileEvent("alice", `{"name":"Alice"}`),
		},
	}}
	selector := NewSelector(client, nil, nil, "self")

	_, ok, err := selector.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatal("expected no candidate")
	}
	if client.queriedKind(nostr.KindZapRequest) {
		t.Fatal("expected no zap activity query without candidates")
	}
}

func TestSelectorReturnsEmptyWhenNoNotes(t *testing.T) {
	t.Parallel()

	client := &fakeClient{responses: map[int][]nostr.Event{}}
	selector := NewSelector(client, nil, nil, "self")

	_, ok, err := selector.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatal("expected no candidate")
	}
}

func TestSelectorSurfacesQueryError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{queryErr: map[int]error{
		nostr.KindTextNote: errors.New("relay unreachable"),
	}}
	selector := NewSelector(client, nil, nil, "self")

	_, _, err := selector.Select(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
}
