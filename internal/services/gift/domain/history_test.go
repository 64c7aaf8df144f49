package domain

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeHistoryStore struct {
	pubkeys []string
	readErr error
	putErr  error
	puts    int
}

func (f *fakeHistoryStore) RecentRecipients(ctx context.Context) ([]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.pubkeys, nil
}

func (f *fakeHistoryStore) PutRecentRecipients(ctx context.Context, pubkeys []string) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.pubkeys = pubkeys
	return nil
}

func TestHistoryRecordPrepends(t *testing.T) {
	t.Parallel()

	store := &fakeHistoryStore{pubkeys: []string{"b", "c"}}
	history := NewHistory(store)

	history.Record(context.Background(), "a")

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(store.pubkeys, want) {
		t.Fatalf("expected history %v, got %v", want, store.pubkeys)
	}
}

func TestHistoryRecordMovesExistingToFront(t *testing.T) {
	t.Parallel()

	store := &fakeHistoryStore{pubkeys: []string{"a", "b", "c"}}
	history := NewHistory(store)

	history.Record(context.Background(), "c")

	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(store.pubkeys, want) {
		t.Fatalf("expected history %v, got %v", want, store.pubkeys)
	}
}

func TestHistoryRecordTruncatesToBound(t *testing.T) {
	t.Parallel()

	store := &fakeHistoryStore{pubkeys: []string{"a", "b", "c", "d", "e"}}
	history := NewHistory(store)

	history.Record(context.Background(), "f")

	want := []string{"f", "a", "b", "c", "d"}
	if !reflect.DeepEqual(store.pubkeys, want) {
		t.Fatalf("expected history %v, got %v", want, store.pubkeys)
	}
}

func TestHistoryRecordIgnoresBlankPubkey(t *testing.T) {
	t.Parallel()

	store := &fakeHistoryStore{}
	history := NewHistory(store)

	history.Record(context.Background(), "  ")

	if store.puts != 0 {
		t.Fatalf("expected no writes, got %d", store.puts)
	}
}

func TestHistorySwallowsStoreFailures(t *testing.T) {
	t.Parallel()

	store := &fakeHistoryStore{
		readErr: errors.New("disk gone"),
		putErr:  errors.New("disk gone"),
	}
	history := NewHistory(store)

	if got := history.Recent(context.Background()); got != nil {
		t.Fatalf("expected nil history on read failure, got %v", got)
	}
	history.Record(context.Background(), "a")
}

func TestHistoryRecentCapsStoredList(t *testing.T) {
	t.Parallel()

	store := &fakeHistoryStore{pubkeys: []string{"a", "b", "c", "d", "e", "f", "g"}}
	history := NewHistory(store)

	got := history.Recent(context.Background())
	if len(got) != maxRecentRecipients {
		t.Fatalf("expected %d entries, got %d", maxRecentRecipients, len(got))
	}
}
