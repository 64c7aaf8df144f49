// Package relay provides a websocket client pool speaking the Nostr relay
// protocol: REQ/EVENT/EOSE for queries and EVENT/OK for publication.
package relay

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
)

// Pool fans queries and publications out to a fixed set of relays. Calls may
// override the relay set per invocation, which the wallet-connect channel
// uses to talk to its dedicated relay.
type Pool struct {
	urls   []string
	dialer *websocket.Dialer
}

// NewPool creates a pool over the given relay URLs.
func NewPool(urls []string) (*Pool, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one relay url is required")
	}
	return &Pool{
		urls:   urls,
		dialer: websocket.DefaultDialer,
	}, nil
}

// Relays returns the default relay set.
func (p *Pool) Relays() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.urls))
	copy(out, p.urls)
	return out
}

// Query sends the filters to each relay, collects events until every relay
// reports end-of-stored-events or the context expires, and de-duplicates by
// event ID. Events with invalid signatures are dropped. A partial relay
// failure is tolerated as long as at least one relay answers.
func (p *Pool) Query(ctx context.Context, filters []nostr.Filter, relays ...string) ([]nostr.Event, error) {
	urls := p.resolve(relays)
	if len(urls) == 0 {
		return nil, fmt.Errorf("no relays configured")
	}

	var (
		mu      sync.Mutex
		byID    = make(map[string]nostr.Event)
		lastErr error
		okCount int
	)

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			events, err := p.queryRelay(ctx, url, filters)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = fmt.Errorf("query %s: %w", url, err)
				return
			}
			okCount++
			for _, event := range events {
				if _, seen := byID[event.ID]; !seen {
					byID[event.ID] = event
				}
			}
		}(url)
	}
	wg.Wait()

	if okCount == 0 {
		return nil, lastErr
	}
	out := make([]nostr.Event, 0, len(byID))
	for _, event := range byID {
		out = append(out, event)
	}
	return out, nil
}

// Publish sends the event to each relay and waits for an OK acknowledgment.
// It succeeds when at least one relay accepts the event.
func (p *Pool) Publish(ctx context.Context, event nostr.Event, relays ...string) error {
	urls := p.resolve(relays)
	if len(urls) == 0 {
		return fmt.Errorf("no relays configured")
	}

	var (
		mu       sync.Mutex
		accepted int
		lastErr  error
	)

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			err := p.publishRelay(ctx, url, event)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = fmt.Errorf("publish %s: %w", url, err)
				return
			}
			accepted++
		}(url)
	}
	wg.Wait()

	if accepted == 0 {
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("no relay accepted event %s", event.ID)
	}
	return nil
}

// WaitForEvent subscribes with the filter and returns the first matching
// event, waiting past end-of-stored-events until the context expires. The
// wallet-connect channel uses this to await payment responses, which relays
// treat as ephemeral.
func (p *Pool) WaitForEvent(ctx context.Context, filter nostr.Filter, relays ...string) (nostr.Event, error) {
	urls := p.resolve(relays)
	if len(urls) == 0 {
		return nostr.Event{}, fmt.Errorf("no relays configured")
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan nostr.Event, len(urls))
	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			event, err := p.waitRelay(waitCtx, url, filter)
			if err != nil {
				if waitCtx.Err() == nil {
					log.Printf("wait %s: %v", url, err)
				}
				return
			}
			select {
			case found <- event:
			default:
			}
		}(url)
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	select {
	case event, ok := <-found:
		if !ok {
			return nostr.Event{}, fmt.Errorf("no relay delivered a matching event")
		}
		return event, nil
	case <-ctx.Done():
		return nostr.Event{}, ctx.Err()
	}
}

func (p *Pool) resolve(override []string) []string {
	if len(override) > 0 {
		return override
	}
	if p == nil {
		return nil
	}
	return p.urls
}

func (p *Pool) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := p.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}
	// Unblock pending reads when the caller gives up.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return conn, nil
}

func (p *Pool) queryRelay(ctx context.Context, url string, filters []nostr.Filter) ([]nostr.Event, error) {
	conn, err := p.dial(ctx, url)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	subID, err := newSubscriptionID()
	if err != nil {
		return nil, err
	}
	req := []any{"REQ", subID}
	for _, filter := range filters {
		req = append(req, filter)
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send req: %w", err)
	}

	var events []nostr.Event
	for {
		label, payload, err := readFrame(conn)
		if err != nil {
			return nil, err
		}
		switch label {
		case "EVENT":
			if len(payload) < 2 {
				continue
			}
			var event nostr.Event
			if err := json.Unmarshal(payload[1], &event); err != nil {
				continue
			}
			if nostr.VerifyEvent(event) != nil {
				continue
			}
			events = append(events, event)
		case "EOSE", "CLOSED":
			_ = conn.WriteJSON([]any{"CLOSE", subID})
			return events, nil
		default:
			// NOTICE and unknown frames are ignored.
		}
	}
}

func (p *Pool) publishRelay(ctx context.Context, url string, event nostr.Event) error {
	conn, err := p.dial(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON([]any{"EVENT", event}); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	for {
		label, payload, err := readFrame(conn)
		if err != nil {
			return err
		}
		if label != "OK" || len(payload) < 3 {
			continue
		}
		var id string
		if err := json.Unmarshal(payload[1], &id); err != nil || id != event.ID {
			continue
		}
		var accepted bool
		if err := json.Unmarshal(payload[2], &accepted); err != nil {
			return fmt.Errorf("malformed ok frame: %w", err)
		}
		if !accepted {
			reason := ""
			if len(payload) > 3 {
				_ = json.Unmarshal(payload[3], &reason)
			}
			return fmt.Errorf("relay rejected event: %s", reason)
		}
		return nil
	}
}

func (p *Pool) waitRelay(ctx context.Context, url string, filter nostr.Filter) (nostr.Event, error) {
	conn, err := p.dial(ctx, url)
	if err != nil {
		return nostr.Event{}, err
	}
	defer conn.Close()

	subID, err := newSubscriptionID()
	if err != nil {
		return nostr.Event{}, err
	}
	if err := conn.WriteJSON([]any{"REQ", subID, filter}); err != nil {
		return nostr.Event{}, fmt.Errorf("send req: %w", err)
	}

	for {
		label, payload, err := readFrame(conn)
		if err != nil {
			return nostr.Event{}, err
		}
		switch label {
		case "EVENT":
			if len(payload) < 2 {
				continue
			}
			var event nostr.Event
			if err := json.Unmarshal(payload[1], &event); err != nil {
				continue
			}
			if nostr.VerifyEvent(event) != nil {
				continue
			}
			_ = conn.WriteJSON([]any{"CLOSE", subID})
			return event, nil
		case "CLOSED":
			return nostr.Event{}, fmt.Errorf("relay closed subscription")
		default:
			// EOSE is expected here; keep the subscription open.
		}
	}
}

func readFrame(conn *websocket.Conn) (string, []json.RawMessage, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", nil, fmt.Errorf("read frame: %w", err)
	}
	var payload []json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, fmt.Errorf("malformed frame: %w", err)
	}
	if len(payload) == 0 {
		return "", nil, fmt.Errorf("empty frame")
	}
	var label string
	if err := json.Unmarshal(payload[0], &label); err != nil {
		return "", nil, fmt.Errorf("malformed frame label: %w", err)
	}
	return label, payload, nil
}

func newSubscriptionID() (string, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate subscription id: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
