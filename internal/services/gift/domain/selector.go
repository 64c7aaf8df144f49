package domain

import (
	"context"
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
	"github.com/gratefulday/gratefulday.space/internal/platform/timeouts"
	"github.com/gratefulday/gratefulday.space/internal/random"
	"github.com/gratefulday/gratefulday.space/internal/telemetry"
)

// Client queries and publishes events on the relay network.
type Client interface {
	Query(ctx context.Context, filter nostr.Filter) ([]nostr.Event, error)
	Publish(ctx context.Context, event nostr.Event) error
}

const (
	noteQueryLimit    = 50
	zapActivityLimit  = 5000
	zapActivityWindow = 30 * 24 * time.Hour
)

// Selector picks a gift recipient from recent network activity. Recipients
// in the recent history are excluded unless no other candidate qualifies.
type Selector struct {
	client  Client
	history *History
	emitter *telemetry.Emitter
	self    string
	rng     *rand.Rand
	now     func() time.Time
}

// NewSelector creates a selector for the given identity. The history and
// emitter may be nil.
func NewSelector(client Client, history *History, emitter *telemetry.Emitter, self string) *Selector {
	seed, err := random.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return &Selector{
		client:  client,
		history: history,
		emitter: emitter,
		self:    self,
		rng:     rand.New(rand.NewSource(seed)),
		now:     time.Now,
	}
}

// Select returns a candidate recipient, or false when no candidate
// qualifies. When excludeAdditional is non-empty it replaces the persisted
// history as the exclusion set.
func (s *Selector) Select(ctx context.Context, excludeAdditional string) (Candidate, bool, error) {
	excluded := make(map[string]bool)
	if excludeAdditional != "" {
		excluded[excludeAdditional] = true
	} else if s.history != nil {
		for _, pubkey := range s.history.Recent(ctx) {
			excluded[pubkey] = true
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, timeouts.RelayQuery)
	defer cancel()

	notes, err := s.client.Query(queryCtx, nostr.Filter{
		Kinds: []int{nostr.KindTextNote},
		Limit: noteQueryLimit,
	})
	if err != nil {
		return Candidate{}, false, err
	}
	if len(notes) == 0 {
		return Candidate{}, false, nil
	}

	authors := make([]string, 0, len(notes))
	seen := make(map[string]bool)
	for _, note := range notes {
		if note.PubKey == "" || note.PubKey == s.self || seen[note.PubKey] {
			continue
		}
		seen[note.PubKey] = true
		authors = append(authors, note.PubKey)
	}
	if len(authors) == 0 {
		return Candidate{}, false, nil
	}

	profileCtx, cancelProfiles := context.WithTimeout(ctx, timeouts.RelayQuery)
	defer cancelProfiles()

	profiles, err := s.client.Query(profileCtx, nostr.Filter{
		Kinds:   []int{nostr.KindProfileMetadata},
		Authors: authors,
		Limit:   len(authors),
	})
	if err != nil {
		return Candidate{}, false, err
	}

	byAuthor := make(map[string]nostr.Event, len(profiles))
	for _, profile := range profiles {
		if _, ok := byAuthor[profile.PubKey]; !ok {
			byAuthor[profile.PubKey] = profile
		}
	}

	var qualifying, relaxed []Candidate
	for _, author := range authors {
		event, ok := byAuthor[author]
		if !ok {
			continue
		}
		profile, err := ParseProfile(event.Content)
		if err != nil {
			continue
		}
		if profile.LightningAddress() == "" || IsBot(profile.NIP05, profile.LightningAddress()) {
			continue
		}
		candidate := Candidate{PubKey: author, ProfileEvent: event, Profile: profile}
		if excluded[author] {
			relaxed = append(relaxed, candidate)
		} else {
			qualifying = append(qualifying, candidate)
		}
	}

	if len(qualifying) == 0 && len(relaxed) == 0 {
		return Candidate{}, false, nil
	}

	s.recordZapActivity(ctx)

	// When exclusions empty the pool, a repeat recipient beats none at all.
	if len(qualifying) == 0 && len(excluded) > 0 {
		qualifying = relaxed
	}
	if len(qualifying) == 0 {
		return Candidate{}, false, nil
	}

	chosen := qualifying[s.rng.Intn(len(qualifying))]
	s.emitter.Emit(ctx, "gift.selected", telemetry.SeverityInfo, map[string]string{
		"recipient": chosen.PubKey,
	})
	return chosen, true, nil
}

// recordZapActivity samples recent payment-request volume in the background.
// The result feeds telemetry only and never gates selection.
func (s *Selector) recordZapActivity(ctx context.Context) {
	since := s.now().Add(-zapActivityWindow).Unix()
	go func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.RelayQuery)
		defer cancel()

		zaps, err := s.client.Query(bgCtx, nostr.Filter{
			Kinds: []int{nostr.KindZapRequest},
			Since: &since,
			Limit: zapActivityLimit,
		})
		if err != nil {
			log.Printf("zap activity query: %v", err)
			return
		}
		s.emitter.Emit(bgCtx, "gift.zap_activity", telemetry.SeverityInfo, map[string]string{
			"count": strconv.Itoa(len(zaps)),
		})
	}()
}
