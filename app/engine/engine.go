package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"yad2watch/app/listing"
	"yad2watch/app/search"
	"yad2watch/app/store"
	"yad2watch/app/yad2"
)

type FeedFetcher interface {
	FetchAll(ctx context.Context, profile *search.Config) ([]yad2.RawListing, error)
}

type Notifier interface {
	NotifyNew(ctx context.Context, key string, l listing.Listing) error
	NotifyPriceChange(ctx context.Context, key string, l listing.Listing, oldPrice int) error
	NotifyRepost(ctx context.Context, key string, l listing.Listing, matchedKey string, matched listing.Listing) error
}

// Stats counts the outcomes of one reconcile cycle.
type Stats struct {
	Fetched      int `json:"fetched"`
	New          int `json:"new"`
	PriceChanged int `json:"price_changed"`
	Reposts      int `json:"reposts"`
	Unchanged    int `json:"unchanged"`
	Skipped      int `json:"skipped"`
}

// Engine reconciles fetched listings against the seen store and emits
// notifications for the differences. Cycles are serialized by a mutex so the
// repost match and the subsequent insert are atomic with respect to other
// cycles.
type Engine struct {
	fetcher  FeedFetcher
	resolver *Resolver
	matcher  *listing.Matcher
	seen     *store.SeenStore
	notifier Notifier

	mu sync.Mutex

	statsMu     sync.Mutex
	totals      Stats
	cycles      int
	lastCycleAt time.Time
}

func New(fetcher FeedFetcher, resolver *Resolver, matcher *listing.Matcher, seen *store.SeenStore, notifier Notifier) *Engine {
	return &Engine{
		fetcher:  fetcher,
		resolver: resolver,
		matcher:  matcher,
		seen:     seen,
		notifier: notifier,
	}
}

// RunCycle fetches all pages for one search profile and reconciles each
// listing against the seen store. When silent is set, the store is updated
// but no notifications go out; that is how the first run builds its baseline
// without flooding the chat.
//
// A persistence failure aborts the cycle. A notification failure is logged
// and the cycle continues: the store commit already happened, so the alert
// is simply lost rather than repeated.
func (e *Engine) RunCycle(ctx context.Context, profile *search.Config, silent bool) (Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stats Stats

	raws, err := e.fetcher.FetchAll(ctx, profile)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch listings: %w", err)
	}
	stats.Fetched = len(raws)

	if len(raws) == 0 {
		slog.Warn("No listings fetched", "search", profile.Name)
		e.record(stats)
		return stats, nil
	}

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if raw.Token == "" {
			stats.Skipped++
			continue
		}

		l := listing.FromRaw(raw)
		l.Phone = e.resolver.Resolve(ctx, raw.Token)
		key := listing.Key(raw.Token)

		if prev, ok := e.seen.Get(key); ok {
			if prev.Price == l.Price {
				stats.Unchanged++
				continue
			}

			if err := e.seen.Put(key, l); err != nil {
				return stats, fmt.Errorf("failed to persist listing: %w", err)
			}
			stats.PriceChanged++
			slog.Info("Price changed", "search", profile.Name, "key", key, "old_price", prev.Price, "new_price", l.Price)

			if !silent {
				if err := e.notifier.NotifyPriceChange(ctx, key, l, prev.Price); err != nil {
					slog.Error("Failed to send price change notification", "key", key, "error", err)
				}
			}
			continue
		}

		// The repost match has to run before the insert, otherwise the
		// candidate would match its own fresh record.
		matchedKey, matched := e.matcher.FindRepost(l, e.seen.Entries())

		if err := e.seen.Put(key, l); err != nil {
			return stats, fmt.Errorf("failed to persist listing: %w", err)
		}

		if matched != nil {
			stats.Reposts++
			slog.Info("Probable repost", "search", profile.Name, "key", key, "matched_key", matchedKey)

			if !silent {
				if err := e.notifier.NotifyRepost(ctx, key, l, matchedKey, *matched); err != nil {
					slog.Error("Failed to send repost notification", "key", key, "error", err)
				}
			}
			continue
		}

		stats.New++
		slog.Info("New listing", "search", profile.Name, "key", key, "price", l.Price)

		if !silent {
			if err := e.notifier.NotifyNew(ctx, key, l); err != nil {
				slog.Error("Failed to send new listing notification", "key", key, "error", err)
			}
		}
	}

	e.record(stats)
	return stats, nil
}

func (e *Engine) record(stats Stats) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	e.totals.Fetched += stats.Fetched
	e.totals.New += stats.New
	e.totals.PriceChanged += stats.PriceChanged
	e.totals.Reposts += stats.Reposts
	e.totals.Unchanged += stats.Unchanged
	e.totals.Skipped += stats.Skipped
	e.cycles++
	e.lastCycleAt = time.Now()
}

// Totals returns the accumulated stats since startup along with the cycle
// count and the time of the last completed cycle.
func (e *Engine) Totals() (Stats, int, time.Time) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.totals, e.cycles, e.lastCycleAt
}
