package engine

import (
	"context"
	"log/slog"

	"yad2watch/app/store"
)

type ContactFetcher interface {
	FetchContact(ctx context.Context, token string) (string, error)
}

// Resolver answers phone lookups cache-first. Every upstream outcome is
// cached, including "no phone on record", so each token costs at most one
// contact request over the monitor's lifetime.
type Resolver struct {
	fetcher ContactFetcher
	cache   *store.PhoneCache
}

func NewResolver(fetcher ContactFetcher, cache *store.PhoneCache) *Resolver {
	return &Resolver{fetcher: fetcher, cache: cache}
}

// Resolve returns the advertiser phone for a token, or "" when unavailable.
// A failed lookup is cached as "" and never fails the calling cycle.
func (r *Resolver) Resolve(ctx context.Context, token string) string {
	if phone, ok := r.cache.Get(token); ok {
		return phone
	}

	phone, err := r.fetcher.FetchContact(ctx, token)
	if err != nil {
		slog.Warn("Contact lookup failed", "token", token, "error", err)
		phone = ""
	}

	if err := r.cache.Put(token, phone); err != nil {
		slog.Warn("Failed to persist phone cache", "token", token, "error", err)
	}

	return phone
}
