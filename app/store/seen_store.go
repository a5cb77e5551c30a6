package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"yad2watch/app/listing"
)

// SeenStore is the persisted mapping from listing key to the last known
// canonical attributes. Records are only ever replaced wholesale, and every
// mutation is written back to disk before Put returns, so a crash loses at
// most the in-flight cycle.
type SeenStore struct {
	path    string
	mu      sync.RWMutex
	entries map[string]listing.Listing
	order   []string
}

func NewSeenStore(path string) *SeenStore {
	return &SeenStore{
		path:    path,
		entries: make(map[string]listing.Listing),
	}
}

// Load reads the state file. A missing file means a first run and leaves the
// store empty. JSON objects carry no order, so the scan order is rebuilt
// key-sorted; within a process lifetime insertion order is kept.
func (s *SeenStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read seen file: %w", err)
	}

	entries := make(map[string]listing.Listing)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse seen file: %w", err)
	}

	order := make([]string, 0, len(entries))
	for key := range entries {
		order = append(order, key)
	}
	sort.Strings(order)

	s.entries = entries
	s.order = order
	return nil
}

func (s *SeenStore) Get(key string) (listing.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.entries[key]
	return l, ok
}

func (s *SeenStore) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[key]
	return ok
}

func (s *SeenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Put replaces the record under key wholesale and persists the store
// synchronously before returning.
func (s *SeenStore) Put(key string, l listing.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	s.entries[key] = l

	return s.persistLocked()
}

// Entries returns a snapshot of the store in scan order for the repost
// matcher.
func (s *SeenStore) Entries() []listing.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]listing.Entry, 0, len(s.order))
	for _, key := range s.order {
		entries = append(entries, listing.Entry{Key: key, Listing: s.entries[key]})
	}
	return entries
}

func (s *SeenStore) persistLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen store: %w", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to persist seen store: %w", err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so the state file is
// never left half-written.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
