package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// PhoneCache memoizes contact lookups per advertisement token. A nil value
// records that the upstream has no phone for the token, so the miss is not
// retried every cycle. Same load/mutate/persist lifecycle as the seen store.
type PhoneCache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]*string
}

func NewPhoneCache(path string) *PhoneCache {
	return &PhoneCache{
		path:    path,
		entries: make(map[string]*string),
	}
}

func (c *PhoneCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read phone cache: %w", err)
	}

	entries := make(map[string]*string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse phone cache: %w", err)
	}

	c.entries = entries
	return nil
}

// Get returns the cached phone for a token. ok is true for a cached "no
// phone" outcome as well, with phone empty.
func (c *PhoneCache) Get(token string) (phone string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[token]
	if !ok {
		return "", false
	}
	if entry == nil {
		return "", true
	}
	return *entry, true
}

// Put caches the resolution outcome for a token and persists the cache
// synchronously. An empty phone is stored as an explicit null.
func (c *PhoneCache) Put(token, phone string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if phone == "" {
		c.entries[token] = nil
	} else {
		c.entries[token] = &phone
	}

	return c.persistLocked()
}

func (c *PhoneCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *PhoneCache) persistLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal phone cache: %w", err)
	}

	if err := writeFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("failed to persist phone cache: %w", err)
	}
	return nil
}
