package guestcache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/skanelabs/skane-engine/internal/feedback"
)

// #region entry

// Entry mirrors one recent guest session on the device. Only the
// feedback-derived glyph is ever surfaced to UI.
type Entry struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Feedback      *feedback.Value `json:"feedback,omitempty"`
	InternalState string          `json:"internal_state,omitempty"`
}

func (e Entry) valid() bool {
	return e.ID != "" && !e.Timestamp.IsZero()
}

// #endregion entry

// #region cache

const maxEntries = 3

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "skane.guest.sessions"

// Cache is a bounded, validated mirror of recent guest sessions. Best
// effort by design: malformed stored data is dropped on read, never
// surfaced as an error.
type Cache struct {
	kv  KV
	key string
}

// New returns a cache over the given store and key.
func New(kv KV, key string) *Cache {
	if key == "" {
		key = DefaultKey
	}
	return &Cache{kv: kv, key: key}
}

// Add prepends an entry, drops any older entry with the same id, and
// truncates to the three most recent.
func (c *Cache) Add(entry Entry) error {
	if !entry.valid() {
		return fmt.Errorf("invalid guest cache entry: id and timestamp required")
	}

	entries := c.load()
	out := make([]Entry, 0, maxEntries)
	out = append(out, entry)
	for _, e := range entries {
		if e.ID == entry.ID {
			continue
		}
		out = append(out, e)
		if len(out) == maxEntries {
			break
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal guest cache: %w", err)
	}
	if err := c.kv.Set(c.key, data); err != nil {
		return fmt.Errorf("store guest cache: %w", err)
	}
	return nil
}

// List returns the validated entries, most recent first, at most three.
func (c *Cache) List() []Entry {
	return c.load()
}

// Clear removes the cached entries.
func (c *Cache) Clear() error {
	if err := c.kv.Remove(c.key); err != nil {
		return fmt.Errorf("clear guest cache: %w", err)
	}
	return nil
}

// load reads and schema-checks the stored list. Corrupt payloads and
// malformed entries are dropped silently.
func (c *Cache) load() []Entry {
	data, ok, err := c.kv.Get(c.key)
	if err != nil || !ok {
		return nil
	}

	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	out := make([]Entry, 0, maxEntries)
	seen := make(map[string]bool)
	for _, e := range raw {
		if !e.valid() || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
		if len(out) == maxEntries {
			break
		}
	}
	return out
}

// #endregion cache
