package guestcache

import (
	"testing"
	"time"

	"github.com/skanelabs/skane-engine/internal/feedback"
)

func entryAt(id string, t time.Time) Entry {
	fb := feedback.Better
	return Entry{ID: id, Timestamp: t, Feedback: &fb}
}

func TestAddPrependsMostRecentFirst(t *testing.T) {
	c := New(NewMemoryKV(), "")
	base := time.Now().UTC()

	for i, id := range []string{"a", "b", "c"} {
		if err := c.Add(entryAt(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	got := c.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" || got[2].ID != "a" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestAddFourthDropsOldest(t *testing.T) {
	c := New(NewMemoryKV(), "")
	base := time.Now().UTC()

	for i, id := range []string{"a", "b", "c", "d"} {
		if err := c.Add(entryAt(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	got := c.List()
	if len(got) != 3 {
		t.Fatalf("cache must hold at most 3 entries, got %d", len(got))
	}
	for _, e := range got {
		if e.ID == "a" {
			t.Fatal("oldest entry should have been dropped")
		}
	}
}

func TestAddDuplicateReplaces(t *testing.T) {
	c := New(NewMemoryKV(), "")
	base := time.Now().UTC()

	if err := c.Add(entryAt("a", base)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(entryAt("b", base.Add(time.Minute))); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(entryAt("a", base.Add(2*time.Minute))); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	got := c.List()
	if len(got) != 2 {
		t.Fatalf("duplicate id must replace, not duplicate: %d entries", len(got))
	}
	if got[0].ID != "a" {
		t.Fatalf("re-added entry should be most recent, got %s", got[0].ID)
	}
}

func TestListDropsMalformedSilently(t *testing.T) {
	kv := NewMemoryKV()
	c := New(kv, "")

	// Stored payload with one valid and two malformed entries.
	payload := `[
		{"id":"good","timestamp":"2026-08-30T12:00:00Z"},
		{"id":"","timestamp":"2026-08-30T12:00:00Z"},
		{"id":"no-time"}
	]`
	if err := kv.Set(DefaultKey, []byte(payload)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got := c.List()
	if len(got) != 1 || got[0].ID != "good" {
		t.Fatalf("expected only the valid entry, got %+v", got)
	}
}

func TestListCorruptPayload(t *testing.T) {
	kv := NewMemoryKV()
	c := New(kv, "")
	if err := kv.Set(DefaultKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := c.List(); got != nil {
		t.Fatalf("corrupt payload should read as empty, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	c := New(NewMemoryKV(), "")
	if err := c.Add(entryAt("a", time.Now().UTC())); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := c.List(); len(got) != 0 {
		t.Fatalf("expected empty after clear, got %d", len(got))
	}
}

func TestAddRejectsInvalidEntry(t *testing.T) {
	c := New(NewMemoryKV(), "")
	if err := c.Add(Entry{}); err == nil {
		t.Fatal("expected error for entry without id")
	}
}

func TestFileKVRoundtrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	c := New(kv, "")

	if err := c.Add(entryAt("a", time.Now().UTC())); err != nil {
		t.Fatalf("add: %v", err)
	}
	got := c.List()
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("file-backed roundtrip failed: %+v", got)
	}
}
