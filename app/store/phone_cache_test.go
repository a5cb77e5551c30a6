package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPhoneCache_GetMissReturnsNotOk(t *testing.T) {
	c := NewPhoneCache(filepath.Join(t.TempDir(), "phones.json"))

	if _, ok := c.Get("unknown"); ok {
		t.Error("Expected miss for uncached token")
	}
}

func TestPhoneCache_PutAndGet(t *testing.T) {
	c := NewPhoneCache(filepath.Join(t.TempDir(), "phones.json"))

	if err := c.Put("abc", "050-1111111"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	phone, ok := c.Get("abc")
	if !ok {
		t.Fatal("Expected hit for cached token")
	}
	if phone != "050-1111111" {
		t.Errorf("Expected '050-1111111', got %s", phone)
	}
}

func TestPhoneCache_CachedNoneIsAHit(t *testing.T) {
	c := NewPhoneCache(filepath.Join(t.TempDir(), "phones.json"))

	if err := c.Put("abc", ""); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	phone, ok := c.Get("abc")
	if !ok {
		t.Error("Expected a cached 'no phone' outcome to count as a hit")
	}
	if phone != "" {
		t.Errorf("Expected empty phone, got %s", phone)
	}
}

func TestPhoneCache_NullRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phones.json")

	c := NewPhoneCache(path)
	if err := c.Put("none", ""); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("some", "050-1111111"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache file: %v", err)
	}
	if !strings.Contains(string(data), "null") {
		t.Error("Expected a cached 'no phone' to persist as an explicit null")
	}

	reloaded := NewPhoneCache(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	phone, ok := reloaded.Get("none")
	if !ok || phone != "" {
		t.Errorf("Expected cached none after reload, got (%q, %v)", phone, ok)
	}
	phone, ok = reloaded.Get("some")
	if !ok || phone != "050-1111111" {
		t.Errorf("Expected cached phone after reload, got (%q, %v)", phone, ok)
	}
	if reloaded.Len() != 2 {
		t.Errorf("Expected 2 entries after reload, got %d", reloaded.Len())
	}
}
