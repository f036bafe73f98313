package metadata

import (
	"errors"
	"os"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	key := "https://api.example.org/works/10.1234/x?"
	payload := []byte(`{"message":{"title":["Stored"]}}`)

	if got := cache.Get(key); got != nil {
		t.Errorf("Get() before Put = %s, want nil", got)
	}

	cache.Put(key, payload)

	got := cache.Get(key)
	if string(got) != string(payload) {
		t.Errorf("Get() = %s, want %s", got, payload)
	}
}

func TestCacheDistinctKeys(t *testing.T) {
	cache, err := NewCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	cache.Put("key-a", []byte(`{"a":1}`))
	cache.Put("key-b", []byte(`{"b":2}`))

	if got := cache.Get("key-a"); string(got) != `{"a":1}` {
		t.Errorf("Get(key-a) = %s", got)
	}
	if got := cache.Get("key-b"); string(got) != `{"b":2}` {
		t.Errorf("Get(key-b) = %s", got)
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	cache, err := NewCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	key := "corrupt-entry"
	cache.Put(key, []byte(`{"ok":true}`))

	// Truncate the entry mid-token.
	if err := os.WriteFile(cache.entryPath(key), []byte(`{"ok":tr`), 0o644); err != nil {
		t.Fatalf("corrupting entry: %v", err)
	}

	if got := cache.Get(key); got != nil {
		t.Errorf("Get() on corrupt entry = %s, want nil", got)
	}
}

func TestCacheAcquireConflict(t *testing.T) {
	dir := t.TempDir()

	first, err := NewCache(dir, nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	second, err := NewCache(dir, nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer first.Release()

	if err := second.Acquire(); err == nil {
		second.Release()
		t.Error("second Acquire() succeeded, want conflict error")
	} else if !errors.Is(err, ErrCacheBusy) {
		t.Errorf("Acquire() error = %v, want ErrCacheBusy", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Errorf("Acquire() after release error = %v", err)
	}
	second.Release()
}
