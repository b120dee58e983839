package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// RulesKey is deterministic and prefixed by stage
	rk1 := k.RulesKey("front setback 20 ft")
	rk2 := k.RulesKey("front setback 20 ft")
	if rk1 != rk2 {
		t.Error("RulesKey should be deterministic")
	}
	if !strings.HasPrefix(rk1, "rules:") {
		t.Errorf("RulesKey should carry the rules prefix: %s", rk1)
	}
	if rk1 == k.RulesKey("front setback 25 ft") {
		t.Error("Different rule texts should produce different keys")
	}

	// SiteKey
	sk := k.SiteKey("sitehash123")
	if !strings.HasPrefix(sk, "site:") {
		t.Errorf("SiteKey should carry the site prefix: %s", sk)
	}
	if sk == k.SiteKey("sitehash456") {
		t.Error("Different site hashes should produce different keys")
	}

	// ReportKey should include options in hash
	pk1 := k.ReportKey("sitehash123", "optsA")
	pk2 := k.ReportKey("sitehash123", "optsB")
	if pk1 == pk2 {
		t.Error("Different option hashes should produce different keys")
	}
	if !strings.HasPrefix(pk1, "report:") {
		t.Errorf("ReportKey should carry the report prefix: %s", pk1)
	}

	// Stages must never collide on the same input
	if k.RulesKey("x") == k.SiteKey("x") {
		t.Error("Stage prefixes should keep keys distinct")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "county:placer:")

	// All keys should be prefixed and otherwise match the inner keyer
	rk := scoped.RulesKey("rear setback 15 ft")
	if rk != "county:placer:"+inner.RulesKey("rear setback 15 ft") {
		t.Errorf("ScopedKeyer RulesKey unexpected: %s", rk)
	}

	sk := scoped.SiteKey("sitehash123")
	if !strings.HasPrefix(sk, "county:placer:site:") {
		t.Errorf("ScopedKeyer SiteKey should be prefixed: %s", sk)
	}

	pk := scoped.ReportKey("sitehash123", "opts")
	if !strings.HasPrefix(pk, "county:placer:report:") {
		t.Errorf("ScopedKeyer ReportKey should be prefixed: %s", pk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.SiteKey("abc")
	if key != "prefix:"+NewDefaultKeyer().SiteKey("abc") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss on unknown key
	_, hit, err := c.Get(ctx, "unknown")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get on unknown key should miss")
	}

	// Round trip with no expiration
	if err := c.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get after Set should hit")
	}
	if string(data) != "value1" {
		t.Errorf("Get returned wrong data: %s", data)
	}

	// Delete removes the entry
	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key1")
	if hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "key1"); err != nil {
		t.Errorf("Delete on missing key should be nil: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("lived"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	// Write garbage where the entry would live
	path := c.path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	// Corrupt entries read as misses and are removed
	_, hit, err := c.Get(ctx, "broken")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Corrupt entry should miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Corrupt entry should be removed on read")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir should return the cache directory: %s", c.Dir())
	}

	if err := c.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("2"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Unrelated files in the cache dir survive a clear
	stray := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(stray, []byte("keep"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	_, hit, _ := c.Get(ctx, "a")
	if hit {
		t.Error("Get after Clear should miss")
	}
	_, hit, _ = c.Get(ctx, "b")
	if hit {
		t.Error("Get after Clear should miss")
	}
	if _, err := os.Stat(stray); err != nil {
		t.Errorf("Clear should leave unrelated files alone: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Clear should leave the cache directory in place: %v", err)
	}
}

func TestRedisCacheBadURL(t *testing.T) {
	// ParseURL fails before any connection is attempted
	_, err := NewRedisCache(context.Background(), "not-a-url")
	if err == nil {
		t.Fatal("NewRedisCache with a bad URL should fail")
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
