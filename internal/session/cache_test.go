package session

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"coursedeck/internal/domain"
)

func TestMemoryCacheLifecycle(t *testing.T) {
	cache := NewMemoryCache()
	if _, ok, _ := cache.Get(); ok {
		t.Fatal("empty cache should report no session")
	}
	s := Session{Token: "tok-1", Member: domain.Member{ID: "m1", Email: "a@example.com"}}
	if err := cache.Put(s); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := cache.Get()
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Token != "tok-1" || got.Member.ID != "m1" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := cache.Get(); ok {
		t.Fatal("cleared cache should report no session")
	}
}

func TestRedisCacheOverwritesPreviousSession(t *testing.T) {
	redis := miniredis.RunT(t)
	cache := NewRedisCache(redis.Addr(), "", time.Hour)

	if err := cache.Put(Session{Token: "tok-old"}); err != nil {
		t.Fatalf("put old: %v", err)
	}
	if err := cache.Put(Session{Token: "tok-new", Member: domain.Member{ID: "m2"}}); err != nil {
		t.Fatalf("put new: %v", err)
	}
	got, ok, err := cache.Get()
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Token != "tok-new" || got.Member.ID != "m2" {
		t.Fatalf("expected new session to win, got %+v", got)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := cache.Get(); ok {
		t.Fatal("cleared cache should report no session")
	}
}
