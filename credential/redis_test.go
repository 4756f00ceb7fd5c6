package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisBackingRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	backing := NewRedisBacking(client, "gsc", "auth_token", time.Hour, false)
	ctx := context.Background()

	if _, found, err := backing.Load(ctx, "s1"); err != nil || found {
		t.Fatalf("expected absent before store, found=%v err=%v", found, err)
	}

	if err := backing.Store(ctx, "s1", "tok-1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	token, found, err := backing.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found || token != "tok-1" {
		t.Fatalf("expected tok-1, found=%v token=%q", found, token)
	}

	if err := backing.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, err := backing.Load(ctx, "s1"); err != nil || found {
		t.Fatalf("expected absent after delete, found=%v err=%v", found, err)
	}
}

func TestRedisBackingDeleteIdempotent(t *testing.T) {
	_, client := newTestRedis(t)
	backing := NewRedisBacking(client, "gsc", "auth_token", time.Hour, false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := backing.Delete(ctx, "never-stored"); err != nil {
			t.Fatalf("Delete %d failed: %v", i, err)
		}
	}
}

func TestRedisBackingExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	backing := NewRedisBacking(client, "gsc", "auth_token", time.Minute, false)
	ctx := context.Background()

	if err := backing.Store(ctx, "s1", "tok-1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, found, err := backing.Load(ctx, "s1"); err != nil || found {
		t.Fatalf("expected expiry, found=%v err=%v", found, err)
	}
}

func TestRedisBackingSlidingRefreshesTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	backing := NewRedisBacking(client, "gsc", "auth_token", time.Minute, true)
	ctx := context.Background()

	if err := backing.Store(ctx, "s1", "tok-1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Each read pushes the expiry out again; three reads spaced 40s apart
	// keep a 60s credential alive well past its original deadline.
	for i := 0; i < 3; i++ {
		mr.FastForward(40 * time.Second)
		if _, found, err := backing.Load(ctx, "s1"); err != nil || !found {
			t.Fatalf("read %d: expected credential alive, found=%v err=%v", i, found, err)
		}
	}

	mr.FastForward(2 * time.Minute)
	if _, found, err := backing.Load(ctx, "s1"); err != nil || found {
		t.Fatalf("expected expiry once idle, found=%v err=%v", found, err)
	}
}

func TestRedisBackingUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	backing := NewRedisBacking(client, "gsc", "auth_token", time.Hour, false)
	ctx := context.Background()

	mr.Close()

	if _, _, err := backing.Load(ctx, "s1"); !errors.Is(err, ErrBackingUnavailable) {
		t.Fatalf("Load: expected ErrBackingUnavailable, got %v", err)
	}
	if err := backing.Store(ctx, "s1", "tok-1"); !errors.Is(err, ErrBackingUnavailable) {
		t.Fatalf("Store: expected ErrBackingUnavailable, got %v", err)
	}
	if err := backing.Ping(ctx); !errors.Is(err, ErrBackingUnavailable) {
		t.Fatalf("Ping: expected ErrBackingUnavailable, got %v", err)
	}
}

func TestRedisBackingKeyLayout(t *testing.T) {
	mr, client := newTestRedis(t)
	backing := NewRedisBacking(client, "app", "auth_token", time.Hour, false)
	ctx := context.Background()

	if err := backing.Store(ctx, "s1", "tok-1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := mr.Get("app:auth_token:s1")
	if err != nil {
		t.Fatalf("expected key app:auth_token:s1: %v", err)
	}
	if got != "tok-1" {
		t.Fatalf("expected tok-1 at key, got %q", got)
	}
}
