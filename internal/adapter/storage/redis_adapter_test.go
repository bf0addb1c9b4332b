package storage

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestSession_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	adapter := NewRedisAdapter(client, time.Minute, time.Second)
	ctx := port.WithSessionID(context.Background(), "test-session-1")
	defer client.Del(ctx, "session:test-session-1")

	sess := domain.Session{Token: "jwt", User: domain.User{ID: "u1", Name: "Meera", Role: domain.RoleAdmin}}
	if err := adapter.Save(ctx, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil || got.Token != "jwt" || !got.IsAdmin() {
		t.Errorf("unexpected session: %+v", got)
	}

	ttl := client.TTL(ctx, "session:test-session-1").Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl within a minute, got %v", ttl)
	}

	if err := adapter.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	got, err = adapter.Load(ctx)
	if err != nil || got != nil {
		t.Errorf("expected no session after clear, got %+v, %v", got, err)
	}
}

func TestSession_IsolatedBySessionID(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	adapter := NewRedisAdapter(client, time.Minute, time.Second)
	a := port.WithSessionID(context.Background(), "test-session-a")
	b := port.WithSessionID(context.Background(), "test-session-b")
	defer client.Del(context.Background(), "session:test-session-a", "session:test-session-b")

	if err := adapter.Save(a, domain.Session{Token: "a"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := adapter.Load(b)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Errorf("session b should be empty, got %+v", got)
	}
}

func TestSession_NoSessionID(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	adapter := NewRedisAdapter(client, 0, 0)
	if err := adapter.Save(context.Background(), domain.Session{Token: "x"}); err != ErrNoSessionID {
		t.Errorf("expected ErrNoSessionID, got: %v", err)
	}
	got, err := adapter.Load(context.Background())
	if err != nil || got != nil {
		t.Errorf("expected nil session, got %+v, %v", got, err)
	}
}

func TestCommitLock_Exclusive(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0, 5*time.Second)
	client.Del(ctx, "lock:order:test-lock")

	token, ok, err := adapter.AcquireCommitLock(ctx, "lock:order:test-lock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || token == "" {
		t.Fatal("expected first acquire to succeed with a token")
	}

	_, ok, err = adapter.AcquireCommitLock(ctx, "lock:order:test-lock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second acquire to fail")
	}

	if err := adapter.ReleaseCommitLock(ctx, "lock:order:test-lock", token); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	token, ok, _ = adapter.AcquireCommitLock(ctx, "lock:order:test-lock")
	if !ok {
		t.Error("expected acquire after release to succeed")
	}
	adapter.ReleaseCommitLock(ctx, "lock:order:test-lock", token)
}

func TestCommitLock_ReleaseLeavesForeignLock(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0, 5*time.Second)
	defer client.Del(ctx, "lock:user:test-foreign")

	token, ok, _ := adapter.AcquireCommitLock(ctx, "lock:user:test-foreign")
	if !ok {
		t.Fatal("expected acquire to succeed")
	}
	// Simulate expiry and takeover by another gateway.
	client.Set(ctx, "lock:user:test-foreign", "someone-else", 5*time.Second)

	if err := adapter.ReleaseCommitLock(ctx, "lock:user:test-foreign", token); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if v := client.Get(ctx, "lock:user:test-foreign").Val(); v != "someone-else" {
		t.Errorf("foreign lock was removed, got %q", v)
	}
}

func TestCommitLock_ExpiredHolderCannotReleaseSuccessor(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	key := "lock:order:test-expired"
	adapter := NewRedisAdapter(client, 0, 200*time.Millisecond)
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	first, ok, err := adapter.AcquireCommitLock(ctx, key)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	// First holder outlives the TTL, a second commit takes over.
	time.Sleep(400 * time.Millisecond)
	second, ok, err := adapter.AcquireCommitLock(ctx, key)
	if err != nil || !ok {
		t.Fatalf("second acquire after expiry: ok=%v err=%v", ok, err)
	}

	if err := adapter.ReleaseCommitLock(ctx, key, first); err != nil {
		t.Fatalf("stale release failed: %v", err)
	}
	if v := client.Get(ctx, key).Val(); v != second {
		t.Fatalf("stale release removed the live lock, got %q", v)
	}
	if _, ok, _ := adapter.AcquireCommitLock(ctx, key); ok {
		t.Error("third acquire succeeded while the second holder is committing")
	}

	if err := adapter.ReleaseCommitLock(ctx, key, second); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if n := client.Exists(ctx, key).Val(); n != 0 {
		t.Error("expected the live holder's release to free the lock")
	}
}

func TestCommitLock_UnreachableRedisNamesKey(t *testing.T) {
	// Nothing listens on port 1, so every command fails to dial.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	adapter := NewRedisAdapter(client, 0, time.Second)

	token, ok, err := adapter.AcquireCommitLock(context.Background(), "lock:order:unreachable")
	if err == nil {
		t.Fatal("expected an error from an unreachable redis")
	}
	if ok || token != "" {
		t.Errorf("failed acquire must not hand out a lock, got ok=%v token=%q", ok, token)
	}
	if !strings.HasPrefix(err.Error(), "acquire lock lock:order:unreachable: ") {
		t.Errorf("error does not name the lock key: %v", err)
	}

	err = adapter.ReleaseCommitLock(context.Background(), "lock:order:unreachable", "t")
	if err == nil || !strings.HasPrefix(err.Error(), "release lock lock:order:unreachable: ") {
		t.Errorf("release error does not name the lock key: %v", err)
	}
}

func TestCommitLock_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0, 5*time.Second)
	client.Del(ctx, "lock:order:concurrent")
	defer client.Del(ctx, "lock:order:concurrent")

	var successCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 100

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := adapter.AcquireCommitLock(ctx, "lock:order:concurrent")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
}
