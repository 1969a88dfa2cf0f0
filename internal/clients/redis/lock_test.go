package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

func testRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func testLocker(t *testing.T, ttl time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	rdb, mr := testRedis(t)
	l, err := NewLocker(logger.Nop(), rdb, "test:lock:", ttl)
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	return l, mr
}

func TestLockerExcludesSecondHolder(t *testing.T) {
	l, mr := testLocker(t, 5*time.Second)

	unlock, err := l.Lock(context.Background(), "session")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "session"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded while held, got %v", err)
	}

	unlock()
	unlock()
	if mr.Exists("test:lock:session") {
		t.Fatalf("expected key deleted on release")
	}
	unlock2, err := l.Lock(context.Background(), "session")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	unlock2()
}

func TestLockerOutlivesSlowTurn(t *testing.T) {
	// Default TTL with a turn that spends its whole agent budget on retries.
	l, mr := testLocker(t, 0)

	unlock, err := l.Lock(context.Background(), "session")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()
	mr.FastForward(270 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "session"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected lock still held after 270s, got %v", err)
	}
}

func TestLockerRenewsWhileHeld(t *testing.T) {
	l, mr := testLocker(t, 300*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "session")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	mr.FastForward(250 * time.Millisecond)
	// Renewal ticks every ttl/3 of wall time.
	time.Sleep(200 * time.Millisecond)
	mr.FastForward(200 * time.Millisecond)

	if !mr.Exists("test:lock:session") {
		t.Fatalf("expected renewal to keep the key alive")
	}
	if ttl := mr.TTL("test:lock:session"); ttl <= 0 {
		t.Fatalf("expected positive ttl, got %v", ttl)
	}
}

func TestLockerTakesOverAfterCrashedHolder(t *testing.T) {
	l, mr := testLocker(t, 5*time.Second)

	// A holder that died without releasing.
	if err := mr.Set("test:lock:session", "other-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.SetTTL("test:lock:session", 100*time.Millisecond)

	result := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		unlock, err := l.Lock(ctx, "session")
		if err == nil {
			unlock()
		}
		result <- err
	}()

	time.Sleep(100 * time.Millisecond)
	mr.FastForward(200 * time.Millisecond)
	if err := <-result; err != nil {
		t.Fatalf("expected lock after foreign holder expired, got %v", err)
	}
}

func TestLockerReleaseKeepsForeignKey(t *testing.T) {
	l, mr := testLocker(t, 5*time.Second)

	unlock, err := l.Lock(context.Background(), "session")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	// Another process took over after our key vanished.
	if err := mr.Set("test:lock:session", "other-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	unlock()
	if v, _ := mr.Get("test:lock:session"); v != "other-token" {
		t.Fatalf("release deleted a foreign key, got %q", v)
	}
}
