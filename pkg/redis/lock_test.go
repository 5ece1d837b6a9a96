package redis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T, ttl time.Duration) (*Locker, *miniredis.Miniredis, *bytes.Buffer) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var buf bytes.Buffer
	l := NewLocker(rdb, "myvoice", ttl, slog.New(slog.NewTextHandler(&buf, nil)))
	l.retry = 5 * time.Millisecond
	return l, mr, &buf
}

func TestLocker_MutualExclusion(t *testing.T) {
	l, _, _ := newTestLocker(t, 5*time.Second)

	var inside, maxInside, done atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "registration:08022112211")
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			done.Add(1)
			release()
		}()
	}
	wg.Wait()

	if got := maxInside.Load(); got != 1 {
		t.Errorf("holders at once = %d, want 1", got)
	}
	if got := done.Load(); got != 10 {
		t.Errorf("completed = %d, want 10", got)
	}
}

func TestLocker_KeysAreIndependent(t *testing.T) {
	l, _, _ := newTestLocker(t, time.Second)
	ctx := context.Background()

	a, err := l.Acquire(ctx, "registration:08011111111")
	if err != nil {
		t.Fatalf("Acquire(a) error = %v", err)
	}
	defer a()
	b, err := l.Acquire(ctx, "registration:08022222222")
	if err != nil {
		t.Fatalf("Acquire(b) error = %v, want independent lock", err)
	}
	b()
}

func TestLocker_Timeout(t *testing.T) {
	l, _, _ := newTestLocker(t, 100*time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	// miniredis only expires keys on FastForward, so the holder keeps it.
	start := time.Now()
	if _, err := l.Acquire(ctx, "k"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("second Acquire() error = %v, want ErrLockTimeout", err)
	}
	if waited := time.Since(start); waited < 100*time.Millisecond {
		t.Errorf("gave up after %v, want at least one TTL", waited)
	}

	// A long TTL leaves the caller's context as the only limit.
	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	if _, err := NewLocker(l.rdb, "myvoice", time.Hour, nil).Acquire(short, "k"); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Acquire(short ctx) error = %v, want ErrLockTimeout", err)
	}
}

func TestLocker_ReleaseAllowsNextHolder(t *testing.T) {
	l, mr, buf := newTestLocker(t, time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
	if mr.Exists("myvoice:lock:k") {
		t.Error("key still present after release")
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}

	next, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	next()
}

func TestLocker_ReleaseKeepsOtherHoldersLock(t *testing.T) {
	l, mr, buf := newTestLocker(t, time.Second)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	mr.FastForward(2 * time.Second)

	current, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire() after expiry error = %v", err)
	}
	defer current()
	owner, err := mr.Get("myvoice:lock:k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	stale()

	got, err := mr.Get("myvoice:lock:k")
	if err != nil {
		t.Fatalf("lock of the current holder was deleted: %v", err)
	}
	if got != owner {
		t.Errorf("lock token = %q, want %q", got, owner)
	}
	if !strings.Contains(buf.String(), "lock expired before release") {
		t.Errorf("log = %q, want expired-lock warning", buf.String())
	}
}
