package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/janus-door/janus/internal/janus/store/memory"
)

func TestTryAcquire_NoDoubleAcquireUnderConcurrency(t *testing.T) {
	rl := memory.NewRateLimitStore()
	ctx := context.Background()

	keys := []string{"known:a", "known:b", "unknown:global"}
	const callersPerKey = 32

	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := make(map[string]int)

	for _, key := range keys {
		for i := 0; i < callersPerKey; i++ {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				ok, err := rl.TryAcquire(ctx, key, 5*time.Minute)
				if err != nil {
					t.Errorf("TryAcquire %s: %v", key, err)
					return
				}
				if ok {
					mu.Lock()
					counts[key]++
					mu.Unlock()
				}
			}(key)
		}
	}
	wg.Wait()

	for _, key := range keys {
		if counts[key] != 1 {
			t.Errorf("key %s: expected exactly 1 winner, got %d", key, counts[key])
		}
	}
}

func TestTryAcquire_RepeatedAcquireIsNoOp(t *testing.T) {
	rl := memory.NewRateLimitStore()
	ctx := context.Background()

	if ok, _ := rl.TryAcquire(ctx, "known:a", 5*time.Minute); !ok {
		t.Fatal("first acquire should succeed")
	}
	for i := 0; i < 10; i++ {
		if ok, _ := rl.TryAcquire(ctx, "known:a", 5*time.Minute); ok {
			t.Fatalf("acquire %d inside the window should fail", i)
		}
	}
}

func TestTryAcquire_WindowExpiryFreesKey(t *testing.T) {
	rl := memory.NewRateLimitStore()
	ctx := context.Background()

	base := time.Now().UTC()
	rl.Now = func() time.Time { return base }

	if ok, _ := rl.TryAcquire(ctx, "known:a", 300*time.Second); !ok {
		t.Fatal("first acquire should succeed")
	}

	rl.Now = func() time.Time { return base.Add(299 * time.Second) }
	if ok, _ := rl.TryAcquire(ctx, "known:a", 300*time.Second); ok {
		t.Fatal("acquire just inside the window should fail")
	}

	rl.Now = func() time.Time { return base.Add(300 * time.Second) }
	if ok, _ := rl.TryAcquire(ctx, "known:a", 300*time.Second); !ok {
		t.Fatal("acquire at window expiry should succeed and reset the window")
	}

	// The reset window blocks again.
	rl.Now = func() time.Time { return base.Add(301 * time.Second) }
	if ok, _ := rl.TryAcquire(ctx, "known:a", 300*time.Second); ok {
		t.Fatal("acquire inside the reset window should fail")
	}
}
