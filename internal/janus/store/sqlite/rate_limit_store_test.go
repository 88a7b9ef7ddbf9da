package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/janus-door/janus/internal/janus/store/sqlite"
)

func TestTryAcquire_FreshKeyAcquires(t *testing.T) {
	conn := openTestDB(t)
	rl := sqlite.NewRateLimitStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	ok, err := rl.TryAcquire(ctx, "known:face-1", 5*time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if !ok {
		t.Fatal("expected fresh key to acquire")
	}
}

func TestTryAcquire_BlockedInsideWindow(t *testing.T) {
	conn := openTestDB(t)
	rl := sqlite.NewRateLimitStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if ok, err := rl.TryAcquire(ctx, "known:face-1", 5*time.Minute); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	// Repeated acquires inside the window are no-ops returning false.
	for i := 0; i < 3; i++ {
		ok, err := rl.TryAcquire(ctx, "known:face-1", 5*time.Minute)
		if err != nil {
			t.Fatalf("repeat acquire %d: %v", i, err)
		}
		if ok {
			t.Fatalf("repeat acquire %d should be blocked", i)
		}
	}
}

func TestTryAcquire_ExpiredWindowReacquires(t *testing.T) {
	conn := openTestDB(t)
	rl := sqlite.NewRateLimitStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	// Plant a row whose window has already elapsed.
	past := time.Now().UTC().Add(-time.Second).UnixMilli()
	if _, err := conn.ExecContext(ctx,
		"INSERT INTO rate_limits(id, expires_at_ms) VALUES(?, ?);",
		"unknown:global", past); err != nil {
		t.Fatalf("plant expired row: %v", err)
	}

	ok, err := rl.TryAcquire(ctx, "unknown:global", 5*time.Minute)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if !ok {
		t.Fatal("expected expired key to reacquire")
	}

	// The row should have been conditionally updated, not duplicated.
	var n int
	if err := conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rate_limits WHERE id = ?;", "unknown:global").Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestTryAcquire_ConcurrentCallersSingleWinner(t *testing.T) {
	conn := openTestDB(t)
	rl := sqlite.NewRateLimitStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := rl.TryAcquire(ctx, "known:face-hot", 5*time.Minute)
			if err != nil {
				t.Errorf("concurrent acquire: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}
}

func TestRateLimit_PruneExpired(t *testing.T) {
	conn := openTestDB(t)
	rl := sqlite.NewRateLimitStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	now := time.Now().UTC()
	rows := []struct {
		id  string
		exp int64
	}{
		{"known:old", now.Add(-time.Hour).UnixMilli()},
		{"known:older", now.Add(-2 * time.Hour).UnixMilli()},
		{"known:live", now.Add(time.Hour).UnixMilli()},
	}
	for _, r := range rows {
		if _, err := conn.ExecContext(ctx,
			"INSERT INTO rate_limits(id, expires_at_ms) VALUES(?, ?);", r.id, r.exp); err != nil {
			t.Fatalf("plant row %s: %v", r.id, err)
		}
	}

	deleted, err := rl.PruneExpired(ctx, now)
	if err != nil {
		t.Fatalf("PruneExpired: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM rate_limits;").Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected the live row to survive, got %d rows", n)
	}
}
