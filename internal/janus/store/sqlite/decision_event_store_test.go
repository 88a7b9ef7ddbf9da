package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
	"github.com/janus-door/janus/internal/janus/store/sqlite"
)

func TestDecisionEvent_RecordAndCount(t *testing.T) {
	conn := openTestDB(t)
	es := sqlite.NewDecisionEventStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	recs := []store.DecisionEventRecord{
		{
			Kind: "known", VisitorID: "face-alice", RateKey: "known:face-alice",
			Outcome: store.OutcomeNotified, Notified: true,
			DecidedAt: time.Now().UTC(),
		},
		{
			Kind: "unknown", RateKey: "unknown:global",
			Outcome: store.OutcomeSuppressed,
		},
	}
	for i, rec := range recs {
		if err := es.RecordEvent(ctx, rec); err != nil {
			t.Fatalf("RecordEvent %d: %v", i, err)
		}
	}

	var n int
	if err := conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM decision_events;").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 events, got %d", n)
	}

	// The suppressed row should have NULL visitor_id and a backfilled timestamp.
	var (
		visitorID *string
		outcome   string
		decidedMs int64
	)
	if err := conn.QueryRowContext(ctx, `
SELECT visitor_id, outcome, decided_at_ms
FROM decision_events WHERE kind = 'unknown';
`).Scan(&visitorID, &outcome, &decidedMs); err != nil {
		t.Fatalf("query suppressed row: %v", err)
	}
	if visitorID != nil {
		t.Errorf("expected NULL visitor_id, got %q", *visitorID)
	}
	if outcome != store.OutcomeSuppressed {
		t.Errorf("outcome: got %q", outcome)
	}
	if decidedMs == 0 {
		t.Error("expected decided_at_ms to be backfilled")
	}
}
