package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
	"github.com/janus-door/janus/internal/janus/store/sqlite"
)

func TestVisitor_PutGetRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlite.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	rec := store.VisitorRecord{
		VisitorID:   "face-alice",
		DisplayName: "Alice Example",
		ContactHint: "alice@example.com",
		CreatedAt:   time.Now().UTC(),
	}
	if err := vs.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := vs.Get(ctx, "face-alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected visitor to be found")
	}
	if got.DisplayName != "Alice Example" {
		t.Errorf("display name: got %q", got.DisplayName)
	}
	if got.ContactHint != "alice@example.com" {
		t.Errorf("contact hint: got %q", got.ContactHint)
	}
}

func TestVisitor_GetUnknown(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlite.NewVisitorStore(conn, newTestWriter(t, conn))

	_, ok, err := vs.Get(context.Background(), "face-nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected unknown visitor to be not-found")
	}
}

func TestVisitor_PlaceholderWithoutContact(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlite.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	// The approval flow writes name-only placeholders.
	if err := vs.Put(ctx, store.VisitorRecord{
		VisitorID:   "unknown-1700000000",
		DisplayName: "Delivery Person",
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := vs.Get(ctx, "unknown-1700000000")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.ContactHint != "" {
		t.Errorf("placeholder should have no contact hint, got %q", got.ContactHint)
	}
}

func TestVisitor_PutUpdatesExisting(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlite.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if err := vs.Put(ctx, store.VisitorRecord{
		VisitorID: "face-alice", DisplayName: "Alice",
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := vs.Put(ctx, store.VisitorRecord{
		VisitorID: "face-alice", DisplayName: "Alice Renamed",
	}); err != nil {
		t.Fatalf("Put update: %v", err)
	}

	got, ok, _ := vs.Get(ctx, "face-alice")
	if !ok || got.DisplayName != "Alice Renamed" {
		t.Errorf("expected updated name, got %+v ok=%v", got, ok)
	}
}
