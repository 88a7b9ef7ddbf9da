package store

import (
	"context"
	"time"
)

// Decision outcomes recorded in the audit log.
const (
	OutcomeNotified         = "notified"
	OutcomeSuppressed       = "suppressed"
	OutcomeNoDirectoryEntry = "no_directory_entry"
	OutcomeStoreError       = "store_error"
	OutcomeDispatchError    = "dispatch_error"
	OutcomeRegistered       = "registered"
)

// DecisionEventRecord captures a single engine decision for the audit log.
// The issued code itself is never stored here.
type DecisionEventRecord struct {
	Kind      string // "known" | "unknown" | "register"
	VisitorID string
	RateKey   string
	Outcome   string
	Notified  bool
	DecidedAt time.Time
}

// DecisionEventStore persists engine decisions as an append-only audit log.
type DecisionEventStore interface {
	RecordEvent(ctx context.Context, rec DecisionEventRecord) error
}
