package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
	"github.com/janus-door/janus/internal/janus/types"
)

// Rate-limit key prefixes.  Known visitors are limited per subject; unknown
// visitors share one global key so the operator gets at most one "someone is
// at the door" note per window.
const (
	knownKeyPrefix = "known:"
	unknownKey     = "unknown:global"
)

// perEventTimeout bounds the store round-trips of a single event so one
// stuck call cannot stall the rest of the batch.
const perEventTimeout = 10 * time.Second

// Engine is the access-control decision core: for each match event it decides
// between notifying the operator (with a freshly issued passcode for known
// visitors) and suppressing because a notification went out recently.
type Engine struct {
	rateLimits store.RateLimitStore
	visitors   store.VisitorStore
	issuer     *Issuer
	dispatcher Dispatcher
	events     store.DecisionEventStore
	logger     *log.Logger

	window          time.Duration
	approvalPageURL string
}

type EngineConfig struct {
	// Window is the suppression window per rate-limit key.
	Window time.Duration

	// ApprovalPageURL is linked in unknown-visitor notifications so the
	// operator can approve the visitor and mint a code.
	ApprovalPageURL string
}

func NewEngine(
	rl store.RateLimitStore,
	visitors store.VisitorStore,
	issuer *Issuer,
	dispatcher Dispatcher,
	events store.DecisionEventStore,
	cfg EngineConfig,
	logger *log.Logger,
) *Engine {
	window := cfg.Window
	if window <= 0 {
		window = DefaultOTPTTL
	}
	return &Engine{
		rateLimits:      rl,
		visitors:        visitors,
		issuer:          issuer,
		dispatcher:      dispatcher,
		events:          events,
		logger:          logger,
		window:          window,
		approvalPageURL: cfg.ApprovalPageURL,
	}
}

// ProcessBatch handles each event independently: an error on one event is
// logged and counted, never fatal to the batch or the process.
func (e *Engine) ProcessBatch(ctx context.Context, events []types.MatchEvent) types.EventBatchResponse {
	resp := types.EventBatchResponse{OK: true}

	for _, ev := range events {
		outcome := e.processEvent(ctx, ev)
		resp.Processed++
		switch outcome {
		case store.OutcomeNotified:
			resp.Notified++
		case store.OutcomeSuppressed:
			resp.Suppressed++
		case store.OutcomeStoreError, store.OutcomeDispatchError:
			resp.Failed++
		}
	}

	resp.ServerTime = time.Now().UTC().Format(time.RFC3339Nano)
	return resp
}

func (e *Engine) processEvent(ctx context.Context, ev types.MatchEvent) string {
	ctx, cancel := context.WithTimeout(ctx, perEventTimeout)
	defer cancel()

	if ev.Known() {
		return e.processKnown(ctx, ev)
	}
	return e.processUnknown(ctx)
}

// processKnown: acquire the per-subject window, resolve the directory entry,
// then issue and dispatch — strictly in that order, so a notification never
// references a code that failed to persist.
func (e *Engine) processKnown(ctx context.Context, ev types.MatchEvent) string {
	key := knownKeyPrefix + ev.SubjectID

	acquired, err := e.rateLimits.TryAcquire(ctx, key, e.window)
	if err != nil {
		// Fail closed: better to miss a notification than to spam.
		e.logger.Printf("rate limit error for %s: %v", key, err)
		return e.record(ctx, "known", ev.SubjectID, key, store.OutcomeStoreError, false)
	}
	if !acquired {
		return e.record(ctx, "known", ev.SubjectID, key, store.OutcomeSuppressed, false)
	}

	visitor, ok, err := e.visitors.Get(ctx, ev.SubjectID)
	if err != nil {
		e.logger.Printf("directory lookup error for %s: %v", ev.SubjectID, err)
		return e.record(ctx, "known", ev.SubjectID, key, store.OutcomeStoreError, false)
	}
	if !ok {
		// No directory record, nothing to notify.  No fallback identity is
		// synthesized here; that only happens at redemption time.
		return e.record(ctx, "known", ev.SubjectID, key, store.OutcomeNoDirectoryEntry, false)
	}

	code, err := e.issuer.Issue(ctx, ev.SubjectID)
	if err != nil {
		e.logger.Printf("issue otp for %s: %v", ev.SubjectID, err)
		return e.record(ctx, "known", ev.SubjectID, key, store.OutcomeStoreError, false)
	}

	n := Notification{
		Audience: AudienceOperator,
		Subject:  "Door passcode issued",
		Body: fmt.Sprintf(
			"%s is at the door (confidence %.1f). One-time passcode: %s. Valid for %s.",
			visitor.DisplayName, ev.Confidence, code, e.window,
		),
	}
	if err := e.dispatcher.Dispatch(ctx, n); err != nil {
		e.logger.Printf("dispatch for %s failed: %v", ev.SubjectID, err)
		return e.record(ctx, "known", ev.SubjectID, key, store.OutcomeDispatchError, false)
	}

	e.logger.Printf("notified operator for known visitor %s", ev.SubjectID)
	return e.record(ctx, "known", ev.SubjectID, key, store.OutcomeNotified, true)
}

// processUnknown: one informational notification per global window.  No code
// is issued here; that happens only through the operator-approved
// registration flow.
func (e *Engine) processUnknown(ctx context.Context) string {
	acquired, err := e.rateLimits.TryAcquire(ctx, unknownKey, e.window)
	if err != nil {
		e.logger.Printf("rate limit error for %s: %v", unknownKey, err)
		return e.record(ctx, "unknown", "", unknownKey, store.OutcomeStoreError, false)
	}
	if !acquired {
		return e.record(ctx, "unknown", "", unknownKey, store.OutcomeSuppressed, false)
	}

	body := "An unknown visitor was detected at the door."
	if e.approvalPageURL != "" {
		body += " To approve them and generate a passcode, open: " + e.approvalPageURL
	}

	n := Notification{
		Audience: AudienceOperator,
		Subject:  "Unknown visitor at the door",
		Body:     body,
	}
	if err := e.dispatcher.Dispatch(ctx, n); err != nil {
		e.logger.Printf("unknown-visitor dispatch failed: %v", err)
		return e.record(ctx, "unknown", "", unknownKey, store.OutcomeDispatchError, false)
	}

	e.logger.Printf("notified operator for unknown visitor")
	return e.record(ctx, "unknown", "", unknownKey, store.OutcomeNotified, true)
}

// record appends the decision to the audit log and passes the outcome
// through.  Audit failures are logged, never escalated — the decision stands
// whether or not its audit row landed.
func (e *Engine) record(ctx context.Context, kind, visitorID, rateKey, outcome string, notified bool) string {
	rec := store.DecisionEventRecord{
		Kind:      kind,
		VisitorID: visitorID,
		RateKey:   rateKey,
		Outcome:   outcome,
		Notified:  notified,
		DecidedAt: time.Now().UTC(),
	}
	if err := e.events.RecordEvent(ctx, rec); err != nil {
		e.logger.Printf("decision audit write failed: %v", err)
	}
	return outcome
}
