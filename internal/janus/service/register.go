package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
	"github.com/janus-door/janus/internal/janus/types"
)

var ErrInvalidDisplayName = errors.New("displayName is required")

// RegisterService handles the operator-approved unknown-visitor flow: a
// human saw the unknown-visitor notification, opened the approval page, and
// typed a name.  Because it is an explicit one-shot human action, issuance
// here is not rate limited.
type RegisterService struct {
	issuer     *Issuer
	visitors   store.VisitorStore
	dispatcher Dispatcher
	events     store.DecisionEventStore
	logger     *log.Logger
	now        func() time.Time
}

func NewRegisterService(
	issuer *Issuer,
	visitors store.VisitorStore,
	dispatcher Dispatcher,
	events store.DecisionEventStore,
	logger *log.Logger,
) *RegisterService {
	return &RegisterService{
		issuer:     issuer,
		visitors:   visitors,
		dispatcher: dispatcher,
		events:     events,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock.  Test hook.
func (s *RegisterService) WithNow(now func() time.Time) *RegisterService {
	s.now = now
	return s
}

func (s *RegisterService) Register(ctx context.Context, req types.RegisterRequest) (types.RegisterResponse, error) {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return types.RegisterResponse{}, ErrInvalidDisplayName
	}

	// Synthetic subject id derived from the approval time, matching the ids
	// the recognition pipeline will never produce.
	visitorID := fmt.Sprintf("unknown-%d", s.now().Unix())

	code, err := s.issuer.Issue(ctx, visitorID)
	if err != nil {
		return types.RegisterResponse{}, fmt.Errorf("issue otp: %w", err)
	}

	// Minimal placeholder so a later redemption resolves a name.  No contact
	// hint: this subject exists only for the lifetime of its codes.
	if err := s.visitors.Put(ctx, store.VisitorRecord{
		VisitorID:   visitorID,
		DisplayName: name,
		CreatedAt:   s.now(),
	}); err != nil {
		return types.RegisterResponse{}, fmt.Errorf("record visitor placeholder: %w", err)
	}

	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = "(no note)"
	}

	n := Notification{
		Audience: AudienceOperator,
		Subject:  "Passcode for approved visitor",
		Body: fmt.Sprintf(
			"Unknown visitor approved. Name: %s. Note: %s. One-time passcode: %s. Share it with the visitor at the door.",
			name, note, code,
		),
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		// The code is already live; report the registration as accepted and
		// make the delivery failure visible to the operator via logs.
		s.logger.Printf("approval dispatch for %s failed: %v", visitorID, err)
	}

	if err := s.events.RecordEvent(ctx, store.DecisionEventRecord{
		Kind:      "register",
		VisitorID: visitorID,
		Outcome:   store.OutcomeRegistered,
		Notified:  true,
		DecidedAt: s.now(),
	}); err != nil {
		s.logger.Printf("registration audit write failed: %v", err)
	}

	return types.RegisterResponse{Accepted: true}, nil
}
