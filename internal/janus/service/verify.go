package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/janus-door/janus/internal/janus/store"
	"github.com/janus-door/janus/internal/janus/types"
)

var ErrInvalidCode = errors.New("code is required")

// FallbackDisplayName is reported when a live passcode's subject has no
// directory entry.  Validity comes from the passcode alone; directory
// resolution is cosmetic.
const FallbackDisplayName = "Visitor"

// VerifyService redeems submitted passcodes.
type VerifyService struct {
	issuer   *Issuer
	visitors store.VisitorStore
	logger   *log.Logger

	// singleUse deletes a code on first successful redemption.  Off by
	// default: enabling it makes a second submission of the same valid code
	// report invalid, which is externally observable behavior.
	singleUse bool
}

func NewVerifyService(issuer *Issuer, visitors store.VisitorStore, singleUse bool, logger *log.Logger) *VerifyService {
	return &VerifyService{
		issuer:    issuer,
		visitors:  visitors,
		singleUse: singleUse,
		logger:    logger,
	}
}

func (s *VerifyService) Redeem(ctx context.Context, req types.VerifyRequest) (types.VerifyResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return types.VerifyResponse{}, ErrInvalidCode
	}

	rec, ok, err := s.issuer.Lookup(ctx, code)
	if err != nil {
		// Read-only lookup: one retry on a transient store error.
		rec, ok, err = s.issuer.Lookup(ctx, code)
	}
	if err != nil {
		return types.VerifyResponse{}, err
	}
	if !ok {
		return types.VerifyResponse{Valid: false}, nil
	}

	name := FallbackDisplayName
	visitor, found, err := s.visitors.Get(ctx, rec.VisitorID)
	if err != nil {
		visitor, found, err = s.visitors.Get(ctx, rec.VisitorID)
	}
	if err != nil {
		// The passcode was live; a directory blip doesn't invalidate it.
		s.logger.Printf("directory lookup failed during redemption of %s: %v", rec.VisitorID, err)
	} else if found && visitor.DisplayName != "" {
		name = visitor.DisplayName
	}

	if s.singleUse {
		if err := s.issuer.Invalidate(ctx, code); err != nil {
			// Validity was already established; log and let the result stand.
			s.logger.Printf("single-use invalidation of code failed: %v", err)
		}
	}

	return types.VerifyResponse{Valid: true, DisplayName: name}, nil
}
