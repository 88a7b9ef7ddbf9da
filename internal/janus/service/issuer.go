package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
)

// DefaultOTPTTL is the validity of an issued passcode.
const DefaultOTPTTL = 5 * time.Minute

var otpSpace = big.NewInt(1_000_000)

// Issuer generates passcodes and owns their lifecycle in the store.
//
// Codes are drawn uniformly from [0, 999999] with no check against live
// codes: a collision rebinds the code to the newer visitor.  With a 5-minute
// TTL and a handful of concurrent codes the collision odds are negligible;
// deduplication would need a conditional insert per code and is not worth it
// here.
type Issuer struct {
	codes store.PasscodeStore
	ttl   time.Duration
	now   func() time.Time
}

func NewIssuer(codes store.PasscodeStore, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &Issuer{
		codes: codes,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the issuer's clock.  Test hook.
func (s *Issuer) WithNow(now func() time.Time) *Issuer {
	s.now = now
	return s
}

// GenerateOTP returns a 6-digit zero-padded code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue generates a fresh code for visitorID and persists it with the
// configured TTL.
func (s *Issuer) Issue(ctx context.Context, visitorID string) (string, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	now := s.now()
	rec := store.PasscodeRecord{
		Code:      code,
		VisitorID: visitorID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.codes.Put(ctx, rec); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Lookup resolves a code to its record.  A row past its expiry is reported
// not-found even if the sweeper hasn't removed it yet — the stored expiry,
// not the sweep, is the source of truth for validity.
func (s *Issuer) Lookup(ctx context.Context, code string) (store.PasscodeRecord, bool, error) {
	rec, ok, err := s.codes.Get(ctx, code)
	if err != nil || !ok {
		return store.PasscodeRecord{}, false, err
	}
	if !rec.ExpiresAt.After(s.now()) {
		return store.PasscodeRecord{}, false, nil
	}
	return rec, true, nil
}

// Invalidate removes a code after redemption (single-use mode).
func (s *Issuer) Invalidate(ctx context.Context, code string) error {
	return s.codes.Delete(ctx, code)
}
