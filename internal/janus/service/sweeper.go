package service

import (
	"context"
	"log"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
)

// Sweeper periodically deletes expired passcode and rate-limit rows.  It is
// purely a cleanup optimization: lookups re-check expiry themselves, so a row
// outliving its window is harmless.  Runs as a background goroutine and is
// safe to stop via its context or the Stop method.
//
// An interval of 0 disables sweeping entirely.
type Sweeper struct {
	codes      store.PasscodeStore
	rateLimits store.RateLimitStore
	interval   time.Duration
	logger     *log.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// SweeperConfig holds the parameters for NewSweeper.
type SweeperConfig struct {
	// IntervalMinutes is how often the sweep runs.  0 disables the sweeper.
	IntervalMinutes int
}

// NewSweeper creates a sweeper but does not start it.
// Call Start to begin the background loop.
func NewSweeper(codes store.PasscodeStore, rl store.RateLimitStore, cfg SweeperConfig, logger *log.Logger) *Sweeper {
	return &Sweeper{
		codes:      codes,
		rateLimits: rl,
		interval:   time.Duration(cfg.IntervalMinutes) * time.Minute,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start begins the background sweep loop.  It runs an immediate sweep on
// startup, then repeats on the configured interval.  The loop exits when ctx
// is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Printf("expiry sweeper disabled (interval=0)")
		close(s.done)
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)

	s.logger.Printf("expiry sweeper started (interval=%s)", s.interval)
}

// Stop signals the sweeper to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	// Clean up any backlog from a previous run.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()

	codes, err := s.codes.PruneExpired(ctx, now)
	if err != nil {
		s.logger.Printf("passcode sweep error: %v", err)
	}

	windows, err := s.rateLimits.PruneExpired(ctx, now)
	if err != nil {
		s.logger.Printf("rate-limit sweep error: %v", err)
	}

	if codes > 0 || windows > 0 {
		s.logger.Printf("sweep: removed %d expired passcodes, %d expired windows", codes, windows)
	}
}
