// Package retry
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v3"
	"go.uber.org/zap"
)

type Config struct {
	// Attempts is the fixed budget of delayed re-synchronizations issued
	// after a state-changing action. The scheduler never retries past it.
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Logger       *zap.Logger
}

// Scheduler bridges the gap between "transaction mined" and "the provider's
// read view reflects it". Each scheduled attempt re-runs a full, idempotent
// synchronization; running one early just reproduces the stale snapshot,
// which the next attempt overwrites. Errors are logged, never escalated:
// when every attempt fails to surface new data the last good snapshot simply
// stays published.
type Scheduler struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		logger: cfg.Logger.With(zap.String("component", "retry")),
	}
}

// Handle controls one scheduled retry sequence. Teardown must call Cancel so
// pending timers cannot fire into a context that no longer exists.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *Handle) Cancel() {
	h.cancel()
}

// Done closes after the attempt budget is exhausted or the handle canceled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Schedule fires attempt at increasing delays until the budget runs out.
func (s *Scheduler) Schedule(ctx context.Context, attempt func(ctx context.Context) error) *Handle {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.InitialDelay
	policy.MaxInterval = s.cfg.MaxDelay
	policy.MaxElapsedTime = 0
	policy.Reset()

	go func() {
		defer close(h.done)
		defer cancel()
		for i := 0; i < s.cfg.Attempts; i++ {
			timer := time.NewTimer(policy.NextBackOff())
			select {
			case <-runCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			if err := attempt(runCtx); err != nil {
				s.logger.Warn("scheduled re-sync attempt failed",
					zap.Int("attempt", i+1),
					zap.Int("budget", s.cfg.Attempts),
					zap.Error(err))
			}
		}
	}()
	return h
}
