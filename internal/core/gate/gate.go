// Package gate blocks process startup until a backing data store answers a
// probe, or gives up once a bounded retry budget is spent.
//
// A gate is in one of three states: probing, ready or exhausted. Transient
// connectivity errors keep it probing; a misconfiguration error ends the wait
// on first sight without consuming the budget.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/fintrack/internal/metrics"
)

// Prober issues one lightweight connectivity check against a store.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

// SleepFunc suspends the caller for d, returning early with ctx.Err() if the
// context ends first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Gate waits for a single named target.
type Gate struct {
	target     string
	prober     Prober
	cfg        Config
	classifier Classifier
	sleep      SleepFunc
	log        *slog.Logger
}

// Option customises a Gate.
type Option func(*Gate)

// WithClassifier overrides DefaultClassifier.
func WithClassifier(c Classifier) Option {
	return func(g *Gate) { g.classifier = c }
}

// WithSleep overrides the timer-based sleep. Used by tests to count waits.
func WithSleep(fn SleepFunc) Option {
	return func(g *Gate) { g.sleep = fn }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// New creates a gate for target.
func New(target string, prober Prober, cfg Config, opts ...Option) *Gate {
	g := &Gate{
		target:     target,
		prober:     prober,
		cfg:        cfg,
		classifier: DefaultClassifier,
		sleep:      sleepContext,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WaitForReady probes prober until it succeeds or cfg's budget is exhausted.
func WaitForReady(ctx context.Context, cfg Config, prober Prober, opts ...Option) error {
	return New("datastore", prober, cfg, opts...).Wait(ctx)
}

// Wait runs the probe loop. It returns nil once the target is ready, an error
// matching ErrMisconfigured for non-retryable failures, an *ExhaustedError
// matching ErrBudgetExhausted once the budget is spent, or the context error
// if ctx ends while waiting.
func (g *Gate) Wait(ctx context.Context) error {
	if err := g.cfg.Validate(); err != nil {
		return Misconfigured(fmt.Errorf("%s gate: %w", g.target, err))
	}

	start := time.Now()
	metrics.GateReady.WithLabelValues(g.target).Set(0)

	if g.cfg.MaxAttempts == 0 {
		g.log.Error("Retry budget is zero, not probing", "target", g.target)
		return &ExhaustedError{Target: g.target}
	}

	delays := g.cfg.newBackOff()
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err := g.prober.Probe(ctx)
		if err == nil {
			metrics.GateProbes.WithLabelValues(g.target, "ok").Inc()
			metrics.GateReady.WithLabelValues(g.target).Set(1)
			metrics.GateWaitSeconds.WithLabelValues(g.target).Observe(time.Since(start).Seconds())
			g.log.Info("Data store is ready", "target", g.target, "attempt", attempt)
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s gate: %w", g.target, ctxErr)
		}

		if g.classifier.Classify(err) == KindMisconfigured {
			metrics.GateProbes.WithLabelValues(g.target, "misconfigured").Inc()
			g.log.Error("Data store misconfigured, not retrying", "target", g.target, "error", err)
			return fmt.Errorf("%s probe: %w", g.target, Misconfigured(err))
		}

		metrics.GateProbes.WithLabelValues(g.target, "unavailable").Inc()
		lastErr = err

		if attempt == g.cfg.MaxAttempts {
			break
		}

		delay := g.cfg.nextDelay(delays)
		g.log.Warn(
			fmt.Sprintf("%s unavailable, attempt %d of %d", g.target, attempt, g.cfg.MaxAttempts),
			"target", g.target,
			"attempt", attempt,
			"max_attempts", g.cfg.MaxAttempts,
			"retry_in", delay,
			"error", err,
		)

		if err := g.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s gate: %w", g.target, err)
		}
	}

	g.log.Error(
		fmt.Sprintf("%s unavailable, attempt %d of %d, giving up", g.target, g.cfg.MaxAttempts, g.cfg.MaxAttempts),
		"target", g.target,
		"error", lastErr,
	)
	return &ExhaustedError{Target: g.target, Attempts: g.cfg.MaxAttempts, Last: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
