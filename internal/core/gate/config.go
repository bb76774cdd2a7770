package gate

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 30
	DefaultRetryDelay  = 2 * time.Second

	StrategyConstant    = "constant"
	StrategyExponential = "exponential"
)

// Config defines the retry budget of a gate.
type Config struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	Strategy    string        `yaml:"strategy"`  // constant (default), exponential
	MaxDelay    time.Duration `yaml:"max_delay"` // exponential only
}

// DefaultConfig returns 30 attempts spaced 2 seconds apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		Strategy:    StrategyConstant,
	}
}

// Validate rejects configurations the gate cannot run with.
// MaxAttempts of zero is valid and means "fail without probing".
func (c Config) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative, got %d", c.MaxAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative, got %s", c.RetryDelay)
	}
	switch c.Strategy {
	case "", StrategyConstant, StrategyExponential:
	default:
		return fmt.Errorf("unknown retry strategy %q", c.Strategy)
	}
	return nil
}

// DefaultMaxDelay caps exponential delays when max_delay is unset.
const DefaultMaxDelay = 30 * time.Second

func (c Config) maxDelay() time.Duration {
	if c.MaxDelay <= 0 {
		return DefaultMaxDelay
	}
	return c.MaxDelay
}

func (c Config) newBackOff() backoff.BackOff {
	if c.Strategy != StrategyExponential {
		return backoff.NewConstantBackOff(c.RetryDelay)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.RetryDelay
	b.MaxInterval = c.maxDelay()
	b.MaxElapsedTime = 0 // attempts are bounded by MaxAttempts
	b.Reset()
	return b
}

// nextDelay draws the next sleep from b. Jitter is applied by the exponential
// policy after its own cap, so the result is clamped to max_delay again.
func (c Config) nextDelay(b backoff.BackOff) time.Duration {
	d := b.NextBackOff()
	if d == backoff.Stop {
		return c.RetryDelay
	}
	if c.Strategy == StrategyExponential && d > c.maxDelay() {
		return c.maxDelay()
	}
	return d
}
